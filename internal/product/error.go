package product

import "miaumarket-be/internal/apperr"

var (
	ErrProductNotFound = apperr.NotFound("producto no encontrado")
	ErrProductInUse    = apperr.Conflict("el producto tiene pedidos asociados y no puede eliminarse")
)

const (
	maxTitleLength    = 200
	maxCategoryLength = 100
	maxImageLength    = 500
)

const (
	msgRequired      = "este campo es obligatorio"
	msgTitleTooLong  = "el título no puede superar 200 caracteres"
	msgCategoryLong  = "la categoría no puede superar 100 caracteres"
	msgImageTooLong  = "la URL de la imagen no puede superar 500 caracteres"
	msgNegativePrice = "el precio no puede ser negativo"
	msgNegativeStock = "el stock no puede ser negativo"
	msgInvalidDate   = "formato de fecha inválido, usa AAAA-MM-DD"
	msgInvalidPrice  = "precio inválido"
)
