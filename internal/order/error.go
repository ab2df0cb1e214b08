package order

import "miaumarket-be/internal/apperr"

var (
	ErrOrderNotFound     = apperr.NotFound("pedido no encontrado")
	ErrProductNotFound   = apperr.NotFound("producto no encontrado")
	ErrInsufficientStock = apperr.Validation("stock insuficiente")
	ErrQuantityTooLarge  = apperr.Validation("cantidad solicitada demasiado grande")
	ErrInvalidStatus     = apperr.Validation("estado inválido, usa Pendiente, Enviado, Entregado o Devuelto")
	ErrInvalidTransition = apperr.Validation("el estado de un pedido solo puede avanzar")
	ErrForeignOrder      = apperr.Permission("no puedes crear pedidos para otro usuario")
	ErrAdminOnly         = apperr.Permission("solo los administradores pueden realizar esta acción")
)

const (
	msgRequired         = "este campo es obligatorio"
	msgNoLines          = "el pedido debe tener al menos un producto"
	msgBadQuantity      = "la cantidad debe ser mayor que cero"
	msgQuantityTooLarge = "la cantidad solicitada es demasiado grande"
	msgNegativePrice    = "el precio unitario no puede ser negativo"
	msgNegativeTotal    = "el total no puede ser negativo"
	msgInvalidProductID = "producto inválido"
)
