package review

import "miaumarket-be/internal/apperr"

var (
	ErrDuplicateReview = apperr.Conflict("ya calificaste este producto, puedes editar tu reseña")
	ErrReviewNotFound  = apperr.NotFound("reseña no encontrada")
	ErrProductNotFound = apperr.NotFound("producto no encontrado")
)

const maxCommentLength = 1000

const (
	msgRatingRange = "la calificación debe estar entre 1 y 5"
	msgCommentLong = "el comentario no puede superar 1000 caracteres"
)
