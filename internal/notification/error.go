package notification

import "miaumarket-be/internal/apperr"

var ErrNotificationNotFound = apperr.NotFound("notificación no encontrada")
