package user

import "miaumarket-be/internal/apperr"

var (
	ErrInvalidCredentials = apperr.Auth("correo o contraseña inválidos")
	ErrAccountDisabled    = apperr.Auth("la cuenta está desactivada")
	ErrUserNotFound       = apperr.NotFound("usuario no encontrado")
	ErrWrongPassword      = apperr.Validation("la contraseña actual es incorrecta")
)

const (
	minPasswordLength    = 8
	minNewPasswordLength = 6
	minimumAge           = 18
)

// Field messages shown by the storefront.
const (
	msgEmailTaken           = "ya existe un usuario con este correo"
	msgPhoneTaken           = "ya existe un usuario con este teléfono"
	msgAddressTaken         = "ya existe un usuario con esta dirección"
	msgFullNameTaken        = "ya existe un usuario con este nombre y apellido"
	msgUnderage             = "debes tener al menos 18 años para registrarte"
	msgRequired             = "este campo es obligatorio"
	msgPasswordMismatch     = "las contraseñas no coinciden"
	msgPasswordTooShort     = "la contraseña debe tener al menos 8 caracteres"
	msgNewPasswordTooShort  = "la nueva contraseña debe tener al menos 6 caracteres"
	msgInvalidEmail         = "correo electrónico inválido"
	msgBirthDateInFuture    = "la fecha de nacimiento no puede ser futura"
	msgCurrentPasswordEmpty = "debes indicar la contraseña actual"
)
