package assistant

import "fmt"

const (
	msgRequired    = "este campo es requerido"
	msgNegativeAge = "la edad no puede ser negativa"
)

func msgTooLong(n int) string {
	return fmt.Sprintf("máximo %d caracteres", n)
}

func msgInvalidChoice(v string) string {
	return fmt.Sprintf("%q no es una opción válida", v)
}
