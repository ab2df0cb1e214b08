package assistant

import "strings"

const welcomeMessage = `¡Hola! 🐾 Bienvenido a MiauMarket.
Soy tu asistente para todo lo que tu perro necesita 🐕

Puedo ayudarte con:
• Productos recomendados
• Cuidado y alimentación
• Comportamiento y razas

¡Cuéntame sobre tu mascota y empecemos! 🦴`

const (
	quotaMessage       = "Estamos recibiendo muchas consultas en este momento. Por favor intenta de nuevo en unos minutos 🐾"
	unavailableMessage = "No pude procesar tu mensaje en este momento. Por favor intenta de nuevo 🐾"
	descriptionFailed  = "No fue posible generar la descripción en este momento. Intenta de nuevo más tarde."
)

type fallback struct {
	keywords []string
	reply    string
}

var safetyFallbacks = []fallback{
	{
		keywords: []string{"comida", "alimento", "aliment", "croqueta", "concentrado", "snack", "premio", "food"},
		reply:    "Para la alimentación de tu mascota te sugerimos revisar nuestra categoría de Comida y elegir según su edad y tamaño. Si tiene una dieta especial, consulta con tu veterinario 🦴",
	},
	{
		keywords: []string{"juguete", "jugar", "pelota", "mordedor", "toy"},
		reply:    "Tenemos juguetes para todos los tamaños y niveles de energía. Elige uno resistente y del tamaño adecuado para tu mascota 🎾",
	},
	{
		keywords: []string{"salud", "enfermo", "veterinari", "vacuna", "medic", "síntoma", "health"},
		reply:    "Para temas de salud lo mejor es consultar con un veterinario de confianza. Con gusto te ayudo a encontrar productos de cuidado en nuestra tienda 🩺",
	},
}

const defaultFallback = "Con gusto te ayudo a encontrar lo que tu mascota necesita. Cuéntame su raza, edad y tamaño para darte mejores sugerencias 🐕"

// safetyFallback picks a canned reply by keyword once the model has refused
// twice.
func safetyFallback(message string) string {
	lower := strings.ToLower(message)
	for _, f := range safetyFallbacks {
		if containsAny(lower, f.keywords) {
			return f.reply
		}
	}
	return defaultFallback
}
