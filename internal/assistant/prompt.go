package assistant

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"miaumarket-be/internal/product"
)

const (
	historyWindow     = 6
	maxDescriptionLen = 160
)

func writeCatalog(sb *strings.Builder, catalog []product.CatalogEntry) {
	if len(catalog) == 0 {
		sb.WriteString("CATÁLOGO DISPONIBLE: no hay productos en stock en este momento.\n")
		return
	}
	sb.WriteString("CATÁLOGO DISPONIBLE:\n")
	for _, e := range catalog {
		fmt.Fprintf(sb, "- %s (%s): $%s, stock %d", e.Title, e.Category, e.Price.StringFixed(2), e.Stock)
		if e.TotalReviews > 0 {
			fmt.Fprintf(sb, ", rating %s/5 (%d reseñas)", e.AverageRating.StringFixed(1), e.TotalReviews)
		}
		if d := truncate(strings.TrimSpace(e.Description), maxDescriptionLen); d != "" {
			fmt.Fprintf(sb, ". %s", d)
		}
		sb.WriteByte('\n')
	}
}

func writeProfile(sb *strings.Builder, p Profile, withDefaults bool) {
	if p.empty() && !withDefaults {
		return
	}

	dogType, size, age := p.DogType, p.Size, ""
	if p.Age != nil {
		age = fmt.Sprintf("%d años", *p.Age)
	}
	if withDefaults {
		if dogType == "" {
			dogType = "Perro genérico"
		}
		if size == "" {
			size = "mediano"
		}
		if age == "" {
			age = "5 años"
		}
	}

	sb.WriteString("INFORMACIÓN DE LA MASCOTA:\n")
	fmt.Fprintf(sb, "- Raza/Tipo: %s\n", orDefault(dogType, "No especificada"))
	fmt.Fprintf(sb, "- Edad: %s\n", orDefault(age, "No especificada"))
	fmt.Fprintf(sb, "- Tamaño: %s\n", orDefault(size, "No especificado"))
	fmt.Fprintf(sb, "- Condiciones de salud: %s\n", orDefault(p.HealthConditions, "Ninguna"))
	fmt.Fprintf(sb, "- Presupuesto: %s\n", orDefault(p.Budget, "No especificado"))
}

func recommendationPrompt(message string, p Profile, catalog []product.CatalogEntry) string {
	var sb strings.Builder
	sb.WriteString("Eres el asistente de MiauMarket, experto en productos para mascotas. ")
	sb.WriteString("Recomienda entre 2 y 3 productos del catálogo que mejor se ajusten a lo que pide el cliente, ")
	sb.WriteString("explicando en una frase por qué cada uno es apropiado. Solo recomienda productos que aparezcan en el catálogo.\n\n")
	writeProfile(&sb, p, true)
	sb.WriteByte('\n')
	writeCatalog(&sb, catalog)
	fmt.Fprintf(&sb, "\nPETICIÓN DEL CLIENTE: %s\n\nRecomendaciones:", message)
	return sb.String()
}

func conversationPrompt(message string, p Profile, catalog []product.CatalogEntry, history []Turn) string {
	var sb strings.Builder
	sb.WriteString("Eres el asistente de MiauMarket, experto en cuidado de mascotas. Responde de forma BREVE y útil.\n\n")
	writeProfile(&sb, p, false)
	writeCatalog(&sb, catalog)

	if recent := lastTurns(history, historyWindow); len(recent) > 0 {
		sb.WriteString("\nCONVERSACIÓN RECIENTE:\n")
		for _, t := range recent {
			fmt.Fprintf(&sb, "%s: %s\n", t.speaker(), t.Content)
		}
	}

	fmt.Fprintf(&sb, "\nPREGUNTA: %s\n\nRespuesta (máximo 3 oraciones):", message)
	return sb.String()
}

// simplifiedPrompt is the retry after a safety block: no catalog, no history,
// no free-text profile fields.
func simplifiedPrompt(message string) string {
	return fmt.Sprintf("Eres un asistente amable de una tienda de mascotas. "+
		"Responde en máximo 2 oraciones, con consejos generales de cuidado, a esta consulta: %s", message)
}

func descriptionPrompt(in DescribeRequest) string {
	return fmt.Sprintf(`Eres un copywriter especializado en productos para mascotas.
Crea una descripción atractiva y clara para el siguiente producto:

- Nombre: %s
- Categoría: %s
- Tamaño objetivo: %s

La descripción debe ser concisa (máximo 3 párrafos), enfocada en beneficios, incluir las características principales y ser apropiada para una tienda online.`,
		in.Title, in.Category, orDefault(in.Size, "Todos los tamaños"))
}

func lastTurns(history []Turn, n int) []Turn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
