package assistant

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentProducts     Intent = "products"
	IntentConversation Intent = "conversation"
)

// minMessageRunes is the length below which any message is treated as a
// greeting.
const minMessageRunes = 10

var greetingWords = map[string]struct{}{
	"hola":    {},
	"hello":   {},
	"hi":      {},
	"saludos": {},
	"buenos":  {},
	"buenas":  {},
	"inicio":  {},
	"empezar": {},
}

// Substrings, so "recomiéndame" and "comprar" both hit.
var productKeywords = []string{
	"recomi", "recomend", "product", "compr", "qué", "cual", "cuál",
	"mejor", "need", "want", "necesit",
}

// DetectIntent classifies a chat message. Greetings are checked first.
func DetectIntent(message string) Intent {
	trimmed := strings.TrimSpace(message)
	if utf8.RuneCountInString(trimmed) < minMessageRunes {
		return IntentGreeting
	}

	lower := strings.ToLower(trimmed)
	for _, w := range words(lower) {
		if _, ok := greetingWords[w]; ok {
			return IntentGreeting
		}
	}

	if containsAny(lower, productKeywords) {
		return IntentProducts
	}
	return IntentConversation
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
