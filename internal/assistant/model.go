package assistant

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"miaumarket-be/internal/apperr"
)

const (
	maxMessageLen  = 1000
	maxDogTypeLen  = 100
	maxHealthLen   = 500
	maxTitleLen    = 255
	maxCategoryLen = 100
)

var (
	validSizes   = []string{"pequeño", "mediano", "grande", "extra grande"}
	validBudgets = []string{"bajo", "medio", "alto"}
)

// Turn is one message of a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (t Turn) speaker() string {
	switch strings.ToLower(t.Role) {
	case "assistant", "bot", "model":
		return "Asistente"
	default:
		return "Usuario"
	}
}

// PetAge is the pet's age in years. Clients send it either as a JSON number
// or as a numeric string ("3").
type PetAge int

func (a *PetAge) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("age must be a whole number, got %s", b)
	}
	*a = PetAge(n)
	return nil
}

// Profile describes the customer's pet. Every field is optional.
type Profile struct {
	DogType          string  `json:"dog_type"`
	Age              *PetAge `json:"age"`
	Size             string  `json:"size"`
	Budget           string  `json:"budget"`
	HealthConditions string  `json:"health_conditions"`
}

func (p Profile) empty() bool {
	return p.DogType == "" && p.Age == nil && p.Size == "" && p.Budget == "" && p.HealthConditions == ""
}

type ChatRequest struct {
	Message             string `json:"message"`
	ConversationHistory []Turn `json:"conversation_history"`
	SessionID           string `json:"session_id"`
	Profile
}

// ChatResponse carries the reply in Response for greetings and conversation
// and in Recommendations for product requests.
type ChatResponse struct {
	Success         bool   `json:"success"`
	Response        string `json:"response,omitempty"`
	Recommendations string `json:"recommendations,omitempty"`
	Status          string `json:"status"`
}

type DescribeRequest struct {
	Title    string `json:"Titulo"`
	Category string `json:"Categoria"`
	Size     string `json:"size"`
}

type DescribeResponse struct {
	Success     bool   `json:"success"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func (r *ChatRequest) validate() error {
	r.Message = strings.TrimSpace(r.Message)
	r.DogType = strings.TrimSpace(r.DogType)
	r.Size = strings.TrimSpace(r.Size)
	r.Budget = strings.TrimSpace(r.Budget)
	r.HealthConditions = strings.TrimSpace(r.HealthConditions)

	fields := apperr.FieldErrors{}
	switch {
	case r.Message == "":
		fields.Add("message", msgRequired)
	case utf8.RuneCountInString(r.Message) > maxMessageLen:
		fields.Add("message", msgTooLong(maxMessageLen))
	}
	if utf8.RuneCountInString(r.DogType) > maxDogTypeLen {
		fields.Add("dog_type", msgTooLong(maxDogTypeLen))
	}
	if r.Age != nil && *r.Age < 0 {
		fields.Add("age", msgNegativeAge)
	}
	if r.Size != "" && !oneOf(r.Size, validSizes) {
		fields.Add("size", msgInvalidChoice(r.Size))
	}
	if r.Budget != "" && !oneOf(r.Budget, validBudgets) {
		fields.Add("budget", msgInvalidChoice(r.Budget))
	}
	if utf8.RuneCountInString(r.HealthConditions) > maxHealthLen {
		fields.Add("health_conditions", msgTooLong(maxHealthLen))
	}
	return fields.Err()
}

func (r *DescribeRequest) validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Category = strings.TrimSpace(r.Category)
	r.Size = strings.TrimSpace(r.Size)

	fields := apperr.FieldErrors{}
	switch {
	case r.Title == "":
		fields.Add("Titulo", msgRequired)
	case utf8.RuneCountInString(r.Title) > maxTitleLen:
		fields.Add("Titulo", msgTooLong(maxTitleLen))
	}
	switch {
	case r.Category == "":
		fields.Add("Categoria", msgRequired)
	case utf8.RuneCountInString(r.Category) > maxCategoryLen:
		fields.Add("Categoria", msgTooLong(maxCategoryLen))
	}
	if r.Size != "" && !oneOf(r.Size, validSizes) {
		fields.Add("size", msgInvalidChoice(r.Size))
	}
	return fields.Err()
}

func oneOf(v string, options []string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
