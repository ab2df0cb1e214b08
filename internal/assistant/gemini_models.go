package assistant

// Wire types for the Gemini generateContent endpoint.

type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// GenerationConfig tunes a single generateContent call.
type GenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float32 `json:"topP"`
	TopK            int     `json:"topK"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiPromptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

var (
	recommendationConfig = GenerationConfig{Temperature: 0.7, MaxOutputTokens: 150, TopP: 0.8, TopK: 40}
	conversationConfig   = GenerationConfig{Temperature: 0.8, MaxOutputTokens: 400, TopP: 0.9, TopK: 40}
	descriptionConfig    = GenerationConfig{Temperature: 0.6, MaxOutputTokens: 500, TopP: 0.8, TopK: 30}
)
