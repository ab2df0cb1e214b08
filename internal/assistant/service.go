package assistant

import (
	"context"
	"errors"
	"fmt"

	"miaumarket-be/internal/logger"
	"miaumarket-be/internal/metrics"
	"miaumarket-be/internal/product"

	"go.uber.org/zap"
)

const (
	statusWelcome         = "Mensaje de bienvenida"
	statusRecommendations = "Recomendaciones generadas exitosamente"
	statusResponse        = "Respuesta generada exitosamente"
	statusDescription     = "Descripción generada exitosamente"
	statusFallback        = "Respuesta alternativa"
	statusBusy            = "Servicio temporalmente saturado"
	statusUnavailable     = "Servicio no disponible temporalmente"
	statusDescribeFailed  = "Error al generar descripción"
)

// Outcomes, also used as metric labels.
const (
	outcomeOK      = "ok"
	outcomeWelcome = "welcome"
	outcomeBlocked = "blocked"
	outcomeQuota   = "quota"
	outcomeError   = "error"
)

// CatalogSource lists the products the assistant may recommend.
type CatalogSource interface {
	Catalog(ctx context.Context) ([]product.CatalogEntry, error)
}

type Service interface {
	// Chat only fails on invalid input. Upstream failures become a canned
	// reply.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Describe(ctx context.Context, req DescribeRequest) (*DescribeResponse, error)
}

type service struct {
	gen     Generator
	catalog CatalogSource
	history HistoryStore
	metrics *metrics.Recorder
}

// NewService wires the assistant. history may be nil, in which case session
// ids are ignored.
func NewService(gen Generator, catalog CatalogSource, history HistoryStore, rec *metrics.Recorder) Service {
	return &service{gen: gen, catalog: catalog, history: history, metrics: rec}
}

func (s *service) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Chat"),
	)

	intent := DetectIntent(req.Message)
	if intent == IntentGreeting {
		s.metrics.ChatHandled(ctx, string(intent), outcomeWelcome)
		return &ChatResponse{Success: true, Response: welcomeMessage, Status: statusWelcome}, nil
	}

	history := req.ConversationHistory
	if len(history) == 0 && s.sessionEnabled(req.SessionID) {
		stored, err := s.history.Load(ctx, req.SessionID)
		if err != nil {
			log.Warn("chat history unavailable", zap.String("session_id", req.SessionID), zap.Error(err))
		}
		history = stored
	}

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		log.Error("catalog unavailable for chat prompt", zap.Error(err))
		catalog = nil
	}

	var prompt string
	cfg := conversationConfig
	if intent == IntentProducts {
		prompt = recommendationPrompt(req.Message, req.Profile, catalog)
		cfg = recommendationConfig
	} else {
		prompt = conversationPrompt(req.Message, req.Profile, catalog, history)
	}

	text, outcome := s.generate(ctx, prompt, simplifiedPrompt(req.Message), cfg)
	s.metrics.ChatHandled(ctx, string(intent), outcome)

	resp := &ChatResponse{Success: true}
	switch outcome {
	case outcomeOK:
		resp.Status = statusResponse
		if intent == IntentProducts {
			resp.Status = statusRecommendations
		}
	case outcomeBlocked:
		text = safetyFallback(req.Message)
		resp.Status = statusFallback
	case outcomeQuota:
		text = quotaMessage
		resp.Status = statusBusy
	default:
		text = unavailableMessage
		resp.Status = statusUnavailable
	}

	if intent == IntentProducts {
		resp.Recommendations = text
	} else {
		resp.Response = text
	}

	if s.sessionEnabled(req.SessionID) {
		err := s.history.Append(ctx, req.SessionID,
			Turn{Role: "user", Content: req.Message},
			Turn{Role: "assistant", Content: text},
		)
		if err != nil {
			log.Warn("chat history not saved", zap.String("session_id", req.SessionID), zap.Error(err))
		}
	}

	return resp, nil
}

func (s *service) Describe(ctx context.Context, req DescribeRequest) (*DescribeResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	retry := fmt.Sprintf("Describe en dos oraciones el producto para mascotas %q de la categoría %s.", req.Title, req.Category)
	text, outcome := s.generate(ctx, descriptionPrompt(req), retry, descriptionConfig)
	s.metrics.ChatHandled(ctx, "description", outcome)

	if outcome != outcomeOK {
		return &DescribeResponse{Success: false, Description: descriptionFailed, Status: statusDescribeFailed}, nil
	}
	return &DescribeResponse{Success: true, Description: text, Status: statusDescription}, nil
}

func (s *service) sessionEnabled(sessionID string) bool {
	return s.history != nil && sessionID != ""
}

// generate calls the model, retrying once with retryPrompt after a safety
// block. The returned text is empty unless the outcome is outcomeOK.
func (s *service) generate(ctx context.Context, prompt, retryPrompt string, cfg GenerationConfig) (string, string) {
	text, err := s.call(ctx, prompt, cfg)
	if errors.Is(err, ErrBlocked) {
		logger.FromCtx(ctx).Info("prompt blocked, retrying with simplified prompt", zap.Error(err))
		text, err = s.call(ctx, retryPrompt, cfg)
	}

	switch {
	case err == nil:
		return text, outcomeOK
	case errors.Is(err, ErrBlocked):
		return "", outcomeBlocked
	case errors.Is(err, ErrQuota):
		logger.FromCtx(ctx).Warn("language model quota exhausted", zap.Error(err))
		return "", outcomeQuota
	default:
		logger.FromCtx(ctx).Error("language model call failed", zap.Error(err))
		return "", outcomeError
	}
}

func (s *service) call(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	timer := metrics.StartTimer()
	text, err := s.gen.Generate(ctx, prompt, cfg)

	outcome := outcomeOK
	switch {
	case errors.Is(err, ErrBlocked):
		outcome = outcomeBlocked
	case errors.Is(err, ErrQuota):
		outcome = outcomeQuota
	case err != nil:
		outcome = outcomeError
	}
	s.metrics.ChatUpstream(ctx, timer.Duration(), outcome)

	return text, err
}
