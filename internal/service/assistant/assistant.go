// Package assistant implements the conversational core: per-conversation
// history, model-tier routing, and retried completion calls with
// fallback to the fast tier on provider trouble.
package assistant

import (
	"context"
	"time"

	"github.com/curebird/backend/internal/core"
	"github.com/curebird/backend/internal/metrics"
	"github.com/curebird/backend/pkg/log"
	"github.com/curebird/backend/pkg/retry"
)

const failureResponse = "I apologize, but I'm having trouble responding right now. Please try again in a moment."

// CompletionProvider is the slice of the provider boundary this service
// consumes.
type CompletionProvider interface {
	Complete(ctx context.Context, model string, history []core.Message, opts core.CompletionOptions) (string, error)
}

// Models maps the two tiers to concrete provider model identifiers.
type Models struct {
	Fast    string
	Capable string
}

func (m Models) For(tier core.ModelTier) string {
	if tier == core.TierFast {
		return m.Fast
	}
	return m.Capable
}

// Result is the envelope every chat turn returns, success or not.
type Result struct {
	Success        bool   `json:"success"`
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	Timestamp      string `json:"timestamp,omitempty"`
	Error          string `json:"error,omitempty"`
}

type Assistant struct {
	provider    CompletionProvider
	store       *Store
	models      Models
	retrier     *retry.Retrier
	metrics     *metrics.Metrics
	tokenBudget int
}

func New(provider CompletionProvider, store *Store, models Models, retrier *retry.Retrier, m *metrics.Metrics, tokenBudget int) *Assistant {
	return &Assistant{
		provider:    provider,
		store:       store,
		models:      models,
		retrier:     retrier,
		metrics:     m,
		tokenBudget: tokenBudget,
	}
}

func (a *Assistant) Store() *Store {
	return a.store
}

// Generate runs one chat turn: resolve the conversation, append the user
// message, then drive completion attempts across tiers. The user message
// stays in history even when every attempt fails; the next turn recovers
// from that degraded state.
func (a *Assistant) Generate(ctx context.Context, conversationID, userMessage string) Result {
	logger := log.FromCtx(ctx)

	id := a.store.Resolve(ctx, conversationID)
	if err := a.store.Append(id, core.RoleUser, userMessage); err != nil {
		// Unreachable in practice: Resolve just created the id.
		logger.Error().Err(err).Str("conversation", id).Msg("failed to append user message")
		return Result{Success: false, Response: failureResponse, ConversationID: id, Error: err.Error()}
	}

	tier := SelectModel(userMessage)
	logger.Debug().Str("conversation", id).Stringer("tier", tier).Msg("selected model tier")

	var reply string
	op := func(attempt int) error {
		history, ok := a.store.History(id)
		if !ok {
			return ErrConversationNotFound
		}
		if a.tokenBudget > 0 {
			before := len(history)
			history = trimToBudget(history, a.tokenBudget)
			if dropped := before - len(history); dropped > 0 {
				logger.Debug().Str("conversation", id).Int("dropped", dropped).
					Int("prompt_tokens", estimateTokens(history)).
					Msg("trimmed history to token budget")
			}
		}

		model := a.models.For(tier)
		logger.Debug().
			Str("conversation", id).
			Str("model", model).
			Int("attempt", attempt).
			Msg("requesting completion")

		start := time.Now()
		text, err := a.provider.Complete(ctx, model, history, core.CompletionOptions{
			Temperature: 0.7,
			MaxTokens:   2048,
		})
		a.metrics.CompletionDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())

		if err != nil {
			a.metrics.CompletionsTotal.WithLabelValues(model, "error").Inc()
			// Downgrade once and stay on the fast tier for the rest of
			// the attempts.
			if core.IsRetryable(err) && tier == core.TierCapable {
				tier = core.TierFast
				a.metrics.TierFallbacksTotal.Inc()
				logger.Warn().Err(err).Str("conversation", id).Msg("provider error, falling back to fast tier")
			}
			return err
		}

		a.metrics.CompletionsTotal.WithLabelValues(model, "success").Inc()
		reply = text
		return nil
	}

	if err := a.retrier.Do(ctx, op, core.IsRetryable); err != nil {
		logger.Error().Err(err).Str("conversation", id).Msg("all completion attempts failed")
		return Result{
			Success:        false,
			Response:       failureResponse,
			ConversationID: id,
			Error:          err.Error(),
		}
	}

	if err := a.store.Append(id, core.RoleAssistant, reply); err != nil {
		logger.Error().Err(err).Str("conversation", id).Msg("failed to append assistant reply")
	}

	return Result{
		Success:        true,
		Response:       reply,
		ConversationID: id,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
}

// Clear removes a conversation; false when the id was never seen.
func (a *Assistant) Clear(id string) bool {
	return a.store.Clear(id)
}
