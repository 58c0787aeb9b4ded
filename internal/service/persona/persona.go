// Package persona generates best-effort patient roleplay replies for the
// doctor-facing chat. It is stateless: the caller resends the full
// history on every request, and nothing is stored between calls.
package persona

import (
	"context"
	"fmt"
	"strings"

	"github.com/curebird/backend/internal/core"
	"github.com/curebird/backend/pkg/log"
)

const fallbackReply = "I'm sorry, I didn't verify that properly. Could you repeat it?"

const systemPromptTemplate = `You are %s, a patient with %s.
You are chatting with your doctor on a secure messaging app.
Current Context: You are %s.

ROLEPLAY RULES:
- Keep your responses SHORT (1-2 sentences max).
- Be casual but respectful.
- Do NOT act like an AI. Do not use headers or markdown.
- Respond directly to what the doctor asks.
- If asking about symptoms, be specific based on your condition (%s).
- You are NOT a medical expert. You are the patient.
`

// HistoryItem is one frontend chat bubble. Sender is "doctor" or
// "patient".
type HistoryItem struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// PatientContext is supplied whole by the caller per request.
type PatientContext struct {
	Patient   string `json:"patient"`
	Age       int    `json:"age,omitempty"`
	Condition string `json:"condition"`
	Status    string `json:"status"`
}

type CompletionProvider interface {
	Complete(ctx context.Context, model string, history []core.Message, opts core.CompletionOptions) (string, error)
}

type Generator struct {
	provider CompletionProvider
	model    string
}

// NewGenerator uses a fixed fast-tier model: roleplay replies are short
// and latency-sensitive.
func NewGenerator(provider CompletionProvider, model string) *Generator {
	return &Generator{
		provider: provider,
		model:    model,
	}
}

// Reply issues exactly one completion call and returns the trimmed text.
// Any failure yields the fixed apologetic fallback; this flow has no
// retry budget.
func (g *Generator) Reply(ctx context.Context, history []HistoryItem, patient PatientContext) string {
	messages := []core.Message{
		{Role: core.RoleSystem, Content: buildSystemPrompt(patient)},
	}

	for _, item := range history {
		if item.Text == "" {
			continue
		}
		role := core.RoleAssistant
		if item.Sender == "doctor" {
			role = core.RoleUser
		}
		messages = append(messages, core.Message{Role: role, Content: item.Text})
	}

	text, err := g.provider.Complete(ctx, g.model, messages, core.CompletionOptions{
		Temperature: 0.7,
		MaxTokens:   150,
	})
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("patient reply generation failed")
		return fallbackReply
	}

	return strings.TrimSpace(text)
}

func buildSystemPrompt(patient PatientContext) string {
	name := patient.Patient
	if name == "" {
		name = "Patient"
	}
	condition := patient.Condition
	if condition == "" {
		condition = "Unknown Condition"
	}
	status := patient.Status
	if status == "" {
		status = "stable"
	}

	return fmt.Sprintf(systemPromptTemplate, name, condition, status, condition)
}
