package core

import "context"

// CompletionProvider is the boundary to the remote LLM. Errors follow the
// taxonomy in errors.go so callers can decide on retry and fallback.
type CompletionProvider interface {
	Complete(ctx context.Context, model string, history []Message, opts CompletionOptions) (string, error)
	CompleteVision(ctx context.Context, model, prompt, imageDataURL string, opts CompletionOptions) (string, error)
}

// TrendSource supplies disease-trend rows in the source's own order
// (highest outbreak counts first).
type TrendSource interface {
	Trends(ctx context.Context) ([]DiseaseTrend, error)
}
