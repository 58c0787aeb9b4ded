package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/curebird/backend/pkg/log"
)

type GroqConfig struct {
	APIKey string `env:"GROQ_API_KEY,required,notEmpty"`

	// Optional per-use-case keys. Empty means fall back to APIKey.
	VisionAPIKey   string `env:"GROQ_VISION_API_KEY"`
	AnalyzerAPIKey string `env:"GROQ_ANALYZER_API_KEY"`

	BaseURL string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai"`

	FastModel    string `env:"GROQ_FAST_MODEL" envDefault:"llama-3.1-8b-instant"`
	CapableModel string `env:"GROQ_CAPABLE_MODEL" envDefault:"llama-3.3-70b-versatile"`
	VisionModel  string `env:"GROQ_VISION_MODEL" envDefault:"llama-3.2-11b-vision-preview"`
}

func NewGroqConfig(ctx context.Context) *GroqConfig {
	c := &GroqConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Groq config")
	}
	return c
}

func (c GroqConfig) GetVisionAPIKey() string {
	if c.VisionAPIKey != "" {
		return c.VisionAPIKey
	}
	return c.APIKey
}

func (c GroqConfig) GetAnalyzerAPIKey() string {
	if c.AnalyzerAPIKey != "" {
		return c.AnalyzerAPIKey
	}
	return c.APIKey
}
