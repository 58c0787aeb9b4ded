package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/curebird/backend/pkg/log"
)

type AppConfig struct {
	Port        int    `env:"CUREBIRD_PORT" envDefault:"5001"`
	RuntimePath string `env:"CUREBIRD_RUNTIME_PATH" envDefault:".curebird"`

	CORSOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`

	// Cache policies. The conversational context and the trend snapshot
	// expire independently.
	ContextCacheTTL time.Duration `env:"CONTEXT_CACHE_TTL" envDefault:"1h"`
	TrendsCacheTTL  time.Duration `env:"TRENDS_CACHE_TTL" envDefault:"24h"`
	DrugCacheTTL    time.Duration `env:"DRUG_CACHE_TTL" envDefault:"24h"`

	// When the vision model omits is_medical, assume the upload is a
	// medical document rather than refusing it.
	AnalyzerAssumeMedical bool `env:"ANALYZER_ASSUME_MEDICAL" envDefault:"true"`

	// Upper bound on prompt tokens sent per completion attempt.
	PromptTokenBudget int `env:"PROMPT_TOKEN_BUDGET" envDefault:"6000"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetCacheDir() string {
	return filepath.Join(c.RuntimePath, "cache")
}

func (c AppConfig) GetTrendsSnapshotPath() string {
	return filepath.Join(c.RuntimePath, "disease_data_cache.json")
}

func (c AppConfig) GetResourceDistributionPath() string {
	return filepath.Join(c.RuntimePath, "resource_distribution.json")
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "curebird.db")
}
