package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/curebird/backend/internal/config"
	"github.com/curebird/backend/internal/metrics"
	"github.com/curebird/backend/internal/providers/groq"
	"github.com/curebird/backend/internal/service/analyzer"
	"github.com/curebird/backend/internal/service/assistant"
	"github.com/curebird/backend/internal/service/medicines"
	"github.com/curebird/backend/internal/service/persona"
	"github.com/curebird/backend/internal/service/trends"
	"github.com/curebird/backend/internal/storage/sqlite"
	"github.com/curebird/backend/internal/transport/web"
	"github.com/curebird/backend/pkg/cache"
	"github.com/curebird/backend/pkg/log"
	"github.com/curebird/backend/pkg/retry"
	"github.com/curebird/backend/pkg/srv"
	"github.com/joho/godotenv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// 1. Configuration. The .env location depends on the runtime path,
	// so AppConfig is parsed twice: once to find .env, once more after
	// loading it so App-level knobs set there take effect.
	appCfg := config.NewAppConfig(ctx)

	if err := initEnv(ctx, appCfg.RuntimePath); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}
	appCfg = config.NewAppConfig(ctx)

	groqCfg := config.NewGroqConfig(ctx)
	dataGovCfg := config.NewDataGovConfig(ctx)

	m := metrics.New()

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	// 3. Trend data: live API backed by snapshot file and sqlite archive
	trendSvc := trends.New(
		dataGovCfg.ResourceURL(),
		appCfg.GetTrendsSnapshotPath(),
		appCfg.TrendsCacheTTL,
		sqlite.NewTrendsRepo(db),
		m,
	)

	// 4. Groq providers. The vision and analyzer flows may run on
	// separate keys; each key gets its own client.
	chatProvider, err := groq.New(groqCfg.BaseURL, groqCfg.APIKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Groq provider")
	}
	visionProvider, err := groq.New(groqCfg.BaseURL, groqCfg.GetVisionAPIKey())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Groq vision provider")
	}
	analyzerProvider, err := groq.New(groqCfg.BaseURL, groqCfg.GetAnalyzerAPIKey())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Groq analyzer provider")
	}

	// 5. Health assistant
	contextCache := assistant.NewContextCache(trendSvc, appCfg.ContextCacheTTL, m)
	store := assistant.NewStore(assistant.NewSystemPrompt(contextCache), m)
	healthAssistant := assistant.New(
		chatProvider,
		store,
		assistant.Models{Fast: groqCfg.FastModel, Capable: groqCfg.CapableModel},
		retry.NewDefaultRetrier(),
		m,
		appCfg.PromptTokenBudget,
	)

	// 6. Patient roleplay generator
	patientPersona := persona.NewGenerator(chatProvider, groqCfg.FastModel)

	// 7. Report analyzer: extraction on the vision key, summarization on
	// the analyzer key.
	reportAnalyzer := analyzer.NewPipeline(
		visionProvider,
		analyzerProvider,
		groqCfg.VisionModel,
		groqCfg.CapableModel,
		appCfg.AnalyzerAssumeMedical,
	)

	// 8. Medicines lookup with its disk cache
	drugCache, err := cache.New(appCfg.GetCacheDir(), appCfg.DrugCacheTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize drug cache")
	}
	medicineSvc := medicines.New(drugCache, m)

	// 9. HTTP transport
	server := web.NewServer(ctx, appCfg, web.Deps{
		Assistant:                healthAssistant,
		Persona:                  patientPersona,
		Analyzer:                 reportAnalyzer,
		Trends:                   trendSvc,
		Medicines:                medicineSvc,
		Metrics:                  m,
		ResourceDistributionPath: appCfg.GetResourceDistributionPath(),
	})
	services = append(services, server)

	return services
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)

	if err := os.MkdirAll(runtimePath, 0755); err != nil {
		return err
	}

	envFile := filepath.Join(runtimePath, ".env")
	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
