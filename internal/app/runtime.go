package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/pdfdesk/internal/cli"
	"horse.fit/pdfdesk/internal/config"
	"horse.fit/pdfdesk/internal/correction"
	"horse.fit/pdfdesk/internal/db"
	"horse.fit/pdfdesk/internal/document"
	"horse.fit/pdfdesk/internal/langdetect"
	"horse.fit/pdfdesk/internal/logging"
	"horse.fit/pdfdesk/internal/pdftext"
	"horse.fit/pdfdesk/internal/storage"
	"horse.fit/pdfdesk/internal/translation"
)

// runtime holds every dependency a command may need, built once from config.
type runtime struct {
	cfg       *config.Config
	logger    zerolog.Logger
	store     *storage.Store
	extractor *pdftext.Extractor
	detector  *langdetect.Detector
	registry  *translation.Registry
	manager   *translation.Manager
	corrector *correction.Service
	docs      *document.Service
	ledger    db.Ledger
	pool      *db.Pool
}

func loadConfig(envLoader *cli.EnvLoader) (*config.Config, zerolog.Logger, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, logger, nil
}

// newRuntime wires the pipeline. withLedger connects to DATABASE_URL when set.
func newRuntime(ctx context.Context, cfg *config.Config, logger zerolog.Logger, withLedger bool) (*runtime, error) {
	store, err := storage.NewStore(cfg.UploadDir, cfg.ScratchRoot())
	if err != nil {
		return nil, err
	}

	registry := translation.NewRegistryFromOptions(translation.RegistryOptions{
		DefaultProvider: cfg.TranslationProvider,
		GoogleEndpoint:  cfg.GoogleTranslateEndpoint,
		LocalEndpoint:   cfg.TranslationEndpoint,
		LocalModel:      cfg.TranslationModel,
		RateLimit:       cfg.UpstreamRateLimit,
		Timeout:         cfg.UpstreamTimeout,
	})
	manager := translation.NewManager(registry, cfg.TranslationChunkChars)

	upstreamClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	correctionOpts := correction.Options{
		Model: correction.NewModelCorrector(correction.ModelOptions{
			Endpoint:   cfg.CorrectionEndpoint,
			Model:      cfg.CorrectionModel,
			APIKey:     cfg.CorrectionAPIKey,
			HTTPClient: upstreamClient,
			MaxRetries: 1,
		}),
		Spelling:        correction.NewBritishSpelling(),
		DefaultLanguage: cfg.GrammarDefaultLanguage,
		Logger:          &logger,
	}
	if cfg.GrammarEnabled {
		correctionOpts.Grammar = correction.NewGrammarChecker(correction.GrammarOptions{
			Endpoint:   cfg.GrammarEndpoint,
			HTTPClient: upstreamClient,
			RateLimit:  cfg.UpstreamRateLimit,
		})
	}
	corrector := correction.NewService(correctionOpts)

	extractor := pdftext.NewExtractor()
	detector := langdetect.New(cfg.DetectLanguagesList())

	rt := &runtime{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		extractor: extractor,
		detector:  detector,
		registry:  registry,
		manager:   manager,
		corrector: corrector,
		ledger:    db.NopLedger{},
	}
	rt.docs = document.NewService(document.Options{
		Extractor:  extractor,
		Detector:   detector,
		Translator: manager,
		Corrector:  corrector,
		Scratch:    store,
		Logger:     logger,
	})

	if withLedger && cfg.HasDatabase() {
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pool, err := db.NewPool(dbCtx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect upload ledger: %w", err)
		}
		rt.pool = pool
		rt.ledger = pool
	}

	return rt, nil
}

func (r *runtime) Close() {
	if r == nil || r.pool == nil {
		return
	}
	if err := r.pool.Close(); err != nil {
		r.logger.Warn().Err(err).Msg("close database pool failed")
	}
}

func (r *runtime) sweeper() *storage.Sweeper {
	return storage.NewSweeper(r.store, r.cfg.UploadRetention, r.cfg.UploadSweepInterval, r.ledger, r.logger)
}
