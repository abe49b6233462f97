// Package app wires configuration into the services shared by the API server
// and the CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crimelens/crime-analytics/internal/analytics"
	"github.com/crimelens/crime-analytics/internal/cache"
	"github.com/crimelens/crime-analytics/internal/chat"
	"github.com/crimelens/crime-analytics/internal/config"
	"github.com/crimelens/crime-analytics/internal/dataset"
	"github.com/crimelens/crime-analytics/internal/llm"
	"github.com/crimelens/crime-analytics/internal/observability"
	"github.com/crimelens/crime-analytics/internal/storage"
)

// Options selects the optional parts of the application.
type Options struct {
	// Feedback opens and migrates the feedback database.
	Feedback bool
	// OnFile is forwarded to the dataset loader.
	OnFile func()
}

// App holds the constructed services. Close releases them.
type App struct {
	Config    *config.Config
	Logger    *observability.Logger
	Provider  *dataset.StaticProvider
	Analytics *analytics.Service
	Engine    *chat.Engine
	Cache     cache.Client
	DB        *sql.DB
	Feedback  *storage.FeedbackRepository
}

// LoaderConfig derives the dataset loader settings from cfg.
func LoaderConfig(cfg *config.Config) dataset.LoaderConfig {
	return dataset.LoaderConfig{
		Dir:   cfg.Data.Dir,
		Years: cfg.Data.Years,
		Patterns: map[dataset.Name]string{
			dataset.City:       cfg.Data.CityPattern,
			dataset.Government: cfg.Data.GovernmentPattern,
			dataset.Foreign:    cfg.Data.ForeignPattern,
		},
	}
}

// StorageConfig derives the feedback database settings from cfg.
func StorageConfig(cfg *config.Config) storage.Config {
	switch cfg.Database.Driver {
	case storage.DriverPostgres:
		return storage.Config{
			Driver:          storage.DriverPostgres,
			DSN:             cfg.Database.Postgres.DSN,
			MaxOpenConns:    cfg.Database.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Database.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.Postgres.ConnMaxLifetime,
		}
	case storage.DriverSQLite:
		return storage.Config{
			Driver:       storage.DriverSQLite,
			DSN:          cfg.Database.SQLite.Path,
			MaxOpenConns: cfg.Database.SQLite.MaxOpenConns,
		}
	}
	// Open rejects anything else.
	return storage.Config{Driver: cfg.Database.Driver, DSN: cfg.DatabaseDSN()}
}

// New loads the datasets and builds every service cfg asks for. On error,
// anything already opened is closed.
func New(ctx context.Context, cfg *config.Config, logger *observability.Logger, opts Options) (_ *App, err error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	loaderCfg := LoaderConfig(cfg)
	loaderCfg.OnFile = opts.OnFile
	a.Provider, err = dataset.Load(ctx, loaderCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("load datasets: %w", err)
	}
	a.Analytics = analytics.NewService(a.Provider, logger)

	a.Cache, err = newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	engineOpts := chat.Options{
		Source:         cfg.Chat.Source,
		InsightTimeout: cfg.LLM.Timeout,
		Logger:         logger,
	}
	if cfg.Chat.MemoryEnabled {
		engineOpts.Memory = chat.NewMemoryStore(a.Cache, cfg.Chat.MemoryTTL)
	}

	if cfg.LLMEnabled() {
		client, err := llm.NewClient(llm.Config{
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			BaseURL: cfg.LLM.BaseURL,
			Timeout: cfg.LLM.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create llm client: %w", err)
		}
		engineOpts.Insights = llm.NewInsightGenerator(client)
		if cfg.LLM.ExtractorEnabled {
			engineOpts.Hinter = llm.NewExtractor(client)
			engineOpts.HintTimeout = cfg.LLM.Timeout
		}
		logger.Info().
			Str("model", cfg.LLM.Model).
			Bool("extractor", cfg.LLM.ExtractorEnabled).
			Msg("LLM enabled")
	} else {
		logger.Info().Msg("No LLM API key configured, insights use the fallback text")
	}

	a.Engine = chat.NewEngine(a.Provider, a.Analytics, engineOpts)

	if opts.Feedback {
		storageCfg := StorageConfig(cfg)
		a.DB, err = storage.Open(ctx, storageCfg)
		if err != nil {
			return nil, fmt.Errorf("open feedback database: %w", err)
		}
		if err = storage.Migrate(ctx, a.DB, storageCfg.Driver); err != nil {
			return nil, err
		}
		a.Feedback = storage.NewFeedbackRepository(a.DB)
	}

	return a, nil
}

func newCache(ctx context.Context, cfg *config.Config) (cache.Client, error) {
	if cfg.Cache.Driver != "redis" {
		return cache.NewMemoryClient(cfg.Cache.MaxEntries), nil
	}
	client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		PoolSize: cfg.Cache.Redis.PoolSize,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

// Close releases the cache and database connections.
func (a *App) Close() error {
	var errs []error
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
