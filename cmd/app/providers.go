package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/matevzk/povzetek/internal/domain/generation"
	"github.com/matevzk/povzetek/internal/domain/grounding"
	"github.com/matevzk/povzetek/internal/domain/summaries"
	"github.com/matevzk/povzetek/internal/infra/analysiscache"
	"github.com/matevzk/povzetek/internal/infra/config"
	"github.com/matevzk/povzetek/internal/infra/lemmatizer"
	"github.com/matevzk/povzetek/internal/infra/llm/upstream"
	"github.com/matevzk/povzetek/internal/infra/summaryrepo"
)

func provideGenerationConfig(cfg *config.Config) generation.Config {
	return generation.Config{
		Model:            cfg.LLM.Model,
		Temperature:      cfg.LLM.Temperature,
		MaxTokens:        cfg.LLM.MaxTokens,
		TopK:             cfg.LLM.TopK,
		TopP:             cfg.LLM.TopP,
		FrequencyPenalty: cfg.LLM.FrequencyPenalty,
		NumBulletPoints:  cfg.LLM.NumBulletPoints,
		TokenizerModel:   cfg.LLM.TokenizerModel,
	}
}

func provideUpstreamClient(cfg *config.Config, logger *slog.Logger) *upstream.Client {
	return upstream.NewClient(cfg.LLM.APIKey, cfg.LLM.DefaultEndpoint, logger)
}

func provideLemmatizerClient(cfg *config.Config) *lemmatizer.Client {
	return lemmatizer.NewClient(cfg.Lemmatizer.BaseURL, cfg.Lemmatizer.Timeout)
}

func provideAnalysisCache(cfg *config.Config, logger *slog.Logger) grounding.Cache {
	if cfg.Analysis.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return analysiscache.NewMemoryCache()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return analysiscache.NewMemoryCache()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		} else {
			logger.Info("valkey analysis cache enabled", "addr", cfg.Analysis.Valkey.Addr)
			return analysiscache.NewValkeyCache(client, "analysis", logger)
		}
	}
	return analysiscache.NewMemoryCache()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Analysis.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Analysis.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Analysis.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

// summaryStorage is the union of the storage contracts one backend serves.
type summaryStorage interface {
	summaries.Repository
	summaries.SettingsRepository
}

func provideSummaryStorage(cfg *config.Config, logger *slog.Logger) summaryStorage {
	fallback := summaryrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Summaries.Postgres.DSN)
	if dsn == "" {
		logger.Info("summaries postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Summaries.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Summaries.Postgres.MaxConns
	}
	if cfg.Summaries.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Summaries.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("summaries postgres repository enabled")
	return summaryrepo.NewPostgresRepository(pool)
}

func provideSummaryRepository(storage summaryStorage) summaries.Repository {
	return storage
}

func provideSettingsRepository(storage summaryStorage) summaries.SettingsRepository {
	return storage
}
