package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"credit-score/config"
	"credit-score/model"
	"credit-score/repository"
	"credit-score/service"
)

// pipeline is the assembled scoring stack plus what must be closed on exit.
type pipeline struct {
	forest  *model.Forest
	service *service.CreditService
	closers []io.Closer
}

func (p *pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i].Close(); err != nil {
			slog.Warn("failed to close resource", "error", err)
		}
	}
}

// buildPipeline loads the model and assembles the service. A model that
// cannot be loaded or validated is fatal.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline, error) {
	forest, err := model.Open(ctx, cfg.Model.Path, cfg.Model.S3)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", cfg.Model.Path, err)
	}
	slog.Info("model loaded", "path", cfg.Model.Path, "trees", len(forest.Trees))

	p := &pipeline{forest: forest}

	cache, err := buildCache(ctx, cfg.Cache, p)
	if err != nil {
		p.Close()
		return nil, err
	}

	store, err := buildStore(ctx, cfg.Store, p)
	if err != nil {
		p.Close()
		return nil, err
	}

	generator := service.NewOpenAIGenerator(service.OpenAIConfig{
		APIKey:    cfg.Narrator.APIKey,
		URL:       cfg.Narrator.URL,
		Model:     cfg.Narrator.Model,
		MaxTokens: cfg.Narrator.MaxTokens,
	}, &http.Client{})
	if cfg.Narrator.APIKey == "" {
		slog.Warn("no narrator API key configured, rejections get the fallback explanation")
	}

	narrator := service.NewExplanationService(generator, cache, service.ExplanationOptions{
		Timeout:    cfg.Narrator.Timeout,
		MaxRetries: cfg.Narrator.MaxRetries,
		RetryDelay: cfg.Narrator.RetryDelay,
		CacheTTL:   cfg.Narrator.CacheTTL,
	})

	p.service = service.NewCreditService(
		service.NewScorer(forest),
		service.NewAttributor(forest, forest.BaselineVector()),
		narrator,
		store,
	)
	return p, nil
}

func buildCache(ctx context.Context, cfg config.CacheConfig, p *pipeline) (repository.CacheRepository, error) {
	if cfg.Backend != config.BackendRedis {
		return memoryCache(cfg, p), nil
	}

	cache := repository.NewRedisCache(cfg.Redis)
	if err := cache.Ping(ctx); err != nil {
		// Narrations are only cached, so a missing Redis degrades to memory.
		slog.Warn("redis unavailable, using in-memory cache", "address", cfg.Redis.Address, "error", err)
		_ = cache.Close()
		return memoryCache(cfg, p), nil
	}
	p.closers = append(p.closers, cache)
	return cache, nil
}

func memoryCache(cfg config.CacheConfig, p *pipeline) *repository.MemoryCache {
	cache := repository.NewMemoryCache(cfg.SweepInterval)
	p.closers = append(p.closers, cache)
	return cache
}

func buildStore(ctx context.Context, cfg config.StoreConfig, p *pipeline) (repository.ScoreRepository, error) {
	if cfg.Backend != config.BackendSQLite {
		return repository.NewScoreRepositoryMemory(cfg.MemoryCapacity), nil
	}

	store, err := repository.OpenScoreRepositorySQLite(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("opening score store %s: %w", cfg.SQLitePath, err)
	}
	p.closers = append(p.closers, store)
	return store, nil
}
