package cli

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/moltiq/moltiq/internal/config"
	"github.com/moltiq/moltiq/internal/logger"
	"github.com/moltiq/moltiq/pkg/retrieval"
	"github.com/moltiq/moltiq/pkg/service"
	"github.com/moltiq/moltiq/pkg/store"
	"github.com/moltiq/moltiq/pkg/vector"
)

// app wires the configured store, vector adapter, retrieval engine, and
// service for one command invocation.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	store   *store.SQLiteStore
	vector  *vector.FallbackAdapter
	engine  *retrieval.Engine
	service *service.Service

	closers []func() error
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	lg, err := logger.New(logger.Config{
		Level:   logLevel,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	})
	if err != nil {
		return nil, err
	}
	zl := lg.GetZerolog()

	a := &app{cfg: cfg, logger: zl}
	a.closers = append(a.closers, lg.Close)

	st, err := store.New(store.Config{DBPath: cfg.Database.Path, Logger: zl})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = st
	a.closers = append(a.closers, st.Close)

	embedder, err := a.buildEmbedder()
	if err != nil {
		a.Close()
		return nil, err
	}

	inner, err := a.buildBackend(embedder)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.vector = vector.NewFallbackAdapter(inner, cfg.Vector.Optional, zl)
	a.engine = retrieval.NewEngine(a.vector, st, cfg.Retrieval.MaxK, zl)
	a.service = service.New(st, a.vector, zl)

	return a, nil
}

func (a *app) buildEmbedder() (vector.Embedder, error) {
	var inner vector.Embedder
	switch a.cfg.Embedding.Provider {
	case "mock":
		inner = vector.NewMockEmbedder(0)
	case "openai":
		inner = vector.NewOpenAIEmbedder(a.cfg.Embedding.APIKey, a.cfg.Embedding.Model)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", a.cfg.Embedding.Provider)
	}

	cached, err := vector.NewCachedEmbedder(inner, a.cfg.Embedding.CacheEntries)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { cached.Close(); return nil })
	return cached, nil
}

func (a *app) buildBackend(embedder vector.Embedder) (vector.Adapter, error) {
	switch a.cfg.Vector.Backend {
	case "sqlite-vec":
		adapter, err := vector.NewSQLiteVecAdapter(vector.SQLiteVecConfig{
			DBPath:   a.cfg.Vector.Path,
			Embedder: embedder,
			Logger:   a.logger,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, adapter.Close)
		return adapter, nil
	case "chromem":
		return vector.NewChromemAdapter(vector.ChromemConfig{
			Collection: a.cfg.Vector.Collection,
			Embedder:   embedder,
			Logger:     a.logger,
		})
	default:
		return nil, fmt.Errorf("unknown vector backend: %s", a.cfg.Vector.Backend)
	}
}

// orConfigured prefers an explicitly set flag value over the
// configured default.
func orConfigured(flag, configured int) int {
	if flag > 0 {
		return flag
	}
	return configured
}

// Close releases resources in reverse acquisition order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}
