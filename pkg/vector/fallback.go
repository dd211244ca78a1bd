package vector

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/moltiq/moltiq/internal/observability"
)

// FallbackAdapter wraps an Adapter and contains its failures. In
// optional mode a failed add/delete is swallowed and a failed query
// returns no results, so callers never have to distinguish "no
// matches" from "store unreachable". In mandatory mode failures
// propagate unchanged.
type FallbackAdapter struct {
	inner    Adapter
	optional bool
	failed   atomic.Bool
	logger   zerolog.Logger
}

// NewFallbackAdapter wraps inner. optional selects degraded-mode
// behavior on failure.
func NewFallbackAdapter(inner Adapter, optional bool, logger zerolog.Logger) *FallbackAdapter {
	return &FallbackAdapter{
		inner:    inner,
		optional: optional,
		logger:   logger,
	}
}

func (f *FallbackAdapter) Add(ctx context.Context, id, text string, meta Metadata) error {
	if err := f.inner.Add(ctx, id, text, meta); err != nil {
		f.recordFailure("add", err)
		if !f.optional {
			return err
		}
		// optional: indexing is best-effort
	}
	return nil
}

func (f *FallbackAdapter) Query(ctx context.Context, text string, k int, filter Filter) ([]Result, error) {
	results, err := f.inner.Query(ctx, text, k, filter)
	if err != nil {
		f.recordFailure("query", err)
		if !f.optional {
			return nil, err
		}
		return []Result{}, nil
	}
	return results, nil
}

func (f *FallbackAdapter) Delete(ctx context.Context, id string) error {
	if err := f.inner.Delete(ctx, id); err != nil {
		f.recordFailure("delete", err)
		if !f.optional {
			return err
		}
	}
	return nil
}

// Healthy reports false once any delegated call has failed. The flag is
// one-way for the adapter's lifetime: a later success does not reset
// it. It is advisory only and never gates correctness.
func (f *FallbackAdapter) Healthy() bool {
	return !f.failed.Load()
}

func (f *FallbackAdapter) recordFailure(op string, err error) {
	f.failed.Store(true)
	observability.RecordVectorError(op)
	observability.SetVectorHealthy(false)
	f.logger.Warn().Err(err).Str("op", op).Bool("optional", f.optional).Msg("Vector store operation failed")
}
