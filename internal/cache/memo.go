package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/iwvelando/project-appraisal/internal/appraisal"
	"go.uber.org/zap"
)

// Memoizer returns a stored appraisal for a parameter set seen before and
// computes and stores it otherwise. Store failures are logged and the result
// is computed as if the store were empty.
type Memoizer struct {
	store  Store
	ttl    time.Duration
	engine *appraisal.Engine
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoizer wraps engine with store. A nil store disables memoization; a nil
// engine or logger gets a default.
func NewMemoizer(store Store, ttl time.Duration, engine *appraisal.Engine, logger *zap.Logger) *Memoizer {
	if store == nil {
		store = NopStore{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = appraisal.NewEngine(logger)
	}
	return &Memoizer{store: store, ttl: ttl, engine: engine, logger: logger}
}

// Appraise returns the appraisal of params and whether it came from the store.
func (m *Memoizer) Appraise(ctx context.Context, params appraisal.ProjectParameters) (appraisal.Appraisal, bool) {
	key := Key(params)

	var cached appraisal.Appraisal
	if ok := GetJSON(ctx, m.store, key, &cached, m.logger); ok {
		m.hits.Add(1)
		return cached, true
	}
	m.misses.Add(1)

	result := m.engine.Appraise(params)
	SetJSON(ctx, m.store, key, result, m.ttl, m.logger)
	return result, false
}

// Stats reports the hit and miss counts since creation.
func (m *Memoizer) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}

// GetJSON decodes the value at key into dst. Any failure is logged and
// reported as a miss.
func GetJSON(ctx context.Context, store Store, key string, dst interface{}, logger *zap.Logger) bool {
	if logger == nil {
		logger = zap.NewNop()
	}
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed",
			zap.String("op", "cache.GetJSON"),
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Warn("discarding undecodable cache entry",
			zap.String("op", "cache.GetJSON"),
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	return true
}

// SetJSON encodes value and writes it under key, logging any failure.
func SetJSON(ctx context.Context, store Store, key string, value interface{}, ttl time.Duration, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("cache value not encodable",
			zap.String("op", "cache.SetJSON"),
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	if err := store.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed",
			zap.String("op", "cache.SetJSON"),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
