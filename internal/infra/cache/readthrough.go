package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/Spok95/foodgram/internal/infra/metrics"
)

// ReadThrough кэширует результаты чтения списков по ключу
// "api:{timeout}:{method}:{path}". При timeout == 0 кэш выключен.
type ReadThrough struct {
	store   Store
	timeout time.Duration
	log     *slog.Logger
}

func NewReadThrough(store Store, timeout time.Duration, log *slog.Logger) *ReadThrough {
	return &ReadThrough{store: store, timeout: timeout, log: log}
}

func (rt *ReadThrough) Enabled() bool {
	return rt != nil && rt.store != nil && rt.timeout > 0
}

func (rt *ReadThrough) Key(method, path string) string {
	return fmt.Sprintf("api:%d:%s:%s", int64(rt.timeout/time.Second), method, path)
}

// Fetch кладёт в dst закэшированное значение либо результат load.
// Ошибки хранилища только логируются: запрос не должен падать из-за кэша.
// Два одновременных промаха посчитают и запишут значение оба.
func Fetch[T any](ctx context.Context, rt *ReadThrough, method, path string, load func(context.Context) (T, error)) (T, error) {
	if !rt.Enabled() {
		return load(ctx)
	}
	key := rt.Key(method, path)

	raw, err := rt.store.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		derr := json.Unmarshal(raw, &v)
		if derr == nil {
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			return v, nil
		}
		rt.log.Warn("cache decode failed", "key", key, "err", derr)
	case errors.Is(err, ErrMiss):
		metrics.CacheRequests.WithLabelValues("miss").Inc()
	default:
		metrics.CacheRequests.WithLabelValues("error").Inc()
		rt.log.Warn("cache get failed", "key", key, "err", err)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		rt.log.Warn("cache encode failed", "key", key, "err", err)
		return v, nil
	}
	if err := rt.store.Set(ctx, key, b, rt.timeout); err != nil {
		rt.log.Warn("cache set failed", "key", key, "err", err)
	}
	return v, nil
}
