package categories

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vietddude/catalog/internal/core/domain"
	"github.com/vietddude/catalog/internal/infra/api"
	"github.com/vietddude/catalog/internal/infra/metrics"
)

// Getter lists categories of a subline.
type Getter interface {
	GetCategories(ctx context.Context, sublineCode int) ([]domain.Category, error)
}

// QueryConfig controls caching and retries of a Query.
type QueryConfig struct {
	TTL   time.Duration
	Retry api.RetryConfig

	// Timeout bounds a shared fetch including its retries. Zero means none.
	Timeout time.Duration
}

// DefaultQueryConfig caches for five minutes with the default backoff.
var DefaultQueryConfig = QueryConfig{
	TTL:   5 * time.Minute,
	Retry: api.DefaultRetryConfig,
}

type cacheEntry struct {
	categories []domain.Category
	fetchedAt  time.Time
}

// Query serves category listings from a cache, fetching on a miss with
// retries decided by api.ShouldRetry. Concurrent misses for the same key
// share one fetch.
type Query struct {
	getter Getter
	cfg    QueryConfig
	log    *slog.Logger
	now    func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewQuery creates a new Query.
func NewQuery(getter Getter, cfg QueryConfig, logger *slog.Logger) *Query {
	if logger == nil {
		logger = slog.Default()
	}
	return &Query{
		getter: getter,
		cfg:    cfg,
		log:    logger,
		now:    time.Now,
		cache:  make(map[string]cacheEntry),
	}
}

// Key identifies the cached listing of a subline.
func Key(sublineCode int) string {
	return fmt.Sprintf("categories:%d", sublineCode)
}

// Get returns the categories of a subline.
func (q *Query) Get(ctx context.Context, sublineCode int) ([]domain.Category, error) {
	key := Key(sublineCode)
	if categories, ok := q.lookup(key); ok {
		metrics.CategoryCacheLookups.WithLabelValues("hit").Inc()
		return categories, nil
	}
	metrics.CategoryCacheLookups.WithLabelValues("miss").Inc()

	// The shared fetch outlives any single caller; each caller only stops
	// waiting when its own context ends.
	ch := q.group.DoChan(key, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if q.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, q.cfg.Timeout)
			defer cancel()
		}

		categories, err := api.Retry(fetchCtx, q.cfg.Retry, q.shouldRetry,
			func(ctx context.Context) ([]domain.Category, error) {
				return q.getter.GetCategories(ctx, sublineCode)
			},
		)
		if err != nil {
			return nil, err
		}
		q.store(key, categories)
		return categories, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]domain.Category)), nil
	}
}

// Invalidate drops the cached listing of a subline.
func (q *Query) Invalidate(sublineCode int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.cache, Key(sublineCode))
}

func (q *Query) shouldRetry(failureCount int, err error) bool {
	if !api.ShouldRetry(failureCount, err) {
		return false
	}
	metrics.FetchRetriesTotal.WithLabelValues(Path).Inc()
	q.log.Debug("Retrying category fetch", "attempt", failureCount+1, "error", err)
	return true
}

func (q *Query) lookup(key string) ([]domain.Category, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	entry, ok := q.cache[key]
	if !ok {
		return nil, false
	}
	if q.cfg.TTL > 0 && q.now().Sub(entry.fetchedAt) > q.cfg.TTL {
		return nil, false
	}
	return slices.Clone(entry.categories), true
}

func (q *Query) store(key string, categories []domain.Category) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cache[key] = cacheEntry{categories: categories, fetchedAt: q.now()}
}
