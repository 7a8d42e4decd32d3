package categories

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vietddude/catalog/internal/core/domain"
	"github.com/vietddude/catalog/internal/infra/api"
	"github.com/vietddude/catalog/internal/infra/metrics"
)

// ctxGetter waits for release or for the fetch context to end.
type ctxGetter struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (g *ctxGetter) GetCategories(ctx context.Context, sublineCode int) ([]domain.Category, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-g.release:
		return []domain.Category{{Code: sublineCode, Name: "Lighting"}}, nil
	}
}

type stubGetter struct {
	mu    sync.Mutex
	calls int
	errs  []error
	data  []domain.Category
	block chan struct{}
}

func (s *stubGetter) GetCategories(ctx context.Context, sublineCode int) ([]domain.Category, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return s.data, nil
}

func (s *stubGetter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func serverError(status string) error {
	return &api.APIResponseError{Response: api.ErrorResponse{StatusCode: status, ErrorMessage: "boom"}}
}

var fastConfig = QueryConfig{
	TTL:   time.Minute,
	Retry: api.RetryConfig{InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
}

func TestKey(t *testing.T) {
	if got := Key(15); got != "categories:15" {
		t.Errorf("expected categories:15, got %s", got)
	}
}

func TestQuery_CachesWithinTTL(t *testing.T) {
	getter := &stubGetter{data: []domain.Category{{Code: 1, Name: "A"}}}
	q := NewQuery(getter, fastConfig, nil)
	hits := testutil.ToFloat64(metrics.CategoryCacheLookups.WithLabelValues("hit"))

	for i := 0; i < 3; i++ {
		got, err := q.Get(context.Background(), 4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("unexpected categories: %+v", got)
		}
	}

	if getter.callCount() != 1 {
		t.Errorf("expected 1 upstream call, got %d", getter.callCount())
	}
	if diff := testutil.ToFloat64(metrics.CategoryCacheLookups.WithLabelValues("hit")) - hits; diff != 2 {
		t.Errorf("expected 2 cache hits, got %v", diff)
	}
}

func TestQuery_RefetchesAfterTTL(t *testing.T) {
	getter := &stubGetter{data: []domain.Category{{Code: 1, Name: "A"}}}
	q := NewQuery(getter, fastConfig, nil)
	now := time.Now()
	q.now = func() time.Time { return now }

	if _, err := q.Get(context.Background(), 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := q.Get(context.Background(), 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if getter.callCount() != 2 {
		t.Errorf("expected 2 upstream calls, got %d", getter.callCount())
	}
}

func TestQuery_Invalidate(t *testing.T) {
	getter := &stubGetter{}
	q := NewQuery(getter, fastConfig, nil)

	_, _ = q.Get(context.Background(), 4)
	q.Invalidate(4)
	_, _ = q.Get(context.Background(), 4)

	if getter.callCount() != 2 {
		t.Errorf("expected 2 upstream calls, got %d", getter.callCount())
	}
}

func TestQuery_RetriesServerErrors(t *testing.T) {
	getter := &stubGetter{
		errs: []error{serverError("500"), serverError("503")},
		data: []domain.Category{{Code: 2, Name: "B"}},
	}
	q := NewQuery(getter, fastConfig, nil)
	retries := testutil.ToFloat64(metrics.FetchRetriesTotal.WithLabelValues(Path))

	got, err := q.Get(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Code != 2 {
		t.Errorf("unexpected categories: %+v", got)
	}
	if getter.callCount() != 3 {
		t.Errorf("expected 3 upstream calls, got %d", getter.callCount())
	}
	if diff := testutil.ToFloat64(metrics.FetchRetriesTotal.WithLabelValues(Path)) - retries; diff != 2 {
		t.Errorf("expected 2 retries recorded, got %v", diff)
	}
}

func TestQuery_StopsAfterMaxRetries(t *testing.T) {
	getter := &stubGetter{
		errs: []error{serverError("500"), serverError("500"), serverError("500"), serverError("500"), serverError("500")},
	}
	q := NewQuery(getter, fastConfig, nil)

	_, err := q.Get(context.Background(), 9)
	if err == nil {
		t.Fatal("expected error")
	}
	if want := api.MaxRetryAttempts + 1; getter.callCount() != want {
		t.Errorf("expected %d upstream calls, got %d", want, getter.callCount())
	}
}

func TestQuery_DoesNotRetryNonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "not found", err: serverError("404")},
		{name: "timeout", err: &api.TimeoutError{Cause: context.DeadlineExceeded}},
		{name: "plain error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getter := &stubGetter{errs: []error{tt.err}}
			q := NewQuery(getter, fastConfig, nil)

			_, err := q.Get(context.Background(), 1)
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
			if getter.callCount() != 1 {
				t.Errorf("expected 1 upstream call, got %d", getter.callCount())
			}
		})
	}
}

func TestQuery_FailuresAreNotCached(t *testing.T) {
	getter := &stubGetter{errs: []error{serverError("404")}}
	q := NewQuery(getter, fastConfig, nil)

	if _, err := q.Get(context.Background(), 1); err == nil {
		t.Fatal("expected error")
	}
	if _, err := q.Get(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if getter.callCount() != 2 {
		t.Errorf("expected 2 upstream calls, got %d", getter.callCount())
	}
}

func TestQuery_ConcurrentMissesShareFetch(t *testing.T) {
	getter := &stubGetter{
		data:  []domain.Category{{Code: 1, Name: "A"}},
		block: make(chan struct{}),
	}
	q := NewQuery(getter, fastConfig, nil)

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := q.Get(context.Background(), 3); err != nil {
				failures.Add(1)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(getter.block)
	wg.Wait()

	if failures.Load() != 0 {
		t.Errorf("expected no failures, got %d", failures.Load())
	}
	if getter.callCount() != 1 {
		t.Errorf("expected 1 upstream call, got %d", getter.callCount())
	}
}

func TestQuery_CancelledCallerDoesNotFailOthers(t *testing.T) {
	getter := &ctxGetter{started: make(chan struct{}), release: make(chan struct{})}
	q := NewQuery(getter, fastConfig, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := q.Get(firstCtx, 7)
		firstErr <- err
	}()
	<-getter.started

	type outcome struct {
		categories []domain.Category
		err        error
	}
	second := make(chan outcome, 1)
	go func() {
		list, err := q.Get(context.Background(), 7)
		second <- outcome{list, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("expected first caller to see its cancellation, got %v", err)
	}

	close(getter.release)
	got := <-second
	if got.err != nil {
		t.Fatalf("expected second caller to succeed, got %v", got.err)
	}
	if len(got.categories) != 1 || got.categories[0].Code != 7 {
		t.Errorf("unexpected categories: %+v", got.categories)
	}
	if n := getter.calls.Load(); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}
}

func TestQuery_FetchTimeout(t *testing.T) {
	getter := &ctxGetter{started: make(chan struct{}), release: make(chan struct{})}
	cfg := fastConfig
	cfg.Timeout = 20 * time.Millisecond
	q := NewQuery(getter, cfg, nil)

	_, err := q.Get(context.Background(), 7)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestQuery_CallersCannotCorruptCache(t *testing.T) {
	getter := &stubGetter{data: []domain.Category{{Code: 1, Name: "A"}}}
	q := NewQuery(getter, fastConfig, nil)

	first, err := q.Get(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first[0].Name = "changed"

	second, err := q.Get(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second[0].Name != "A" {
		t.Errorf("cache was modified through a returned slice: %+v", second)
	}
	second[0].Name = "changed again"

	third, _ := q.Get(context.Background(), 4)
	if third[0].Name != "A" {
		t.Errorf("cache was modified through a cached slice: %+v", third)
	}
}
