package result

import (
	"context"
)

// TryCatch runs fn and converts a returned error or a panic into a Failure.
//
// onError receives the raw value exactly as produced: the returned error, or
// whatever fn panicked with. onError must not panic; if it does the panic is
// not recovered.
func TryCatch[V, E any](fn func() (V, error), onError func(raw any) E) Result[V, E] {
	v, raw, failed := run(fn)
	if failed {
		return Failure[V](onError(raw))
	}
	return Success[V, E](v)
}

// TryCatchAsync runs fn on its own goroutine and delivers exactly one Result
// on the returned channel once fn settles. Panics are recovered on that
// goroutine, so a crashing operation still produces a Failure.
func TryCatchAsync[V, E any](
	ctx context.Context,
	fn func(ctx context.Context) (V, error),
	onError func(raw any) E,
) <-chan Result[V, E] {
	out := make(chan Result[V, E], 1)
	go func() {
		defer close(out)
		v, raw, failed := run(func() (V, error) { return fn(ctx) })
		if failed {
			out <- Failure[V](onError(raw))
			return
		}
		out <- Success[V, E](v)
	}()
	return out
}

// Await blocks until the pending result is delivered.
func Await[V, E any](pending <-chan Result[V, E]) Result[V, E] {
	return <-pending
}

// run invokes fn and reports the raw failure value, if any.
func run[V any](fn func() (V, error)) (v V, raw any, failed bool) {
	completed := false
	defer func() {
		if completed {
			return
		}
		raw = recover()
		failed = true
	}()

	v, err := fn()
	completed = true
	if err != nil {
		return v, err, true
	}
	return v, nil, false
}
