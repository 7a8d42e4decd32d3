// Package result provides a two-variant outcome type and guarded-call helpers
// that turn returned errors and panics into typed failures.
package result

// Result holds either a success value or a classified error, never both.
type Result[V, E any] struct {
	value V
	err   E
	ok    bool
}

// Success creates a successful Result carrying v.
func Success[V, E any](v V) Result[V, E] {
	return Result[V, E]{value: v, ok: true}
}

// Failure creates a failed Result carrying e.
func Failure[V, E any](e E) Result[V, E] {
	return Result[V, E]{err: e}
}

// IsSuccess reports whether r is the success variant.
func (r Result[V, E]) IsSuccess() bool {
	return r.ok
}

// IsFailure reports whether r is the failure variant.
func (r Result[V, E]) IsFailure() bool {
	return !r.IsSuccess()
}

// Value returns the success value, or the zero value of V on a failure.
func (r Result[V, E]) Value() V {
	return r.value
}

// Err returns the failure error, or the zero value of E on a success.
func (r Result[V, E]) Err() E {
	return r.err
}

// Get destructures r. The bool is true for the success variant.
func (r Result[V, E]) Get() (V, E, bool) {
	return r.value, r.err, r.ok
}
