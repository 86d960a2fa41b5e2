package domain

// Result is the tagged outcome of a collaborator call: either a value or an
// *Error, never both. Response decoding produces a Result so callers never
// inspect raw status codes or body shapes.
type Result[T any] struct {
	value T
	err   *Error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err wraps a failure. A nil e is treated as KindInternal.
func Err[T any](e *Error) Result[T] {
	if e == nil {
		e = &Error{Kind: KindInternal}
	}
	return Result[T]{err: e}
}

// IsOk reports whether the result holds a value.
func (r Result[T]) IsOk() bool { return r.err == nil }

// Get unpacks the result into Go's usual value, error pair.
func (r Result[T]) Get() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}

// Failure returns the error, or nil for an Ok result.
func (r Result[T]) Failure() *Error { return r.err }
