package fn

import "fmt"

// Result carries either a value or the error that prevented producing it.
type Result[T any] struct {
	val T
	err error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] { return Result[T]{val: v} }

// Err wraps a failure. A nil err is treated as an unknown failure so that
// Err never produces a result that reports success.
func Err[T any](err error) Result[T] {
	if err == nil {
		err = fmt.Errorf("fn: unknown error")
	}
	return Result[T]{err: err}
}

// Errf builds a failed Result from a format string.
func Errf[T any](format string, args ...any) Result[T] {
	return Result[T]{err: fmt.Errorf(format, args...)}
}

// FromPair adapts a conventional (value, error) return.
func FromPair[T any](v T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(v)
}

func (r Result[T]) IsOk() bool  { return r.err == nil }
func (r Result[T]) IsErr() bool { return r.err != nil }

// Unwrap returns the value and error as a pair.
func (r Result[T]) Unwrap() (T, error) { return r.val, r.err }

// Error returns the failure, or nil on success.
func (r Result[T]) Error() error { return r.err }

// UnwrapOr returns the value, or fallback when r failed.
func (r Result[T]) UnwrapOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.val
}

// MapResult transforms the value of a successful result.
func MapResult[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return Ok(f(r.val))
}
