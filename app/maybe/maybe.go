// Package maybe holds the absent marker returned by the rendering pipeline in
// place of a value on any failure or missing-precondition path.
package maybe

// Value is either Some(v) or None. The zero Value is None.
type Value[T any] struct {
	v  T
	ok bool
}

// Some wraps a present value.
func Some[T any](v T) Value[T] {
	return Value[T]{v: v, ok: true}
}

// None returns the absent marker for T.
func None[T any]() Value[T] {
	return Value[T]{}
}

// Get returns the wrapped value and whether it is present.
func (m Value[T]) Get() (T, bool) {
	return m.v, m.ok
}

// IsNone reports whether m is the absent marker.
func (m Value[T]) IsNone() bool {
	return !m.ok
}

// OrElse returns the wrapped value, or def when absent.
func (m Value[T]) OrElse(def T) T {
	if !m.ok {
		return def
	}
	return m.v
}

// Map applies fn to a present value.
func Map[T, U any](m Value[T], fn func(T) U) Value[U] {
	if !m.ok {
		return None[U]()
	}
	return Some(fn(m.v))
}
