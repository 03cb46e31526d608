// Package model contains domain models passed between layers.
package model

// Opt holds a value that may be absent. The zero value is None.
// It replaces NaN/sentinel coercion so that "no data" never reads as zero.
type Opt[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, ok: true}
}

// None returns an absent value.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.ok
}

// Valid reports whether a value is present.
func (o Opt[T]) Valid() bool {
	return o.ok
}

// Or returns the value when present, def otherwise.
func (o Opt[T]) Or(def T) T {
	if o.ok {
		return o.value
	}
	return def
}
