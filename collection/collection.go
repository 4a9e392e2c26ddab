// Package collection provides the distributed-agnostic capability the
// extractor reduces over: map, reduce, cross and pure (spec.md §5
// "Concurrency & resource model" — the core depends only on this
// capability, never on a specific execution engine). This package supplies
// a single sequential, in-memory implementation; a Spark/Beam/Flink-backed
// implementation is explicitly out of scope (spec.md Non-goals).
package collection

// Collection wraps an ordered sequence of T. It is intentionally the
// simplest possible carrier — a slice — since the sequential
// implementation is a reference, not a performance target.
type Collection[T any] struct {
	items []T
}

// Of wraps an existing slice as a Collection, taking ownership of it.
func Of[T any](items []T) Collection[T] { return Collection[T]{items: items} }

// Pure lifts a single value into a one-element Collection (spec.md's
// "pure" capability — the unit of the monad used to seed a reduce).
func Pure[T any](item T) Collection[T] { return Collection[T]{items: []T{item}} }

// Empty returns a zero-length Collection of T.
func Empty[T any]() Collection[T] { return Collection[T]{} }

// Items exposes the underlying sequence in order.
func (c Collection[T]) Items() []T { return c.items }

// Len reports the element count.
func (c Collection[T]) Len() int { return len(c.items) }

// Map applies f to every element, producing a Collection of the (possibly
// different) result type. Go methods cannot introduce new type parameters,
// so Map is a free function rather than a method (mirrored by Reduce and
// Cross below).
func Map[A, B any](c Collection[A], f func(A) B) Collection[B] {
	out := make([]B, len(c.items))
	for i, a := range c.items {
		out[i] = f(a)
	}
	return Collection[B]{items: out}
}

// Reduce folds the collection down to one value using an associative
// combine starting from zero. combine must be associative so that a
// future distributed implementation could reassociate the fold across
// partitions without changing the result (spec.md §8 "Monoid
// associativity").
func Reduce[T any](c Collection[T], zero T, combine func(T, T) T) T {
	acc := zero
	for _, t := range c.items {
		acc = combine(acc, t)
	}
	return acc
}

// Cross pairs every element of a with every element of b, in left-major
// order, applying f to each pair. Grounded on the left-major mixed-radix
// traversal used for cross-feature emission (spec.md §4.5 step 3).
func Cross[A, B, C any](a Collection[A], b Collection[B], f func(A, B) C) Collection[C] {
	out := make([]C, 0, len(a.items)*len(b.items))
	for _, av := range a.items {
		for _, bv := range b.items {
			out = append(out, f(av, bv))
		}
	}
	return Collection[C]{items: out}
}

// Filter keeps only elements for which keep returns true, preserving order.
func Filter[T any](c Collection[T], keep func(T) bool) Collection[T] {
	out := make([]T, 0, len(c.items))
	for _, t := range c.items {
		if keep(t) {
			out = append(out, t)
		}
	}
	return Collection[T]{items: out}
}
