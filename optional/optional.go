// Package optional provides the Option[T] shape used throughout the
// extraction pipeline's state slots (spec.md §3 "State slot") and the
// monoidal combine rules for aggregator state (spec.md §4.2).
package optional

// Option is a presence-tagged value. The zero Option[T] is None.
type Option[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an absent value.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the wrapped value and whether it was present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSome reports whether the option holds a value.
func (o Option[T]) IsSome() bool {
	return o.ok
}

// OrElse returns the wrapped value, or def if absent. Mirrors
// FeatureEntry.get(t) = extract(t) orElse default (spec.md §3).
func (o Option[T]) OrElse(def Option[T]) Option[T] {
	if o.ok {
		return o
	}
	return def
}

// Map applies f to a present value, passing through None.
func Map[A, B any](o Option[A], f func(A) B) Option[B] {
	if !o.ok {
		return None[B]()
	}
	return Some(f(o.value))
}

// MapErr is Map for a fallible f (spec.md §4.2: present may fail only on
// an empty monoid with no identity).
func MapErr[A, B any](o Option[A], f func(A) (B, error)) (Option[B], error) {
	if !o.ok {
		return None[B](), nil
	}
	v, err := f(o.value)
	if err != nil {
		return None[B](), err
	}
	return Some(v), nil
}

// Combine implements the four-case Option<B> monoid from spec.md §4.2:
//
//	None ⊕ None = None
//	Some ⊕ None = Some
//	None ⊕ Some = Some
//	Some(x) ⊕ Some(y) = Some(semigroup(x, y))
//
// semigroup must be associative; Combine itself is then associative too,
// which is what makes tree-shaped reduction safe (spec.md §8 "Monoid
// associativity").
func Combine[B any](lhs, rhs Option[B], semigroup func(B, B) B) Option[B] {
	lv, lok := lhs.Get()
	rv, rok := rhs.Get()
	switch {
	case lok && rok:
		return Some(semigroup(lv, rv))
	case lok:
		return lhs
	case rok:
		return rhs
	default:
		return None[B]()
	}
}
