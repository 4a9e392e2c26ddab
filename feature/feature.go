// Package feature implements the feature entry (C4, spec.md §3 "Feature
// entry", §4.4): a thin adapter pairing an extractor and optional default
// with a transformer, type-erasing the transformer's A/B/C parameters so a
// feature set can hold a heterogeneous, positionally-indexed sequence of
// entries (spec.md §9 "Type erasure of heterogeneous entries").
//
// Only the record type T is a shared generic parameter across a feature
// set's entries; A, B and C are erased behind the Entry[T] interface and
// boxed in optional.Option[any]. Every operation on an Entry reads and
// writes only the single slot position it owns — it is never handed
// another entry's slot (spec.md §4.4).
package feature

import (
	"fmt"

	"quantatomai/feature-engine/optional"
	"quantatomai/feature-engine/transform"
)

// Entry is the type-erased C4 contract. A feature set stores []Entry[T].
type Entry[T any] interface {
	// Name returns the transformer's unique identifier within the set.
	Name() string

	// Extract computes entry.get(t) = extract(t) orElse default, boxed as
	// Option[A] (spec.md §3, §4.4 "unsafeGet").
	Extract(t T) optional.Option[any]

	// Prepare maps an Option[A] slot through the aggregator's Prepare.
	Prepare(a optional.Option[any]) optional.Option[any]

	// Combine does the Option[B] monoid combine (spec.md §4.2) using this
	// entry's aggregator semigroup.
	Combine(lhs, rhs optional.Option[any]) optional.Option[any]

	// Present maps an Option[B] slot through the aggregator's Present.
	Present(b optional.Option[any]) (optional.Option[any], error)

	// Dimension returns the entry's emitted width for a presented summary.
	// An absent summary has width 0 (spec.md §4.5 "Width").
	Dimension(c optional.Option[any]) int

	// Names returns the entry's ordered, stable feature names for a
	// presented summary. An absent summary has no names.
	Names(c optional.Option[any]) []string

	// BuildFeatures emits this entry's block into sink: Dimension(c)
	// values when raw is present, or that many skips otherwise.
	BuildFeatures(raw optional.Option[any], c optional.Option[any], sink transform.Sink)

	// EncodeAggregator returns the transformer's opaque settings string
	// for a presented summary, or ok=false if the summary is absent.
	EncodeAggregator(c optional.Option[any]) (s string, ok bool)

	// DecodeAggregator rebuilds a presented-summary slot from a settings
	// string previously produced by EncodeAggregator.
	DecodeAggregator(s string) (optional.Option[any], error)

	// Params returns the transformer's parameter-name → string mapping
	// for settings provenance.
	Params() map[string]string
}

type entry[T, A, B, C any] struct {
	extract     func(T) optional.Option[A]
	def         optional.Option[A]
	transformer transform.Transformer[A, B, C]
	agg         transform.Aggregator[A, B, C]
}

// New constructs a feature entry from an extractor, optional default, and
// transformer (spec.md §3 "Feature entry (C4)").
func New[T, A, B, C any](
	extract func(T) optional.Option[A],
	def optional.Option[A],
	transformer transform.Transformer[A, B, C],
) Entry[T] {
	return &entry[T, A, B, C]{
		extract:     extract,
		def:         def,
		transformer: transformer,
		agg:         transformer.Aggregator(),
	}
}

func (e *entry[T, A, B, C]) Name() string { return e.transformer.Name() }

func (e *entry[T, A, B, C]) Extract(t T) optional.Option[any] {
	got := e.extract(t).OrElse(e.def)
	return boxOption[A](got)
}

func (e *entry[T, A, B, C]) Prepare(a optional.Option[any]) optional.Option[any] {
	unboxed := unboxOption[A](a)
	return optional.Map(unboxed, func(v A) any { return e.agg.Prepare(v) })
}

func (e *entry[T, A, B, C]) Combine(lhs, rhs optional.Option[any]) optional.Option[any] {
	l := unboxTyped[B](lhs)
	r := unboxTyped[B](rhs)
	combined := optional.Combine(l, r, e.agg.Combine)
	return boxOption[B](combined)
}

// Present always invokes the aggregator's Present, even when no record
// ever contributed to this entry's state (an absent slot is passed as B's
// zero value). This is what lets a stateful transformer's Present detect
// the empty-monoid-with-no-identity case and decide whether to propagate
// an error or substitute a safe value (spec.md §4.2, §7 kind 3, §8
// "Empty-dataset rule") — the engine itself never treats None specially.
func (e *entry[T, A, B, C]) Present(b optional.Option[any]) (optional.Option[any], error) {
	bv, _ := unboxTyped[B](b).Get()
	presented, err := e.agg.Present(bv)
	if err != nil {
		return optional.None[any](), fmt.Errorf("feature %q: present: %w", e.Name(), err)
	}
	return boxOption[C](optional.Some(presented)), nil
}

func (e *entry[T, A, B, C]) Dimension(c optional.Option[any]) int {
	typed, ok := unboxTyped[C](c).Get()
	if !ok {
		return 0
	}
	return e.transformer.FeatureDimension(typed)
}

func (e *entry[T, A, B, C]) Names(c optional.Option[any]) []string {
	typed, ok := unboxTyped[C](c).Get()
	if !ok {
		return nil
	}
	return e.transformer.FeatureNames(typed)
}

func (e *entry[T, A, B, C]) BuildFeatures(raw optional.Option[any], c optional.Option[any], sink transform.Sink) {
	typedC, okC := unboxTyped[C](c).Get()
	if !okC {
		return
	}
	typedA, okA := unboxTyped[A](raw).Get()
	e.transformer.BuildFeatures(typedA, okA, typedC, sink)
}

func (e *entry[T, A, B, C]) EncodeAggregator(c optional.Option[any]) (string, bool) {
	typed, ok := unboxTyped[C](c).Get()
	if !ok {
		return "", false
	}
	return e.transformer.EncodeAggregator(typed), true
}

func (e *entry[T, A, B, C]) DecodeAggregator(s string) (optional.Option[any], error) {
	c, err := e.transformer.DecodeAggregator(s)
	if err != nil {
		return optional.None[any](), fmt.Errorf("feature %q: decode aggregator: %w", e.Name(), err)
	}
	return boxOption[C](optional.Some(c)), nil
}

func (e *entry[T, A, B, C]) Params() map[string]string { return e.transformer.Params() }

// boxOption/unboxOption/unboxTyped cross the Option[X]<->Option[any]
// boundary. unboxOption is an alias of unboxTyped: both map a zero-value
// Option[any] (None) to None and panic on a present-but-wrong-type box, which would be
// an engine bug (every slot's dynamic type is fixed for its phase, per
// spec.md §9), not a reachable user error.

func boxOption[X any](o optional.Option[X]) optional.Option[any] {
	v, ok := o.Get()
	if !ok {
		return optional.None[any]()
	}
	return optional.Some[any](v)
}

func unboxOption[X any](o optional.Option[any]) optional.Option[X] {
	return unboxTyped[X](o)
}

func unboxTyped[X any](o optional.Option[any]) optional.Option[X] {
	v, ok := o.Get()
	if !ok {
		return optional.None[X]()
	}
	typed, ok := v.(X)
	if !ok {
		panic(fmt.Sprintf("feature: slot held %T, expected %T (phase-transition invariant violated)", v, typed))
	}
	return optional.Some(typed)
}
