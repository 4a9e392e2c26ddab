// Package specbuilder implements the spec builder (C6, spec.md §3 "Spec
// builder", §4.6): the fluent construction surface that accumulates
// feature entries and cross declarations into a FeatureSet, and then
// drives extraction directly.
package specbuilder

import (
	"quantatomai/feature-engine/collection"
	"quantatomai/feature-engine/extractor"
	"quantatomai/feature-engine/feature"
	"quantatomai/feature-engine/featureset"
	"quantatomai/feature-engine/optional"
	"quantatomai/feature-engine/transform"
)

// Builder accumulates declarations for one FeatureSet[T]. Declaration
// errors (duplicate names, unknown cross endpoints) surface at Build time,
// not at each Required/Optional/Cross call, so a chain can be assembled unconditionally
// (spec.md §7 kind 1 "Spec construction errors").
type Builder[T any] struct {
	entries []feature.Entry[T]
	crosses []featureset.Cross
}

// Of starts a new, empty spec builder for record type T.
func Of[T any]() *Builder[T] { return &Builder[T]{} }

// Required declares a transformer over a value always present on T
// (spec.md §4.4 "Required field"). The transformer's own Name() becomes
// the declared entry's name.
func Required[T, A, B, C any](b *Builder[T], extract func(T) A, transformer transform.Transformer[A, B, C]) *Builder[T] {
	entry := feature.New[T, A, B, C](
		func(t T) optional.Option[A] { return optional.Some(extract(t)) },
		optional.None[A](),
		transformer,
	)
	b.entries = append(b.entries, entry)
	return b
}

// Optional declares a transformer over a value that may be absent on a
// given record, falling back to def when absent (spec.md §4.4 "Optional
// field with default").
func Optional[T, A, B, C any](b *Builder[T], extract func(T) optional.Option[A], def optional.Option[A], transformer transform.Transformer[A, B, C]) *Builder[T] {
	entry := feature.New[T, A, B, C](extract, def, transformer)
	b.entries = append(b.entries, entry)
	return b
}

// Cross declares a cross between two already-declared entry names,
// identified by the exact name each transformer reports via Name()
// (spec.md §4.4 "Cross declaration").
func (b *Builder[T]) Cross(left, right string, combine func(l, r float64) float64) *Builder[T] {
	b.crosses = append(b.crosses, featureset.Cross{Left: left, Right: right, Combine: combine})
	return b
}

// Combine merges several spec builders' declarations in argument order,
// the builder-level counterpart to featureset.Combine (spec.md §4.6
// "combine").
func Combine[T any](builders ...*Builder[T]) *Builder[T] {
	merged := &Builder[T]{}
	for _, bb := range builders {
		merged.entries = append(merged.entries, bb.entries...)
		merged.crosses = append(merged.crosses, bb.crosses...)
	}
	return merged
}

// Build validates the accumulated declarations and produces a FeatureSet.
func (b *Builder[T]) Build() (*featureset.FeatureSet[T], error) {
	return featureset.New(b.entries, b.crosses)
}

// Extract validates the spec and returns an extractor over data (spec.md
// §4.6 "extract"). The prepare/reduce/present pipeline runs lazily, on the
// extractor's first query.
func Extract[T any](b *Builder[T], data collection.Collection[T]) (*extractor.Extractor[T], error) {
	fs, err := b.Build()
	if err != nil {
		return nil, err
	}
	return extractor.New(fs, data), nil
}

// ExtractWithSettings validates the spec and builds an extractor that
// replays recorded aggregator settings instead of reducing data (spec.md
// §4.6 "extractWithSettings").
func ExtractWithSettings[T any](b *Builder[T], data collection.Collection[T], settings []featureset.Setting) (*extractor.Extractor[T], error) {
	fs, err := b.Build()
	if err != nil {
		return nil, err
	}
	return extractor.FromSettings(fs, data, settings)
}
