// Package extractor implements the extractor (C7, spec.md §3 "Extractor",
// §4.7): a lazy, memoized phase graph over a dataset, built once per
// FeatureSet and evaluated only as far as the caller's query requires.
package extractor

import (
	"quantatomai/feature-engine/builder"
	"quantatomai/feature-engine/collection"
	"quantatomai/feature-engine/featureset"
	"quantatomai/feature-engine/optional"
)

// Extractor owns a FeatureSet and a dataset, memoizing each phase
// (raw, aggregate, present) the first time it is demanded so that asking
// for FeatureNames twice, or for both FeatureNames and FeatureValues,
// never repeats the extraction of raw slots or the reduce (spec.md §4.7
// "Lazy, memoized phases").
type Extractor[T any] struct {
	fs   *featureset.FeatureSet[T]
	data collection.Collection[T]

	raw       collection.Collection[[]optional.Option[any]]
	rawOK     bool
	prepared  collection.Collection[[]optional.Option[any]]
	preparedOK bool
	aggregate []optional.Option[any]
	aggregateOK bool

	presented   []optional.Option[any]
	presentErr  error
	presentedOK bool
}

// New constructs an extractor that will derive its presented aggregator
// state from data via the full prepare/reduce/present pipeline.
func New[T any](fs *featureset.FeatureSet[T], data collection.Collection[T]) *Extractor[T] {
	return &Extractor[T]{fs: fs, data: data}
}

// FromSettings constructs an extractor that replays a previously recorded
// presented aggregator state, bypassing prepare/reduce entirely (spec.md
// §4.7 "Replay"). data is still needed to emit feature values for each
// record, but is never folded.
func FromSettings[T any](fs *featureset.FeatureSet[T], data collection.Collection[T], settings []featureset.Setting) (*Extractor[T], error) {
	presented, err := fs.DecodeAggregators(settings)
	if err != nil {
		return nil, err
	}
	return &Extractor[T]{fs: fs, data: data, presented: presented, presentedOK: true}, nil
}

// rawSlots extracts every record's raw slot array, memoized.
func (e *Extractor[T]) rawSlots() collection.Collection[[]optional.Option[any]] {
	if !e.rawOK {
		e.raw = collection.Map(e.data, e.fs.Slots)
		e.rawOK = true
	}
	return e.raw
}

// preparedSlots maps every record's raw slots through Prepare, memoized.
func (e *Extractor[T]) preparedSlots() collection.Collection[[]optional.Option[any]] {
	if !e.preparedOK {
		e.prepared = collection.Map(e.rawSlots(), e.fs.Prepare)
		e.preparedOK = true
	}
	return e.prepared
}

// zeroSlots is the reduce identity: a None in every slot, the identity
// element for optional.Combine (None combined with x yields x).
func (e *Extractor[T]) zeroSlots() []optional.Option[any] {
	return make([]optional.Option[any], e.fs.Len())
}

// aggregateSlots folds every record's prepared state into one aggregate
// slot array, memoized. Never invoked when the extractor was built via
// FromSettings.
func (e *Extractor[T]) aggregateSlots() []optional.Option[any] {
	if !e.aggregateOK {
		e.aggregate = collection.Reduce(e.preparedSlots(), e.zeroSlots(), e.fs.Sum)
		e.aggregateOK = true
	}
	return e.aggregate
}

// present resolves the presented aggregator state, running the full
// prepare/reduce/present pipeline on first use unless the extractor was
// constructed via FromSettings, in which case it returns the replayed
// state directly. Memoized either way.
func (e *Extractor[T]) present() ([]optional.Option[any], error) {
	if e.presentedOK {
		return e.presented, e.presentErr
	}
	presented, err := e.fs.Present(e.aggregateSlots())
	e.presented, e.presentErr, e.presentedOK = presented, err, true
	return e.presented, e.presentErr
}

// Presented exposes the resolved presented aggregator state, computing it
// on first use. Intended for callers (such as package multispec) that need
// to slice the state by entry index rather than go through the FeatureSet
// API directly.
func (e *Extractor[T]) Presented() ([]optional.Option[any], error) {
	return e.present()
}

// RawSlots exposes every record's raw slot array, in dataset order,
// computing it on first use.
func (e *Extractor[T]) RawSlots() [][]optional.Option[any] {
	return e.rawSlots().Items()
}

// FeatureSet exposes the underlying FeatureSet.
func (e *Extractor[T]) FeatureSet() *featureset.FeatureSet[T] {
	return e.fs
}

// FeatureDimension returns the total emitted width once aggregation
// completes (spec.md §4.5 "Width").
func (e *Extractor[T]) FeatureDimension() (int, error) {
	presented, err := e.present()
	if err != nil {
		return 0, err
	}
	return e.fs.FeatureDimension(presented), nil
}

// FeatureNames returns the emitted feature name sequence.
func (e *Extractor[T]) FeatureNames() ([]string, error) {
	presented, err := e.present()
	if err != nil {
		return nil, err
	}
	return e.fs.FeatureNames(presented), nil
}

// FeatureSettings returns the replayable settings record for this
// extraction (spec.md §4.5 "Settings round trip").
func (e *Extractor[T]) FeatureSettings() ([]featureset.Setting, error) {
	presented, err := e.present()
	if err != nil {
		return nil, err
	}
	return e.fs.FeatureSettings(presented), nil
}

// FeatureValues emits one feature vector per record, each built by a fresh
// instance from proto so independent records never share builder state
// (spec.md §4.8 "Per-group independent builders" generalizes to per-record
// independence here).
func FeatureValues[T, F any](e *Extractor[T], proto builder.Builder[F]) (collection.Collection[F], error) {
	presented, err := e.present()
	if err != nil {
		return collection.Empty[F](), err
	}
	return collection.Map(e.rawSlots(), func(raw []optional.Option[any]) F {
		b := proto.NewBuilder()
		e.fs.FeatureValues(raw, presented, b)
		return b.Result()
	}), nil
}

// Pair couples an original record with its emitted feature vector
// (spec.md §4.7 "Values paired with the original record").
type Pair[T, F any] struct {
	Original T
	Features F
}

// FeatureValuesWithOriginal is FeatureValues, additionally retaining the
// source record for each emitted vector.
func FeatureValuesWithOriginal[T, F any](e *Extractor[T], proto builder.Builder[F]) (collection.Collection[Pair[T, F]], error) {
	presented, err := e.present()
	if err != nil {
		return collection.Empty[Pair[T, F]](), err
	}
	records := e.data.Items()
	raws := e.rawSlots().Items()
	out := make([]Pair[T, F], len(records))
	for i, rec := range records {
		b := proto.NewBuilder()
		e.fs.FeatureValues(raws[i], presented, b)
		out[i] = Pair[T, F]{Original: rec, Features: b.Result()}
	}
	return collection.Of(out), nil
}
