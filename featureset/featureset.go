// Package featureset implements the feature set (C5, spec.md §3 "Feature
// set", §4.5): an ordered collection of feature entries plus cross-pair
// declarations, owning the prepare/sum/present/emit loops and the settings
// codec.
package featureset

import (
	"fmt"

	"quantatomai/feature-engine/builder"
	"quantatomai/feature-engine/feature"
	"quantatomai/feature-engine/optional"
)

// Cross is a declared binary combination of two previously-declared
// transformer blocks (spec.md §3 "Cross declaration").
type Cross struct {
	Left, Right string
	Combine     func(left, right float64) float64
}

// FeatureSet is the C5 component: an ordered array of entries plus the
// cross map, with transformer names unique across the set and every cross
// endpoint resolvable (spec.md §3 invariants).
type FeatureSet[T any] struct {
	entries []feature.Entry[T]
	index   map[string]int
	crosses []Cross
}

// New validates and constructs a FeatureSet. Errors surface at
// construction time, before any data is touched (spec.md §7 kind 1).
func New[T any](entries []feature.Entry[T], crosses []Cross) (*FeatureSet[T], error) {
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		if _, dup := index[e.Name()]; dup {
			return nil, fmt.Errorf("featureset: duplicate transformer name %q", e.Name())
		}
		index[e.Name()] = i
	}
	for _, c := range crosses {
		if _, ok := index[c.Left]; !ok {
			return nil, fmt.Errorf("featureset: cross references unknown name %q", c.Left)
		}
		if _, ok := index[c.Right]; !ok {
			return nil, fmt.Errorf("featureset: cross references unknown name %q", c.Right)
		}
	}
	return &FeatureSet[T]{entries: entries, index: index, crosses: crosses}, nil
}

// Len returns the number of declared entries (the fixed slot-array length
// n, spec.md §3 "State slot").
func (fs *FeatureSet[T]) Len() int { return len(fs.entries) }

// Entries exposes the underlying entries in declared order, e.g. for a
// multi-spec to re-derive a group mapping (spec.md §4.8).
func (fs *FeatureSet[T]) Entries() []feature.Entry[T] { return fs.entries }

// Crosses exposes the declared cross pairs in declared order.
func (fs *FeatureSet[T]) Crosses() []Cross { return fs.crosses }

// CrossName is the deterministic, injective cross-name combiner (spec.md
// §6 "Feature-name crossing convention", §9 Open Questions #1). Both
// inputs are expected to already be sanitized to [A-Za-z0-9_] by their
// owning transformers; the core does not re-sanitize (spec.md §6 "Name
// sanitization": transformer names pass through unchanged).
func CrossName(left, right string) string {
	return left + "_x_" + right
}

// Slots extracts one raw-value slot per entry from a record (spec.md §4.5
// "unsafeGet").
func (fs *FeatureSet[T]) Slots(t T) []optional.Option[any] {
	out := make([]optional.Option[any], len(fs.entries))
	for i, e := range fs.entries {
		out[i] = e.Extract(t)
	}
	return out
}

// Prepare maps each Option[A] slot through its aggregator's Prepare
// (spec.md §4.5 "unsafePrepare").
func (fs *FeatureSet[T]) Prepare(raw []optional.Option[any]) []optional.Option[any] {
	out := make([]optional.Option[any], len(fs.entries))
	for i, e := range fs.entries {
		out[i] = e.Prepare(raw[i])
	}
	return out
}

// Sum element-wise combines two prepared-state slot arrays (spec.md §4.5
// "unsafeSum"). Associative: safe to use as the reduce semigroup across
// arbitrary dataset partitions (spec.md §8 "Monoid associativity").
func (fs *FeatureSet[T]) Sum(lhs, rhs []optional.Option[any]) []optional.Option[any] {
	out := make([]optional.Option[any], len(fs.entries))
	for i, e := range fs.entries {
		out[i] = e.Combine(lhs[i], rhs[i])
	}
	return out
}

// Present maps each Option[B] slot through Present (spec.md §4.5
// "unsafePresent"). Every entry's Present runs, including for a None slot
// to which no record contributed; the extractor calls this on the all-None
// reduce identity for an empty dataset, so a stateful transformer's
// empty-aggregate error surfaces here.
func (fs *FeatureSet[T]) Present(prepared []optional.Option[any]) ([]optional.Option[any], error) {
	out := make([]optional.Option[any], len(fs.entries))
	for i, e := range fs.entries {
		presented, err := e.Present(prepared[i])
		if err != nil {
			return nil, fmt.Errorf("featureset: entry %d (%s): %w", i, fs.entries[i].Name(), err)
		}
		out[i] = presented
	}
	return out
}

// widths returns the per-entry emitted dimension for a presented slot
// array, in entry order.
func (fs *FeatureSet[T]) widths(presented []optional.Option[any]) []int {
	w := make([]int, len(fs.entries))
	for i, e := range fs.entries {
		w[i] = e.Dimension(presented[i])
	}
	return w
}

// FeatureDimension returns the total emitted width: the sum of per-entry
// widths plus, for each declared cross, the product of its two endpoints'
// widths (0 if either side is absent) — spec.md §4.5 "Width".
func (fs *FeatureSet[T]) FeatureDimension(presented []optional.Option[any]) int {
	w := fs.widths(presented)
	total := 0
	for _, wi := range w {
		total += wi
	}
	for _, c := range fs.crosses {
		total += w[fs.index[c.Left]] * w[fs.index[c.Right]]
	}
	return total
}

// FeatureNames returns the concatenation, in entry order, of each entry's
// names, followed by the cross blocks in declared order (spec.md §4.5
// "Names"). The result has no duplicates for a valid spec (spec.md §8
// "Name uniqueness").
func (fs *FeatureSet[T]) FeatureNames(presented []optional.Option[any]) []string {
	var names []string
	perEntry := make([][]string, len(fs.entries))
	for i, e := range fs.entries {
		perEntry[i] = e.Names(presented[i])
		names = append(names, perEntry[i]...)
	}
	for _, c := range fs.crosses {
		left := perEntry[fs.index[c.Left]]
		right := perEntry[fs.index[c.Right]]
		for _, l := range left {
			for _, r := range right {
				names = append(names, CrossName(l, r))
			}
		}
	}
	return names
}

// blockCapture buffers one entry's emitted (name, value) pairs during the
// primary emission pass so crosses can be computed without re-extracting
// (spec.md §4.5 step 3, §9 "Cross emission without re-extraction").
type blockCapture struct {
	target  builder.Sink
	names   []string
	values  []float64
	skipped bool
}

func (b *blockCapture) Add(name string, value float64) {
	b.names = append(b.names, name)
	b.values = append(b.values, value)
	b.target.Add(name, value)
}

func (b *blockCapture) Skip() {
	b.skipped = true
	b.target.Skip()
}

func (b *blockCapture) SkipN(n int) {
	b.skipped = true
	b.target.SkipN(n)
}

// FeatureValues emits one record's feature vector into b (spec.md §4.5
// "Emit"). raw and presented must come from the same FeatureSet instance
// that produced raw (same length, positionally aligned).
func (fs *FeatureSet[T]) FeatureValues(raw, presented []optional.Option[any], b builder.Sink) {
	b.Init(fs.FeatureDimension(presented))

	captures := make([]*blockCapture, len(fs.entries))
	for i, e := range fs.entries {
		dim := e.Dimension(presented[i])
		b.Prepare(builder.Block{Name: e.Name(), Dimension: dim})
		capture := &blockCapture{target: b}
		captures[i] = capture
		e.BuildFeatures(raw[i], presented[i], capture)
	}

	for _, c := range fs.crosses {
		left := captures[fs.index[c.Left]]
		right := captures[fs.index[c.Right]]
		width := len(left.values) * len(right.values)
		crossBlockName := CrossName(left.nameOrEmpty(), right.nameOrEmpty())
		b.Prepare(builder.Block{Name: crossBlockName, Dimension: maxInt(width, 0)})

		if left.skipped || right.skipped || width == 0 {
			leftW := fs.entries[fs.index[c.Left]].Dimension(presented[fs.index[c.Left]])
			rightW := fs.entries[fs.index[c.Right]].Dimension(presented[fs.index[c.Right]])
			b.SkipN(leftW * rightW)
			continue
		}

		for li, lv := range left.values {
			for ri, rv := range right.values {
				name := CrossName(left.names[li], right.names[ri])
				b.Add(name, c.Combine(lv, rv))
			}
		}
	}
}

func (b *blockCapture) nameOrEmpty() string {
	if len(b.names) == 0 {
		return ""
	}
	return b.names[0]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Setting is the per-transformer settings record (spec.md §3 "Settings
// record", §6).
type Setting struct {
	Name       string
	Params     map[string]string
	Aggregator *string
}

// FeatureSettings produces the entry-ordered settings sequence (spec.md
// §4.5 "Settings round trip").
func (fs *FeatureSet[T]) FeatureSettings(presented []optional.Option[any]) []Setting {
	out := make([]Setting, len(fs.entries))
	for i, e := range fs.entries {
		s := Setting{Name: e.Name(), Params: e.Params()}
		if enc, ok := e.EncodeAggregator(presented[i]); ok {
			s.Aggregator = &enc
		}
		out[i] = s
	}
	return out
}

// DecodeAggregators rebuilds the presented-slot array by matching settings
// to entries by name. Missing settings for a declared transformer is an
// error (spec.md §4.5, §7 kind 2).
func (fs *FeatureSet[T]) DecodeAggregators(settings []Setting) ([]optional.Option[any], error) {
	byName := make(map[string]Setting, len(settings))
	for _, s := range settings {
		byName[s.Name] = s
	}
	out := make([]optional.Option[any], len(fs.entries))
	for i, e := range fs.entries {
		s, ok := byName[e.Name()]
		if !ok {
			return nil, fmt.Errorf("featureset: missing settings for declared transformer %q", e.Name())
		}
		if s.Aggregator == nil {
			out[i] = optional.None[any]()
			continue
		}
		decoded, err := e.DecodeAggregator(*s.Aggregator)
		if err != nil {
			return nil, fmt.Errorf("featureset: decode %q: %w", e.Name(), err)
		}
		out[i] = decoded
	}
	return out, nil
}

// Combine concatenates entries and unions crossings from several feature
// sets in order, preserving declaration order. Name uniqueness is
// re-validated by New (spec.md §4.6 "combine"). combine fails on an empty
// argument list.
func Combine[T any](sets ...*FeatureSet[T]) (*FeatureSet[T], error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("featureset: combine requires at least one feature set")
	}
	var entries []feature.Entry[T]
	var crosses []Cross
	for _, s := range sets {
		entries = append(entries, s.entries...)
		crosses = append(crosses, s.crosses...)
	}
	return New(entries, crosses)
}
