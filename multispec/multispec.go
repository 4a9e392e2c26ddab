// Package multispec implements the multi-spec and multi-extractor (C8,
// spec.md §3 "Multi-spec & multi-extractor", §4.8): routing a single
// FeatureSet's declared transformers into named groups, each emitted
// through its own builder, while declared crosses are confined to a
// single group.
package multispec

import (
	"fmt"

	"quantatomai/feature-engine/builder"
	"quantatomai/feature-engine/collection"
	"quantatomai/feature-engine/extractor"
	"quantatomai/feature-engine/feature"
	"quantatomai/feature-engine/featureset"
	"quantatomai/feature-engine/optional"
)

// GroupFunc assigns each declared transformer name to a routing group
// (spec.md §4.8 "Group mapping").
type GroupFunc func(name string) string

// MultiSpec partitions a FeatureSet's entries into groups. Construction
// fails if any declared cross spans two different groups (spec.md §4.8
// "same-group-cross-only").
type MultiSpec[T any] struct {
	fs         *featureset.FeatureSet[T]
	groupNames []string
	indices    map[string][]int
}

// New validates group from fs's declared crosses and builds the group
// partition.
func New[T any](fs *featureset.FeatureSet[T], group GroupFunc) (*MultiSpec[T], error) {
	entries := fs.Entries()
	nameGroup := make(map[string]string, len(entries))
	indices := make(map[string][]int)
	var order []string
	seen := make(map[string]bool)
	for i, e := range entries {
		g := group(e.Name())
		nameGroup[e.Name()] = g
		if !seen[g] {
			seen[g] = true
			order = append(order, g)
		}
		indices[g] = append(indices[g], i)
	}
	for _, c := range fs.Crosses() {
		if nameGroup[c.Left] != nameGroup[c.Right] {
			return nil, fmt.Errorf("multispec: cross %q x %q spans groups %q and %q", c.Left, c.Right, nameGroup[c.Left], nameGroup[c.Right])
		}
	}
	return &MultiSpec[T]{fs: fs, groupNames: order, indices: indices}, nil
}

// Groups returns the distinct group names in first-seen order.
func (m *MultiSpec[T]) Groups() []string { return m.groupNames }

// Subset builds an independent FeatureSet containing only g's entries and
// the declared crosses wholly internal to g, plus the index of each
// subset entry into the parent FeatureSet's entry order (for slicing raw
// and presented slot arrays without re-extracting).
func (m *MultiSpec[T]) Subset(g string) (*featureset.FeatureSet[T], []int, error) {
	idx, ok := m.indices[g]
	if !ok {
		return nil, nil, fmt.Errorf("multispec: unknown group %q", g)
	}
	entries := m.fs.Entries()
	subEntries := make([]feature.Entry[T], len(idx))
	for j, i := range idx {
		subEntries[j] = entries[i]
	}

	nameGroup := make(map[string]string, len(entries))
	for name, gi := range m.indices {
		for _, i := range gi {
			nameGroup[entries[i].Name()] = name
		}
	}
	var subCrosses []featureset.Cross
	for _, c := range m.fs.Crosses() {
		if nameGroup[c.Left] == g {
			subCrosses = append(subCrosses, c)
		}
	}

	fs, err := featureset.New(subEntries, subCrosses)
	if err != nil {
		return nil, nil, fmt.Errorf("multispec: subset %q: %w", g, err)
	}
	return fs, idx, nil
}

// MultiExtractor routes a single shared extraction's emitted values into
// per-group builders, without re-running prepare/reduce/present per group
// (spec.md §4.8 "Multi-extractor shares one reduce").
type MultiExtractor[T, F any] struct {
	ex        *extractor.Extractor[T]
	subsets   map[string]*featureset.FeatureSet[T]
	subsetIdx map[string][]int
}

// NewMultiExtractor builds the per-group subsets once, up front, so that
// repeated FeatureValues calls across groups reuse them.
func NewMultiExtractor[T, F any](ex *extractor.Extractor[T], ms *MultiSpec[T]) (*MultiExtractor[T, F], error) {
	subsets := make(map[string]*featureset.FeatureSet[T], len(ms.Groups()))
	subsetIdx := make(map[string][]int, len(ms.Groups()))
	for _, g := range ms.Groups() {
		fs, idx, err := ms.Subset(g)
		if err != nil {
			return nil, err
		}
		subsets[g] = fs
		subsetIdx[g] = idx
	}
	return &MultiExtractor[T, F]{ex: ex, subsets: subsets, subsetIdx: subsetIdx}, nil
}

// FeatureValues emits group g's feature vectors, one per record, each
// built by a fresh instance from proto (spec.md §4.8 "Per-group
// independent builders").
func (me *MultiExtractor[T, F]) FeatureValues(g string, proto builder.Builder[F]) (collection.Collection[F], error) {
	fs, ok := me.subsets[g]
	if !ok {
		return collection.Empty[F](), fmt.Errorf("multispec: unknown group %q", g)
	}
	idx := me.subsetIdx[g]

	presented, err := me.ex.Presented()
	if err != nil {
		return collection.Empty[F](), err
	}
	raws := me.ex.RawSlots()

	out := make([]F, len(raws))
	subPresented := make([]optional.Option[any], len(idx))
	for j, i := range idx {
		subPresented[j] = presented[i]
	}
	for ri, raw := range raws {
		subRaw := make([]optional.Option[any], len(idx))
		for j, i := range idx {
			subRaw[j] = raw[i]
		}
		b := proto.NewBuilder()
		fs.FeatureValues(subRaw, subPresented, b)
		out[ri] = b.Result()
	}
	return collection.Of(out), nil
}

// FeatureNames returns group g's emitted feature name sequence.
func (me *MultiExtractor[T, F]) FeatureNames(g string) ([]string, error) {
	fs, ok := me.subsets[g]
	if !ok {
		return nil, fmt.Errorf("multispec: unknown group %q", g)
	}
	presented, err := me.ex.Presented()
	if err != nil {
		return nil, err
	}
	idx := me.subsetIdx[g]
	subPresented := make([]optional.Option[any], len(idx))
	for j, i := range idx {
		subPresented[j] = presented[i]
	}
	return fs.FeatureNames(subPresented), nil
}

// FilterRecords narrows a dataset to records matching keep. This is a
// convenience for routing only the records relevant to one group through
// its own extraction; it is distinct from the entry-level Filter below,
// which spec.md §4.8 actually specifies.
func FilterRecords[T any](data collection.Collection[T], keep func(T) bool) collection.Collection[T] {
	return collection.Filter(data, keep)
}

// Filter derives a new MultiSpec retaining only the entries for which keep
// returns true, pruning any declared cross whose endpoint was removed, and
// rebuilding the group mapping over the survivors (spec.md §4.8 "Filter").
// keep is evaluated against each entry's transformer name.
func (m *MultiSpec[T]) Filter(keep func(name string) bool) (*MultiSpec[T], error) {
	entries := m.fs.Entries()
	nameGroup := make(map[string]string, len(entries))
	for g, idx := range m.indices {
		for _, i := range idx {
			nameGroup[entries[i].Name()] = g
		}
	}

	var survivors []feature.Entry[T]
	keptName := make(map[string]bool, len(entries))
	for _, e := range entries {
		if keep(e.Name()) {
			survivors = append(survivors, e)
			keptName[e.Name()] = true
		}
	}

	var survivingCrosses []featureset.Cross
	for _, c := range m.fs.Crosses() {
		if keptName[c.Left] && keptName[c.Right] {
			survivingCrosses = append(survivingCrosses, c)
		}
	}

	fs, err := featureset.New(survivors, survivingCrosses)
	if err != nil {
		return nil, fmt.Errorf("multispec: filter: %w", err)
	}
	return New(fs, func(name string) string { return nameGroup[name] })
}

// ExtractGroupWithSettings replays only group g's entries from a settings
// document that may carry settings for every group in the multi-spec,
// ignoring settings belonging to other groups (spec.md §4.8 "Subset
// replay").
func ExtractGroupWithSettings[T any](ms *MultiSpec[T], g string, data collection.Collection[T], settings []featureset.Setting) (*extractor.Extractor[T], error) {
	fs, _, err := ms.Subset(g)
	if err != nil {
		return nil, err
	}
	return extractor.FromSettings(fs, data, settings)
}
