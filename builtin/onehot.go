package builtin

import (
	"sort"

	"quantatomai/feature-engine/transform"
)

// categorySet is the running set of distinct category values observed,
// combined across records by set union.
type categorySet map[string]struct{}

// Vocabulary is the presented aggregator state for OneHotEncoder: the
// sorted, deduplicated category list observed during extraction.
type Vocabulary struct {
	Categories []string
}

// OneHotEncoder emits one indicator feature per observed category. A
// category not present in the vocabulary at replay time skips the whole
// block rather than setting any indicator (spec.md §8 "One-hot unseen
// category").
type OneHotEncoder struct {
	name string
}

// NewOneHotEncoder constructs a OneHotEncoder transformer.
func NewOneHotEncoder(name string) OneHotEncoder { return OneHotEncoder{name: name} }

func (t OneHotEncoder) Name() string { return t.name }

func (t OneHotEncoder) Aggregator() transform.Aggregator[string, categorySet, Vocabulary] {
	return transform.Aggregator[string, categorySet, Vocabulary]{
		Prepare: func(a string) categorySet { return categorySet{a: struct{}{}} },
		Combine: func(x, y categorySet) categorySet {
			out := make(categorySet, len(x)+len(y))
			for k := range x {
				out[k] = struct{}{}
			}
			for k := range y {
				out[k] = struct{}{}
			}
			return out
		},
		Present: func(s categorySet) (Vocabulary, error) {
			if len(s) == 0 {
				return Vocabulary{}, transform.ErrEmptyAggregate
			}
			cats := make([]string, 0, len(s))
			for k := range s {
				cats = append(cats, k)
			}
			sort.Strings(cats)
			return Vocabulary{Categories: cats}, nil
		},
	}
}

func (t OneHotEncoder) FeatureDimension(c Vocabulary) int { return len(c.Categories) }

func (t OneHotEncoder) FeatureNames(c Vocabulary) []string {
	names := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		names[i] = t.name + "_" + cat
	}
	return names
}

// BuildFeatures skips the whole block for a category not in the
// vocabulary, rather than setting an indicator for it (spec.md §8 "One-hot
// unseen category": fit [a,b,c], replay [a,z,b] -> row z is all skips,
// width 3).
func (t OneHotEncoder) BuildFeatures(a string, present bool, c Vocabulary, sink transform.Sink) {
	if !present {
		sink.SkipN(len(c.Categories))
		return
	}
	idx := -1
	for i, cat := range c.Categories {
		if cat == a {
			idx = i
			break
		}
	}
	if idx == -1 {
		sink.SkipN(len(c.Categories))
		return
	}
	names := t.FeatureNames(c)
	for i := range c.Categories {
		v := 0.0
		if i == idx {
			v = 1
		}
		sink.Add(names[i], v)
	}
}

func (t OneHotEncoder) EncodeAggregator(c Vocabulary) string { return encodeJSON(c) }

func (t OneHotEncoder) DecodeAggregator(s string) (Vocabulary, error) {
	return decodeJSON[Vocabulary](s)
}

func (t OneHotEncoder) Params() map[string]string { return nil }
