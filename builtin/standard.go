package builtin

import (
	"math"

	"quantatomai/feature-engine/transform"
)

// welfordState is a parallel (Chan et al.) Welford accumulator: count,
// running mean and running sum of squared deviations. Two partial states
// combine associatively, which is what lets StandardScaler reduce over
// arbitrarily partitioned data (spec.md §8 "Monoid associativity").
type welfordState struct {
	N    int64
	Mean float64
	M2   float64
}

func combineWelford(x, y welfordState) welfordState {
	if x.N == 0 {
		return y
	}
	if y.N == 0 {
		return x
	}
	n := x.N + y.N
	delta := y.Mean - x.Mean
	mean := x.Mean + delta*float64(y.N)/float64(n)
	m2 := x.M2 + y.M2 + delta*delta*float64(x.N)*float64(y.N)/float64(n)
	return welfordState{N: n, Mean: mean, M2: m2}
}

// StandardSummary is the presented aggregator state for StandardScaler.
type StandardSummary struct {
	Mean, Std float64
}

// StandardScaler rescales a numeric field to zero mean and unit variance
// using the population standard deviation observed across the dataset. A
// degenerate (zero-variance) field scales every value to 0.
type StandardScaler struct {
	name string
}

// NewStandardScaler constructs a StandardScaler transformer.
func NewStandardScaler(name string) StandardScaler { return StandardScaler{name: name} }

func (t StandardScaler) Name() string { return t.name }

func (t StandardScaler) Aggregator() transform.Aggregator[float64, welfordState, StandardSummary] {
	return transform.Aggregator[float64, welfordState, StandardSummary]{
		Prepare: func(a float64) welfordState { return welfordState{N: 1, Mean: a} },
		Combine: combineWelford,
		Present: func(s welfordState) (StandardSummary, error) {
			if s.N == 0 {
				return StandardSummary{}, transform.ErrEmptyAggregate
			}
			return StandardSummary{Mean: s.Mean, Std: math.Sqrt(s.M2 / float64(s.N))}, nil
		},
	}
}

func (t StandardScaler) FeatureDimension(StandardSummary) int { return 1 }

func (t StandardScaler) FeatureNames(StandardSummary) []string { return []string{t.name} }

func (t StandardScaler) BuildFeatures(a float64, present bool, c StandardSummary, sink transform.Sink) {
	if !present {
		sink.Skip()
		return
	}
	if c.Std == 0 {
		sink.Add(t.name, 0)
		return
	}
	sink.Add(t.name, (a-c.Mean)/c.Std)
}

func (t StandardScaler) EncodeAggregator(c StandardSummary) string { return encodeJSON(c) }

func (t StandardScaler) DecodeAggregator(s string) (StandardSummary, error) {
	return decodeJSON[StandardSummary](s)
}

func (t StandardScaler) Params() map[string]string { return nil }
