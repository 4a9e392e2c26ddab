package builtin

import (
	"math"

	"quantatomai/feature-engine/transform"
)

// minMaxState is the running (min, max, count) triple combined across
// records before Present resolves the scaling bounds.
type minMaxState struct {
	Min, Max float64
	N        int64
}

// MinMaxSummary is the presented aggregator state for MinMaxScaler,
// re-derivable from an encoded settings string (spec.md §8 "Min-max
// scaler").
type MinMaxSummary struct {
	Min, Max float64
}

// MinMaxScaler rescales a numeric field into [0, 1] using the min and max
// observed across the dataset. A degenerate range (min == max) scales
// every value to 0.5 rather than dividing by zero.
type MinMaxScaler struct {
	name string
}

// NewMinMaxScaler constructs a MinMaxScaler transformer.
func NewMinMaxScaler(name string) MinMaxScaler { return MinMaxScaler{name: name} }

func (t MinMaxScaler) Name() string { return t.name }

func (t MinMaxScaler) Aggregator() transform.Aggregator[float64, minMaxState, MinMaxSummary] {
	return transform.Aggregator[float64, minMaxState, MinMaxSummary]{
		Prepare: func(a float64) minMaxState { return minMaxState{Min: a, Max: a, N: 1} },
		Combine: func(x, y minMaxState) minMaxState {
			return minMaxState{Min: math.Min(x.Min, y.Min), Max: math.Max(x.Max, y.Max), N: x.N + y.N}
		},
		Present: func(s minMaxState) (MinMaxSummary, error) {
			if s.N == 0 {
				return MinMaxSummary{}, transform.ErrEmptyAggregate
			}
			return MinMaxSummary{Min: s.Min, Max: s.Max}, nil
		},
	}
}

func (t MinMaxScaler) FeatureDimension(MinMaxSummary) int { return 1 }

func (t MinMaxScaler) FeatureNames(MinMaxSummary) []string { return []string{t.name} }

func (t MinMaxScaler) BuildFeatures(a float64, present bool, c MinMaxSummary, sink transform.Sink) {
	if !present {
		sink.Skip()
		return
	}
	if c.Max <= c.Min {
		sink.Add(t.name, 0.5)
		return
	}
	sink.Add(t.name, (a-c.Min)/(c.Max-c.Min))
}

func (t MinMaxScaler) EncodeAggregator(c MinMaxSummary) string { return encodeJSON(c) }

func (t MinMaxScaler) DecodeAggregator(s string) (MinMaxSummary, error) {
	return decodeJSON[MinMaxSummary](s)
}

func (t MinMaxScaler) Params() map[string]string { return nil }
