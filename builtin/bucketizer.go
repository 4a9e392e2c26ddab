package builtin

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"

	"quantatomai/feature-engine/transform"
	"quantatomai/feature-engine/wireformat"
)

// QuantileBreakpoints is the presented aggregator state for
// QuantileBucketizer: the numBuckets-1 interior cut points that split the
// observed distribution into equal-count buckets.
type QuantileBreakpoints struct {
	Cuts []float64
}

// QuantileBucketizer one-hot encodes a numeric field by which quantile
// bucket of the observed distribution it falls into. This reference
// aggregator buffers every observed value until Present, which bounds it
// to datasets that fit in memory; a streaming quantile sketch would be
// needed for larger inputs.
type QuantileBucketizer struct {
	name       string
	numBuckets int
}

// NewQuantileBucketizer constructs a QuantileBucketizer transformer with
// numBuckets equal-count buckets. numBuckets must be at least 2.
func NewQuantileBucketizer(name string, numBuckets int) QuantileBucketizer {
	return QuantileBucketizer{name: name, numBuckets: numBuckets}
}

func (t QuantileBucketizer) Name() string { return t.name }

func (t QuantileBucketizer) Aggregator() transform.Aggregator[float64, []float64, QuantileBreakpoints] {
	return transform.Aggregator[float64, []float64, QuantileBreakpoints]{
		Prepare: func(a float64) []float64 { return []float64{a} },
		Combine: func(x, y []float64) []float64 {
			out := make([]float64, 0, len(x)+len(y))
			out = append(out, x...)
			out = append(out, y...)
			return out
		},
		Present: func(vals []float64) (QuantileBreakpoints, error) {
			if len(vals) == 0 {
				return QuantileBreakpoints{}, transform.ErrEmptyAggregate
			}
			sorted := append([]float64(nil), vals...)
			sort.Float64s(sorted)
			cuts := make([]float64, 0, t.numBuckets-1)
			for i := 1; i < t.numBuckets; i++ {
				pos := float64(i) / float64(t.numBuckets) * float64(len(sorted)-1)
				lo := int(pos)
				hi := lo + 1
				if hi >= len(sorted) {
					cuts = append(cuts, sorted[lo])
					continue
				}
				frac := pos - float64(lo)
				cuts = append(cuts, sorted[lo]+(sorted[hi]-sorted[lo])*frac)
			}
			return QuantileBreakpoints{Cuts: cuts}, nil
		},
	}
}

func (t QuantileBucketizer) FeatureDimension(QuantileBreakpoints) int { return t.numBuckets }

func (t QuantileBucketizer) FeatureNames(QuantileBreakpoints) []string {
	names := make([]string, t.numBuckets)
	for i := range names {
		names[i] = t.name + "_bucket_" + strconv.Itoa(i)
	}
	return names
}

func (t QuantileBucketizer) bucketOf(a float64, c QuantileBreakpoints) int {
	return sort.SearchFloat64s(c.Cuts, a)
}

func (t QuantileBucketizer) BuildFeatures(a float64, present bool, c QuantileBreakpoints, sink transform.Sink) {
	if !present {
		sink.SkipN(t.numBuckets)
		return
	}
	bucket := t.bucketOf(a, c)
	names := t.FeatureNames(c)
	for i, name := range names {
		v := 0.0
		if i == bucket {
			v = 1
		}
		sink.Add(name, v)
	}
}

// EncodeAggregator packs the cut points as a little-endian float64 vector
// wrapped in a FlatBuffers table (package wireformat), rather than JSON —
// the cuts are a flat numeric buffer with a fixed element width, exactly
// the shape wireformat's zero-copy byte-vector encoding targets.
func (t QuantileBucketizer) EncodeAggregator(c QuantileBreakpoints) string {
	payload := make([]byte, 8*len(c.Cuts))
	for i, v := range c.Cuts {
		binary.LittleEndian.PutUint64(payload[i*8:], math.Float64bits(v))
	}
	return wireformat.EncodeBytes(payload)
}

func (t QuantileBucketizer) DecodeAggregator(s string) (QuantileBreakpoints, error) {
	payload, err := wireformat.DecodeBytes(s)
	if err != nil {
		return QuantileBreakpoints{}, fmt.Errorf("builtin: decode quantile breakpoints: %w", err)
	}
	if len(payload)%8 != 0 {
		return QuantileBreakpoints{}, fmt.Errorf("builtin: quantile breakpoints payload length %d not a multiple of 8", len(payload))
	}
	cuts := make([]float64, len(payload)/8)
	for i := range cuts {
		cuts[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
	}
	return QuantileBreakpoints{Cuts: cuts}, nil
}

func (t QuantileBucketizer) Params() map[string]string {
	return map[string]string{"numBuckets": strconv.Itoa(t.numBuckets)}
}
