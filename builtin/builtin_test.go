package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantatomai/feature-engine/transform"
)

func TestMinMaxScalerEncodeDecodeRoundTrip(t *testing.T) {
	tr := NewMinMaxScaler("x")
	summary := MinMaxSummary{Min: 1.5, Max: 9.5}
	enc := tr.EncodeAggregator(summary)
	decoded, err := tr.DecodeAggregator(enc)
	require.NoError(t, err)
	assert.Equal(t, summary, decoded)
}

func TestMinMaxScalerDegenerateRangeScalesToHalf(t *testing.T) {
	tr := NewMinMaxScaler("x")
	rec := &capturingSink{}
	tr.BuildFeatures(3.0, true, MinMaxSummary{Min: 5, Max: 5}, rec)
	require.Len(t, rec.values, 1)
	assert.Equal(t, 0.5, rec.values[0])
}

func TestMinMaxScalerPresentFailsOnEmptyAggregate(t *testing.T) {
	tr := NewMinMaxScaler("x")
	_, err := tr.Aggregator().Present(minMaxState{})
	assert.ErrorIs(t, err, transform.ErrEmptyAggregate)
}

func TestStandardScalerWelfordMatchesTwoPassVariance(t *testing.T) {
	tr := NewStandardScaler("x")
	agg := tr.Aggregator()

	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	var state welfordState
	first := true
	for _, v := range values {
		s := agg.Prepare(v)
		if first {
			state = s
			first = false
			continue
		}
		state = agg.Combine(state, s)
	}
	summary, err := agg.Present(state)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, summary.Mean, 1e-9)
	assert.InDelta(t, 2.0, summary.Std, 1e-9)
}

func TestStandardScalerDegenerateVarianceScalesToZero(t *testing.T) {
	tr := NewStandardScaler("x")
	rec := &capturingSink{}
	tr.BuildFeatures(5.0, true, StandardSummary{Mean: 5, Std: 0}, rec)
	require.Len(t, rec.values, 1)
	assert.Equal(t, 0.0, rec.values[0])
}

func TestOneHotEncoderUnseenCategoryDuringReplay(t *testing.T) {
	tr := NewOneHotEncoder("c")
	vocab := Vocabulary{Categories: []string{"a", "b", "c"}}

	unseen := &capturingSink{}
	tr.BuildFeatures("z", true, vocab, unseen)
	assert.Equal(t, 3, unseen.skipped)
	assert.Empty(t, unseen.values)

	known := &capturingSink{}
	tr.BuildFeatures("a", true, vocab, known)
	assert.Equal(t, []float64{1, 0, 0}, known.values)

	assert.Equal(t, 3, tr.FeatureDimension(vocab))
}

func TestOneHotEncoderAbsentRecordSkipsWholeBlock(t *testing.T) {
	tr := NewOneHotEncoder("c")
	vocab := Vocabulary{Categories: []string{"a", "b"}}
	rec := &capturingSink{}
	tr.BuildFeatures("", false, vocab, rec)
	assert.Equal(t, 2, rec.skipped)
	assert.Empty(t, rec.values)
}

func TestQuantileBucketizerEncodeDecodeRoundTrip(t *testing.T) {
	tr := NewQuantileBucketizer("x", 4)
	summary := QuantileBreakpoints{Cuts: []float64{1.25, 5.5, 9.75}}
	enc := tr.EncodeAggregator(summary)
	decoded, err := tr.DecodeAggregator(enc)
	require.NoError(t, err)
	assert.Equal(t, summary, decoded)
}

func TestQuantileBucketizerEncodeDecodeEmptyCuts(t *testing.T) {
	tr := NewQuantileBucketizer("x", 2)
	enc := tr.EncodeAggregator(QuantileBreakpoints{})
	decoded, err := tr.DecodeAggregator(enc)
	require.NoError(t, err)
	assert.Empty(t, decoded.Cuts)
}

func TestQuantileBucketizerAssignsExpectedBucket(t *testing.T) {
	tr := NewQuantileBucketizer("x", 3)
	breaks := QuantileBreakpoints{Cuts: []float64{3.0, 7.0}}

	low := &capturingSink{}
	tr.BuildFeatures(1.0, true, breaks, low)
	assert.Equal(t, []float64{1, 0, 0}, low.values)

	mid := &capturingSink{}
	tr.BuildFeatures(5.0, true, breaks, mid)
	assert.Equal(t, []float64{0, 1, 0}, mid.values)

	high := &capturingSink{}
	tr.BuildFeatures(9.0, true, breaks, high)
	assert.Equal(t, []float64{0, 0, 1}, high.values)
}

func TestHashingEncoderIsDeterministic(t *testing.T) {
	tr := NewHashingEncoder("h", 16)
	a := &capturingSink{}
	tr.BuildFeatures("same-value", true, struct{}{}, a)
	b := &capturingSink{}
	tr.BuildFeatures("same-value", true, struct{}{}, b)
	assert.Equal(t, a.values, b.values)
	assert.Equal(t, 16, tr.FeatureDimension(struct{}{}))
}

func TestIdentitySkipsWhenAbsent(t *testing.T) {
	tr := NewIdentity("x")
	rec := &capturingSink{}
	tr.BuildFeatures(0, false, struct{}{}, rec)
	assert.Equal(t, 1, rec.skipped)
	assert.Empty(t, rec.values)
}

// capturingSink is a minimal transform.Sink recorder for asserting exactly
// what a transformer's BuildFeatures emits, independent of any builder.
type capturingSink struct {
	names   []string
	values  []float64
	skipped int
}

func (c *capturingSink) Add(name string, value float64) {
	c.names = append(c.names, name)
	c.values = append(c.values, value)
}

func (c *capturingSink) Skip()       { c.skipped++ }
func (c *capturingSink) SkipN(n int) { c.skipped += n }
