package featureset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantatomai/feature-engine/builder"
	"quantatomai/feature-engine/builtin"
	"quantatomai/feature-engine/feature"
	"quantatomai/feature-engine/optional"
	"quantatomai/feature-engine/specbuilder"
)

type row struct {
	x float64
	y float64
	c string
}

func idEntry(name string, extract func(row) float64) feature.Entry[row] {
	return feature.New[row, float64, struct{}, struct{}](
		func(r row) optional.Option[float64] { return optional.Some(extract(r)) },
		optional.None[float64](),
		builtin.NewIdentity(name),
	)
}

// oneHotFS builds a two-entry, cross-declared feature set over
// transformer names "l" and "r" using the spec builder, which lets Go's
// ordinary type inference bind the OneHotEncoder's unexported aggregator
// state without this test needing to name it.
func oneHotFS(t *testing.T, combine func(l, r float64) float64) *FeatureSet[row] {
	t.Helper()
	b := specbuilder.Of[row]()
	specbuilder.Required(b, func(r row) string { return r.c }, builtin.NewOneHotEncoder("l"))
	specbuilder.Required(b, func(r row) string { return r.c }, builtin.NewOneHotEncoder("r"))
	b.Cross("l", "r", combine)
	fs, err := b.Build()
	require.NoError(t, err)
	return fs
}

func TestDuplicateNameRejected(t *testing.T) {
	a := idEntry("x", func(r row) float64 { return r.x })
	b := idEntry("x", func(r row) float64 { return r.y })
	_, err := New([]feature.Entry[row]{a, b}, nil)
	assert.Error(t, err)
}

func TestCrossUnknownNameRejected(t *testing.T) {
	a := idEntry("x", func(r row) float64 { return r.x })
	_, err := New([]feature.Entry[row]{a}, []Cross{{Left: "x", Right: "missing"}})
	assert.Error(t, err)
}

func TestWidthAgreementAndIdentityValues(t *testing.T) {
	a := idEntry("x", func(r row) float64 { return r.x })
	fs, err := New([]feature.Entry[row]{a}, nil)
	require.NoError(t, err)

	rows := []row{{x: 1.0}, {x: 2.0}, {x: 3.0}}
	var presented []optional.Option[any]
	var prepared []optional.Option[any]
	for i, r := range rows {
		raw := fs.Slots(r)
		p := fs.Prepare(raw)
		if i == 0 {
			prepared = p
		} else {
			prepared = fs.Sum(prepared, p)
		}
	}
	presented, err = fs.Present(prepared)
	require.NoError(t, err)

	names := fs.FeatureNames(presented)
	assert.Equal(t, []string{"x"}, names)
	assert.Equal(t, len(names), fs.FeatureDimension(presented))

	for _, r := range rows {
		raw := fs.Slots(r)
		b := builder.NewDense()
		fs.FeatureValues(raw, presented, b)
		vals := b.Result()
		assert.Len(t, vals, fs.FeatureDimension(presented))
		assert.Equal(t, []float64{r.x}, vals)
	}
}

func TestCrossDimensionAndLeftMajorOrder(t *testing.T) {
	fs := oneHotFS(t, func(a, b float64) float64 { return a * b })

	rows := []row{{c: "a"}, {c: "b"}}
	var prepared []optional.Option[any]
	for i, r := range rows {
		raw := fs.Slots(r)
		p := fs.Prepare(raw)
		if i == 0 {
			prepared = p
		} else {
			prepared = fs.Sum(prepared, p)
		}
	}
	presented, err := fs.Present(prepared)
	require.NoError(t, err)

	names := fs.FeatureNames(presented)
	// left block: l_a, l_b (2); right block same (2); cross 2*2=4
	assert.Len(t, names, 2+2+4)
	assert.Equal(t, 2+2+4, fs.FeatureDimension(presented))

	b := builder.NewDense()
	fs.FeatureValues(fs.Slots(rows[0]), presented, b)
	vals := b.Result()
	assert.Len(t, vals, 2+2+4)
	assert.Equal(t, []string{"l_a_x_r_a", "l_a_x_r_b", "l_b_x_r_a", "l_b_x_r_b"}, names[4:])
	assert.Equal(t, []float64{1, 0, 1, 0, 1, 0, 0, 0}, vals)
}

func TestNameUniqueness(t *testing.T) {
	a := idEntry("x", func(r row) float64 { return r.x })
	b := idEntry("y", func(r row) float64 { return r.y })
	fs, err := New([]feature.Entry[row]{a, b}, nil)
	require.NoError(t, err)

	raw := fs.Slots(row{x: 1, y: 2})
	prepared := fs.Prepare(raw)
	presented, err := fs.Present(prepared)
	require.NoError(t, err)

	names := fs.FeatureNames(presented)
	seen := make(map[string]bool)
	for _, n := range names {
		assert.False(t, seen[n], "duplicate name %q", n)
		seen[n] = true
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	a := idEntry("x", func(r row) float64 { return r.x })
	fs, err := New([]feature.Entry[row]{a}, nil)
	require.NoError(t, err)

	raw := fs.Slots(row{x: 5})
	prepared := fs.Prepare(raw)
	presented, err := fs.Present(prepared)
	require.NoError(t, err)

	settings := fs.FeatureSettings(presented)
	require.Len(t, settings, 1)
	assert.Equal(t, "x", settings[0].Name)

	decoded, err := fs.DecodeAggregators(settings)
	require.NoError(t, err)
	assert.Equal(t, presented, decoded)
}

func TestDecodeAggregatorsMissingSettingErrors(t *testing.T) {
	a := idEntry("x", func(r row) float64 { return r.x })
	fs, err := New([]feature.Entry[row]{a}, nil)
	require.NoError(t, err)

	_, err = fs.DecodeAggregators(nil)
	assert.Error(t, err)
}

func TestSumAssociative(t *testing.T) {
	// MinMaxScaler's aggregator carries real (min, max, count) state, so
	// this exercises spec.md §8 "Monoid associativity" against an
	// aggregator whose Combine actually discriminates association order
	// if Sum ever stopped being associative, unlike a stateless pass-through.
	b := specbuilder.Of[row]()
	specbuilder.Required(b, func(r row) float64 { return r.x }, builtin.NewMinMaxScaler("x"))
	fs, err := b.Build()
	require.NoError(t, err)

	p1 := fs.Prepare(fs.Slots(row{x: 1}))
	p2 := fs.Prepare(fs.Slots(row{x: 7}))
	p3 := fs.Prepare(fs.Slots(row{x: 4}))

	left := fs.Sum(fs.Sum(p1, p2), p3)
	right := fs.Sum(p1, fs.Sum(p2, p3))

	presentedLeft, err := fs.Present(left)
	require.NoError(t, err)
	presentedRight, err := fs.Present(right)
	require.NoError(t, err)
	assert.Equal(t, presentedLeft, presentedRight)

	rec := builder.NewDense()
	fs.FeatureValues(fs.Slots(row{x: 7}), presentedLeft, rec)
	vals := rec.Result()
	require.Len(t, vals, 1)
	assert.InDelta(t, 1.0, vals[0], 1e-9) // max observed, scaled to 1.0
}

func TestCombineFeatureSets(t *testing.T) {
	fsA, err := New([]feature.Entry[row]{idEntry("x", func(r row) float64 { return r.x })}, nil)
	require.NoError(t, err)
	fsB, err := New([]feature.Entry[row]{idEntry("y", func(r row) float64 { return r.y })}, nil)
	require.NoError(t, err)

	combined, err := Combine(fsA, fsB)
	require.NoError(t, err)
	assert.Equal(t, 2, combined.Len())
}

func TestCombineEmptyErrors(t *testing.T) {
	_, err := Combine[row]()
	assert.Error(t, err)
}
