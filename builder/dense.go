package builder

import (
	"math"

	"quantatomai/feature-engine/arena"
)

// Dense assembles one record's feature vector into a []float64, using NaN
// as the skip sentinel (spec.md §4.1 "sentinel holes, not zeros — the sink
// chooses their representation"). When backed by an Arena (NewDenseFromArena),
// each Init releases the previous vector back to the pool before acquiring
// a fresh one, amortizing allocation across a hot extraction loop.
type Dense struct {
	values []float64
	pos    int
	pool   *arena.Arena
}

// NewDense constructs an empty Dense builder that allocates its own
// backing array, reusing it on later Init calls when it is large enough.
func NewDense() *Dense { return &Dense{} }

// NewDenseFromArena constructs a Dense builder that acquires its backing
// array from pool on every Init and releases the previous one back to it,
// rather than allocating per record.
func NewDenseFromArena(pool *arena.Arena) *Dense { return &Dense{pool: pool} }

func (d *Dense) Init(totalDimension int) {
	if d.pool != nil {
		d.pool.Release(d.values)
		buf := d.pool.Acquire(totalDimension)
		d.values = buf[:totalDimension]
		d.pos = 0
		return
	}
	if cap(d.values) < totalDimension {
		d.values = make([]float64, totalDimension)
	} else {
		d.values = d.values[:totalDimension]
	}
	d.pos = 0
}

func (d *Dense) Prepare(Block) {}

func (d *Dense) Add(_ string, value float64) {
	d.values[d.pos] = value
	d.pos++
}

func (d *Dense) Skip() {
	d.values[d.pos] = math.NaN()
	d.pos++
}

func (d *Dense) SkipN(n int) {
	for i := 0; i < n; i++ {
		d.Skip()
	}
}

func (d *Dense) AddMany(names []string, values []float64) error {
	if len(names) != len(values) {
		return errDimensionMismatch(len(names), len(values))
	}
	for i, v := range values {
		d.Add(names[i], v)
	}
	return nil
}

// Result returns the assembled vector. The builder remains reusable after
// the next Init; Result does not copy, so callers that need to retain a
// vector across the next Init should copy it themselves.
func (d *Dense) Result() []float64 { return d.values[:d.pos] }

func (d *Dense) NewBuilder() Builder[[]float64] { return &Dense{pool: d.pool} }
