package builder

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"
	"github.com/apache/arrow/go/v15/arrow/ipc"
	"github.com/apache/arrow/go/v15/arrow/memory"
)

// ArrowRecord assembles one record's features into a single-row Arrow
// RecordBatch — a "row of a tabular format" output (spec.md §4.3) suited
// to feeding a columnar batch pipeline downstream. Schema is derived from
// the feature names observed during this record's emission; a skipped slot
// is named "_skip_<position>", so two records share a schema only when they
// emit the same names and skip the same positions. A skipped slot is a true
// Arrow null, not a zero value (spec.md §4.1 "sentinel holes, not zeros").
type ArrowRecord struct {
	pool     memory.Allocator
	names    []string
	builders []*array.Float64Builder
}

// NewArrowRecord constructs an ArrowRecord builder using the default Go
// allocator, mirroring the pool construction in
// src/orchestration/grid_query_service_test.go's MockRecordReader setup.
func NewArrowRecord() *ArrowRecord {
	return &ArrowRecord{pool: memory.NewGoAllocator()}
}

func (a *ArrowRecord) Init(totalDimension int) {
	a.names = make([]string, 0, totalDimension)
	a.builders = make([]*array.Float64Builder, 0, totalDimension)
}

func (a *ArrowRecord) Prepare(Block) {}

func (a *ArrowRecord) Add(name string, value float64) {
	b := array.NewFloat64Builder(a.pool)
	b.Append(value)
	a.names = append(a.names, name)
	a.builders = append(a.builders, b)
}

func (a *ArrowRecord) Skip() {
	b := array.NewFloat64Builder(a.pool)
	b.AppendNull()
	a.names = append(a.names, fmt.Sprintf("_skip_%d", len(a.names)))
	a.builders = append(a.builders, b)
}

func (a *ArrowRecord) SkipN(n int) {
	for i := 0; i < n; i++ {
		a.Skip()
	}
}

func (a *ArrowRecord) AddMany(names []string, values []float64) error {
	if len(names) != len(values) {
		return errDimensionMismatch(len(names), len(values))
	}
	for i, v := range values {
		a.Add(names[i], v)
	}
	return nil
}

// Result builds the single-row arrow.Record. The caller owns the returned
// record and must call Release() on it.
func (a *ArrowRecord) Result() arrow.Record {
	fields := make([]arrow.Field, len(a.names))
	cols := make([]arrow.Array, len(a.names))
	for i, n := range a.names {
		fields[i] = arrow.Field{Name: n, Type: arrow.PrimitiveTypes.Float64, Nullable: true}
		cols[i] = a.builders[i].NewFloat64Array()
		a.builders[i].Release()
	}
	schema := arrow.NewSchema(fields, nil)
	rec := array.NewRecord(schema, cols, 1)
	for _, col := range cols {
		col.Release()
	}
	return rec
}

func (a *ArrowRecord) NewBuilder() Builder[arrow.Record] { return NewArrowRecord() }

// arrowBufferPool recycles byte buffers across SerializeArrowRecord calls,
// adapted from src/ipc/packet_serializer.go's bufferPool (the Arrow IPC
// writer half — no Arrow Flight/gRPC transport is involved here).
var arrowBufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// SerializeArrowRecord encodes rec using the Arrow IPC stream format and
// returns the bytes plus a release function the caller must invoke once
// done reading them.
func SerializeArrowRecord(rec arrow.Record) ([]byte, func(), error) {
	buf := arrowBufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	w := ipc.NewWriter(buf, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(memory.DefaultAllocator))
	if err := w.Write(rec); err != nil {
		w.Close()
		arrowBufferPool.Put(buf)
		return nil, nil, fmt.Errorf("builder: write arrow record: %w", err)
	}
	if err := w.Close(); err != nil {
		arrowBufferPool.Put(buf)
		return nil, nil, fmt.Errorf("builder: close arrow writer: %w", err)
	}
	return buf.Bytes(), func() { arrowBufferPool.Put(buf) }, nil
}
