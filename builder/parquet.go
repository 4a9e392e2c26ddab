package builder

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// ParquetCell is one emitted feature cell shaped as a parquet row, field
// tags modeled on pkg/mdf/v1/molecule.Molecule's tagged-struct convention.
// Skipped cells are written with Null true rather than a zero value, since
// a parquet column can represent a true absence.
type ParquetCell struct {
	Name  string  `parquet:"name"`
	Value float64 `parquet:"value"`
	Null  bool    `parquet:"null"`
}

// ParquetRows assembles one record's feature vector into a slice of
// ParquetCell rows and can serialize them as a standalone parquet file
// (one row group), the tabular-row output shape spec.md §4.3 calls for.
type ParquetRows struct {
	rows []ParquetCell
}

// NewParquetRows constructs an empty ParquetRows builder.
func NewParquetRows() *ParquetRows { return &ParquetRows{} }

func (p *ParquetRows) Init(totalDimension int) {
	p.rows = make([]ParquetCell, 0, totalDimension)
}

func (p *ParquetRows) Prepare(Block) {}

func (p *ParquetRows) Add(name string, value float64) {
	p.rows = append(p.rows, ParquetCell{Name: name, Value: value})
}

func (p *ParquetRows) Skip() {
	p.rows = append(p.rows, ParquetCell{Name: fmt.Sprintf("_skip_%d", len(p.rows)), Null: true})
}

func (p *ParquetRows) SkipN(n int) {
	for i := 0; i < n; i++ {
		p.Skip()
	}
}

func (p *ParquetRows) AddMany(names []string, values []float64) error {
	if len(names) != len(values) {
		return errDimensionMismatch(len(names), len(values))
	}
	for i, v := range values {
		p.Add(names[i], v)
	}
	return nil
}

// Result returns the assembled rows in emission order.
func (p *ParquetRows) Result() []ParquetCell { return p.rows }

func (p *ParquetRows) NewBuilder() Builder[[]ParquetCell] { return NewParquetRows() }

// WriteParquet serializes rows as a single-row-group parquet file.
func WriteParquet(rows []ParquetCell) ([]byte, error) {
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[ParquetCell](&buf)
	if _, err := w.Write(rows); err != nil {
		return nil, fmt.Errorf("builder: write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("builder: close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}
