package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParquetRowsAddAndSkip(t *testing.T) {
	p := NewParquetRows()
	p.Init(3)
	p.Add("x", 1.0)
	p.Skip()
	p.Add("y", 2.0)

	rows := p.Result()
	require.Len(t, rows, 3)
	assert.Equal(t, ParquetCell{Name: "x", Value: 1.0}, rows[0])
	assert.True(t, rows[1].Null)
	assert.Equal(t, ParquetCell{Name: "y", Value: 2.0}, rows[2])
}

func TestParquetRowsAddManyMismatchFailsFast(t *testing.T) {
	p := NewParquetRows()
	p.Init(2)
	err := p.AddMany([]string{"a"}, []float64{1.0, 2.0})
	assert.Error(t, err)
}

func TestWriteParquetProducesNonEmptyFile(t *testing.T) {
	p := NewParquetRows()
	p.Init(2)
	p.Add("x", 1.0)
	p.Add("y", 2.0)

	data, err := WriteParquet(p.Result())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestParquetRowsNewBuilderIsIndependent(t *testing.T) {
	p := NewParquetRows()
	p.Init(1)
	p.Add("a", 1.0)

	fresh := p.NewBuilder()
	fresh.Init(1)
	fresh.Add("b", 2.0)

	assert.Len(t, fresh.(*ParquetRows).Result(), 1)
	assert.Len(t, p.Result(), 1)
}
