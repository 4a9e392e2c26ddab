package builder

import (
	"testing"

	"github.com/apache/arrow/go/v15/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrowRecordAddAndSkipBuildsRecord(t *testing.T) {
	a := NewArrowRecord()
	a.Init(3)
	a.Add("x", 1.0)
	a.Skip()
	a.Add("y", 2.0)

	rec := a.Result()
	defer rec.Release()

	require.EqualValues(t, 1, rec.NumRows())
	require.EqualValues(t, 3, rec.NumCols())
	assert.Equal(t, "x", rec.Schema().Field(0).Name)
	assert.Equal(t, "y", rec.Schema().Field(2).Name)
}

func TestArrowRecordSkipEmitsTrueNullNotZero(t *testing.T) {
	a := NewArrowRecord()
	a.Init(2)
	a.Add("x", 1.0)
	a.Skip()

	rec := a.Result()
	defer rec.Release()

	col := rec.Column(1).(*array.Float64)
	assert.True(t, col.IsNull(0))
	assert.False(t, rec.Column(0).(*array.Float64).IsNull(0))
}

func TestArrowRecordNewBuilderIsIndependent(t *testing.T) {
	a := NewArrowRecord()
	a.Init(1)
	a.Add("a", 1.0)

	fresh := a.NewBuilder()
	fresh.Init(1)
	fresh.Add("b", 9.0)

	rec := fresh.(*ArrowRecord).Result()
	defer rec.Release()
	assert.Equal(t, "b", rec.Schema().Field(0).Name)
}

func TestSerializeArrowRecordRoundTripsThroughIPC(t *testing.T) {
	a := NewArrowRecord()
	a.Init(2)
	a.Add("x", 1.5)
	a.Add("y", 2.5)
	rec := a.Result()
	defer rec.Release()

	data, release, err := SerializeArrowRecord(rec)
	require.NoError(t, err)
	defer release()
	assert.NotEmpty(t, data)
}
