package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/format"
)

func sampleDataset(t *testing.T) *Dataset {
	t.Helper()

	ds := New()
	require.NoError(t, ds.AddCoord("time", MustVariable([]string{"time"}, Int64Array{0, 60, 120})))
	require.NoError(t, ds.AddCoord("station", MustVariable([]string{"station"}, StringArray{"north", "south"})))
	require.NoError(t, ds.AddDataVar("temp", MustVariable(
		[]string{"time", "station"},
		Float64Array{1, 2, 3, 4, 5, 6},
		3, 2,
	).WithAttrs(Attrs{"units": "degC"})))
	ds.Attrs = Attrs{"title": "surface"}

	return ds
}

func TestNewVariable(t *testing.T) {
	t.Run("infers 1-d shape", func(t *testing.T) {
		v, err := NewVariable([]string{"x"}, Float64Array{1, 2, 3})
		require.NoError(t, err)
		require.Equal(t, []int{3}, v.Shape)
	})

	t.Run("scalar", func(t *testing.T) {
		v, err := NewVariable(nil, Int64Array{7})
		require.NoError(t, err)
		require.Empty(t, v.Shape)
		require.Equal(t, 1, v.Size())
	})

	t.Run("rejects mismatched data", func(t *testing.T) {
		_, err := NewVariable([]string{"y", "x"}, Float64Array{1, 2, 3}, 2, 2)
		require.ErrorIs(t, err, errs.ErrInvalidVariable)
	})

	t.Run("rejects missing shape for n-d", func(t *testing.T) {
		_, err := NewVariable([]string{"y", "x"}, Float64Array{1, 2, 3, 4})
		require.ErrorIs(t, err, errs.ErrInvalidVariable)
	})

	t.Run("rejects repeated dims", func(t *testing.T) {
		_, err := NewVariable([]string{"x", "x"}, Float64Array{1, 2, 3, 4}, 2, 2)
		require.ErrorIs(t, err, errs.ErrInvalidVariable)
	})
}

func TestDatasetVariables(t *testing.T) {
	ds := sampleDataset(t)

	require.Equal(t, []string{"station", "time", "temp"}, ds.VariableNames())
	require.Equal(t, 3, ds.Len())

	_, isCoord, ok := ds.Variable("time")
	require.True(t, ok)
	require.True(t, isCoord)

	_, isCoord, ok = ds.Variable("temp")
	require.True(t, ok)
	require.False(t, isCoord)

	err := ds.AddDataVar("time", MustVariable([]string{"time"}, Int64Array{1, 2, 3}))
	require.ErrorIs(t, err, errs.ErrDuplicateName)
}

func TestDatasetDims(t *testing.T) {
	ds := sampleDataset(t)

	dims, err := ds.Dims()
	require.NoError(t, err)
	require.Equal(t, map[string]int{"time": 3, "station": 2}, dims)

	require.NoError(t, ds.AddDataVar("bad", MustVariable([]string{"time"}, Float64Array{1, 2})))
	_, err = ds.Dims()
	require.ErrorIs(t, err, errs.ErrDimensionClash)
	require.ErrorIs(t, ds.Validate(), errs.ErrDimensionClash)
}

func TestDatasetCloneAndEqual(t *testing.T) {
	ds := sampleDataset(t)
	clone := ds.Clone()
	require.True(t, ds.Equal(clone))

	clone.DataVars["temp"].Data.(Float64Array)[0] = 100
	require.False(t, ds.Equal(clone))
	require.Equal(t, 1.0, ds.DataVars["temp"].Data.(Float64Array)[0])

	clone = ds.Clone()
	clone.Attrs["title"] = "changed"
	require.False(t, ds.Equal(clone))
}

func TestFloat64ArrayEqualTreatsNaNAsEqual(t *testing.T) {
	a := Float64Array{1, math.NaN()}
	require.True(t, a.Equal(Float64Array{1, math.NaN()}))
	require.False(t, a.Equal(Float64Array{1, 2}))
	require.False(t, a.Equal(Int64Array{1, 2}))
}

func TestNewArray(t *testing.T) {
	require.Equal(t, Float64Array{0, 0}, NewArray(format.DTypeFloat64, 2))
	require.Equal(t, Int64Array{0}, NewArray(format.DTypeInt64, 1))
	require.Equal(t, StringArray{""}, NewArray(format.DTypeString, 1))
	require.Nil(t, NewArray(format.DType(0), 1))
}

func TestEncodingCheckVariables(t *testing.T) {
	ds := sampleDataset(t)

	enc := Encoding{"temp": {Compression: format.CompressionZstd}}
	require.NoError(t, enc.CheckVariables(ds))

	enc = Encoding{"temp": {}, "pressure": {}, "humidity": {}}
	err := enc.CheckVariables(ds)
	require.ErrorIs(t, err, errs.ErrUnknownVariable)
	require.True(t, errs.IsValidation(err))
	require.Contains(t, err.Error(), "[humidity pressure]")
}
