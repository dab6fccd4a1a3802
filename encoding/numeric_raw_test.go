package encoding

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/datatree/endian"
	"github.com/arloliu/datatree/errs"
)

func TestRawFloat64RoundTrip(t *testing.T) {
	values := []float64{0, -1.5, math.Pi, math.Inf(1), math.MaxFloat64}

	for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
		enc := NewRawEncoder[float64](engine)
		enc.Write(values[0])
		enc.WriteSlice(values[1:])

		require.Equal(t, len(values), enc.Len())
		require.Equal(t, len(values)*8, enc.Size())

		data := slices.Clone(enc.Bytes())
		enc.Finish()

		dec := NewRawDecoder[float64](engine)
		require.Equal(t, values, slices.Collect(dec.All(data, len(values))))

		got := make([]float64, len(values))
		require.NoError(t, dec.DecodeInto(got, data))
		require.Equal(t, values, got)

		v, ok := dec.At(data, 2, len(values))
		require.True(t, ok)
		require.Equal(t, math.Pi, v)
	}
}

func TestRawInt64RoundTrip(t *testing.T) {
	values := []int64{math.MinInt64, -1, 0, 42, math.MaxInt64}

	enc := NewRawEncoder[int64](endian.GetLittleEndianEngine())
	defer enc.Finish()
	enc.WriteSlice(values)

	got := make([]int64, len(values))
	require.NoError(t, NewRawDecoder[int64](endian.GetLittleEndianEngine()).DecodeInto(got, enc.Bytes()))
	require.Equal(t, values, got)
}

func TestRawLittleEndianLayout(t *testing.T) {
	enc := NewRawEncoder[int64](endian.GetLittleEndianEngine())
	defer enc.Finish()
	enc.Write(1)

	require.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, enc.Bytes())
}

func TestRawDecoderBounds(t *testing.T) {
	dec := NewRawDecoder[float64](endian.GetLittleEndianEngine())
	data := make([]byte, 16)

	_, ok := dec.At(data, 2, 2)
	require.False(t, ok)
	_, ok = dec.At(data, -1, 2)
	require.False(t, ok)

	require.Empty(t, slices.Collect(dec.All(data, 3)))
	require.ErrorIs(t, dec.DecodeInto(make([]float64, 3), data), errs.ErrShortRecord)
}

func TestRawEncoderPanicsAfterFinish(t *testing.T) {
	enc := NewRawEncoder[float64](endian.GetLittleEndianEngine())
	enc.Finish()

	require.Panics(t, func() { enc.Write(1) })
	require.Panics(t, func() { _ = enc.Bytes() })
}
