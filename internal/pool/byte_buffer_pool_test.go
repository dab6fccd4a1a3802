package pool

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer_WriteAndClone(t *testing.T) {
	bb := NewByteBuffer(4)

	n, err := bb.Write([]byte("header"))
	require.NoError(t, err)
	require.Equal(t, 6, n)

	_, _ = bb.Write([]byte("-record"))
	require.Equal(t, "header-record", string(bb.Bytes()))

	clone := bb.Clone()
	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.Equal(t, "header-record", string(clone))
}

func TestByteBuffer_Truncate(t *testing.T) {
	bb := NewByteBuffer(16)
	_, _ = bb.Write([]byte("0123456789"))

	bb.Truncate(4)
	require.Equal(t, "0123", string(bb.Bytes()))

	require.Panics(t, func() { bb.Truncate(5) })
	require.Panics(t, func() { bb.Truncate(-1) })
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("sufficient capacity is a no-op", func(t *testing.T) {
		bb := NewByteBuffer(64)
		bb.Grow(32)
		require.Equal(t, 64, cap(bb.B))
	})

	t.Run("small buffers grow by the default size", func(t *testing.T) {
		bb := NewByteBuffer(8)
		_, _ = bb.Write([]byte("abcdefgh"))
		bb.Grow(1)
		require.GreaterOrEqual(t, cap(bb.B), 8+RecordBufferDefaultSize)
		require.Equal(t, "abcdefgh", string(bb.Bytes()))
	})

	t.Run("large requests are honored", func(t *testing.T) {
		bb := NewByteBuffer(0)
		bb.Grow(RecordBufferDefaultSize * 3)
		require.GreaterOrEqual(t, cap(bb.B), RecordBufferDefaultSize*3)
	})
}

func TestByteBuffer_ReadAt(t *testing.T) {
	bb := NewByteBuffer(0)
	_, _ = bb.Write([]byte("DTNC0123"))

	p := make([]byte, 4)
	n, err := bb.ReadAt(p, 0)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "DTNC", string(p))

	n, err = bb.ReadAt(p, 6)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 2, n)

	_, err = bb.ReadAt(p, 100)
	require.ErrorIs(t, err, io.EOF)
}

type errorWriter struct{}

func (errorWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(0)
	_, _ = bb.Write([]byte("payload"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(7), n)
	require.Equal(t, "payload", out.String())

	_, err = bb.WriteTo(errorWriter{})
	require.EqualError(t, err, "disk full")
}

func TestByteBufferPool(t *testing.T) {
	t.Run("put resets buffers", func(t *testing.T) {
		bb := GetRecordBuffer()
		_, _ = bb.Write([]byte("stale"))
		PutRecordBuffer(bb)

		again := GetRecordBuffer()
		require.Equal(t, 0, again.Len())
		PutRecordBuffer(again)
	})

	t.Run("oversized buffers are dropped", func(t *testing.T) {
		p := NewByteBufferPool(8, 16)
		bb := p.Get()
		bb.Grow(1024)
		p.Put(bb)

		next := p.Get()
		require.LessOrEqual(t, cap(next.B), 16)
	})

	t.Run("nil put is ignored", func(t *testing.T) {
		require.NotPanics(t, func() { PutChunkBuffer(nil) })
	})
}
