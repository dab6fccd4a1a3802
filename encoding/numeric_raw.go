package encoding

import (
	"iter"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/endian"
	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/internal/pool"
)

// Number is the set of fixed-width element types stored as raw columns.
type Number interface {
	float64 | int64
}

const rawItemSize = 8

func toBits[T Number](v T) uint64 {
	switch x := any(v).(type) {
	case float64:
		return math.Float64bits(x)
	case int64:
		return uint64(x)
	}

	return 0
}

func fromBits[T Number](bits uint64) T {
	var zero T
	switch any(zero).(type) {
	case float64:
		return any(math.Float64frombits(bits)).(T)
	case int64:
		return any(int64(bits)).(T)
	}

	return zero
}

// RawEncoder encodes float64 or int64 values as 8-byte words in the engine's
// byte order.
type RawEncoder[T Number] struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	count  int
}

var (
	_ ColumnarEncoder[float64] = (*RawEncoder[float64])(nil)
	_ ColumnarEncoder[int64]   = (*RawEncoder[int64])(nil)
)

// NewRawEncoder creates a raw column encoder backed by a pooled chunk buffer.
//
// Parameters:
//   - engine: Endian engine for byte order (Zarr chunks are always little-endian)
//
// Returns:
//   - *RawEncoder[T]: A new encoder ready for use
func NewRawEncoder[T Number](engine endian.EndianEngine) *RawEncoder[T] {
	return &RawEncoder[T]{
		engine: engine,
		buf:    pool.GetChunkBuffer(),
	}
}

// Write encodes a single value.
//
// Panics if Finish() has been called.
func (e *RawEncoder[T]) Write(val T) {
	if e.buf == nil {
		panic("encoder already finished - cannot write after Finish()")
	}

	e.count++
	e.buf.Grow(rawItemSize)
	e.buf.B = e.engine.AppendUint64(e.buf.B, toBits(val))
}

// WriteSlice encodes values with a single buffer growth.
//
// Panics if Finish() has been called.
func (e *RawEncoder[T]) WriteSlice(values []T) {
	if e.buf == nil {
		panic("encoder already finished - cannot write after Finish()")
	}
	if len(values) == 0 {
		return
	}

	e.count += len(values)
	e.buf.Grow(len(values) * rawItemSize)
	for _, v := range values {
		e.buf.B = e.engine.AppendUint64(e.buf.B, toBits(v))
	}
}

// Bytes returns the encoded bytes. The caller must not modify them.
func (e *RawEncoder[T]) Bytes() []byte {
	if e.buf == nil {
		panic("encoder already finished - cannot access bytes after Finish()")
	}

	return e.buf.Bytes()
}

// Len returns the number of encoded values.
func (e *RawEncoder[T]) Len() int {
	return e.count
}

// Size returns the number of encoded bytes.
func (e *RawEncoder[T]) Size() int {
	if e.buf == nil {
		panic("encoder already finished - cannot access size after Finish()")
	}

	return e.buf.Len()
}

// Finish returns the buffer to the pool.
func (e *RawEncoder[T]) Finish() {
	if e.buf != nil {
		pool.PutChunkBuffer(e.buf)
		e.buf = nil
	}
	e.count = 0
}

// RawDecoder decodes columns produced by RawEncoder.
type RawDecoder[T Number] struct {
	engine endian.EndianEngine
}

var (
	_ ColumnarDecoder[float64] = RawDecoder[float64]{}
	_ ColumnarDecoder[int64]   = RawDecoder[int64]{}
)

// NewRawDecoder creates a decoder for the given byte order.
func NewRawDecoder[T Number](engine endian.EndianEngine) RawDecoder[T] {
	return RawDecoder[T]{engine: engine}
}

// All yields count values, or nothing if data holds fewer than count values.
func (d RawDecoder[T]) All(data []byte, count int) iter.Seq[T] {
	return func(yield func(T) bool) {
		if count == 0 || len(data) < count*rawItemSize {
			return
		}

		for i := range count {
			start := i * rawItemSize
			if !yield(fromBits[T](d.engine.Uint64(data[start : start+rawItemSize]))) {
				return
			}
		}
	}
}

// At returns the value at index.
func (d RawDecoder[T]) At(data []byte, index int, count int) (T, bool) {
	var zero T
	if index < 0 || index >= count {
		return zero, false
	}

	start := index * rawItemSize
	if start+rawItemSize > len(data) {
		return zero, false
	}

	return fromBits[T](d.engine.Uint64(data[start : start+rawItemSize])), true
}

// DecodeInto fills dst from data, which must hold exactly len(dst) values.
func (d RawDecoder[T]) DecodeInto(dst []T, data []byte) error {
	if len(data) != len(dst)*rawItemSize {
		return errors.Wrapf(errs.ErrShortRecord, "raw column: %d bytes for %d values", len(data), len(dst))
	}

	for i := range dst {
		start := i * rawItemSize
		dst[i] = fromBits[T](d.engine.Uint64(data[start : start+rawItemSize]))
	}

	return nil
}
