package encoding

import "iter"

// ColumnarEncoder appends a column of values to an internal buffer.
type ColumnarEncoder[T any] interface {
	// Bytes returns the encoded bytes.
	// The returned slice is valid until the next Write, WriteSlice or Finish.
	Bytes() []byte

	// Len returns the number of encoded values.
	Len() int

	// Size returns the number of encoded bytes.
	Size() int

	// Finish returns the buffer to its pool. The encoder is unusable afterwards
	// and further calls panic.
	Finish()

	// Write encodes a single value.
	Write(value T)

	// WriteSlice encodes values in order.
	WriteSlice(values []T)
}

// ColumnarDecoder reads values produced by the matching ColumnarEncoder.
type ColumnarDecoder[T any] interface {
	// All yields count values decoded from data. Malformed or short data
	// yields fewer values.
	All(data []byte, count int) iter.Seq[T]

	// At returns the value at index, or false when index is out of range.
	At(data []byte, index int, count int) (T, bool)
}
