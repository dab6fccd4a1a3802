package encoding

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/internal/pool"
)

// vlenHeaderSize is the uint32 item count that starts a vlen-utf8 payload.
const vlenHeaderSize = 4

// VLenStringEncoder encodes strings in the numcodecs vlen-utf8 layout:
//   - 4 bytes: item count (little-endian uint32)
//   - per item: 4 bytes length (little-endian uint32) followed by UTF-8 bytes
//
// The layout is always little-endian, independent of the container byte order.
type VLenStringEncoder struct {
	buf   *pool.ByteBuffer
	count int
}

var _ ColumnarEncoder[string] = (*VLenStringEncoder)(nil)

// NewVLenStringEncoder creates an encoder backed by a pooled chunk buffer.
func NewVLenStringEncoder() *VLenStringEncoder {
	buf := pool.GetChunkBuffer()
	buf.B = append(buf.B, 0, 0, 0, 0)

	return &VLenStringEncoder{buf: buf}
}

// Write encodes one string.
//
// Panics if Finish() has been called or the string exceeds 4GiB.
func (e *VLenStringEncoder) Write(s string) {
	if e.buf == nil {
		panic("encoder already finished - cannot write after Finish()")
	}
	if len(s) > math.MaxUint32 {
		panic("string exceeds vlen-utf8 item limit")
	}

	e.count++
	e.buf.Grow(4 + len(s))
	e.buf.B = binary.LittleEndian.AppendUint32(e.buf.B, uint32(len(s)))
	e.buf.B = append(e.buf.B, s...)
}

// WriteSlice encodes values in order.
func (e *VLenStringEncoder) WriteSlice(values []string) {
	for _, s := range values {
		e.Write(s)
	}
}

// Bytes returns the payload with the item count patched in.
// The caller must not modify the returned slice.
func (e *VLenStringEncoder) Bytes() []byte {
	if e.buf == nil {
		panic("encoder already finished - cannot access bytes after Finish()")
	}
	binary.LittleEndian.PutUint32(e.buf.B[:vlenHeaderSize], uint32(e.count))

	return e.buf.Bytes()
}

// Len returns the number of encoded strings.
func (e *VLenStringEncoder) Len() int {
	return e.count
}

// Size returns the payload size in bytes, header included.
func (e *VLenStringEncoder) Size() int {
	if e.buf == nil {
		panic("encoder already finished - cannot access size after Finish()")
	}

	return e.buf.Len()
}

// Finish returns the buffer to the pool.
func (e *VLenStringEncoder) Finish() {
	if e.buf != nil {
		pool.PutChunkBuffer(e.buf)
		e.buf = nil
	}
	e.count = 0
}

// DecodeVLenStrings decodes a vlen-utf8 payload into dst, which must have
// exactly as many elements as the payload declares.
func DecodeVLenStrings(dst []string, data []byte) error {
	if len(data) < vlenHeaderSize {
		return errors.Wrap(errs.ErrShortRecord, "vlen-utf8 header")
	}

	count := int(binary.LittleEndian.Uint32(data))
	if count != len(dst) {
		return errors.Wrapf(errs.ErrShortRecord, "vlen-utf8: %d items, want %d", count, len(dst))
	}

	off := vlenHeaderSize
	for i := range dst {
		if off+4 > len(data) {
			return errors.Wrapf(errs.ErrShortRecord, "vlen-utf8 item %d length", i)
		}
		n := int(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		if n > len(data)-off {
			return errors.Wrapf(errs.ErrShortRecord, "vlen-utf8 item %d body", i)
		}
		dst[i] = string(data[off : off+n])
		off += n
	}

	return nil
}
