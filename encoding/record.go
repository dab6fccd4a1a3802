package encoding

import (
	"encoding/binary"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/endian"
	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/internal/pool"
)

// RecordWriter appends typed fields to a pooled record buffer.
//
// Strings, string lists and byte blobs are prefixed with their uvarint length.
// Fixed-width integers use the writer's byte order.
type RecordWriter struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
}

// NewRecordWriter creates a writer backed by a pooled record buffer.
func NewRecordWriter(engine endian.EndianEngine) *RecordWriter {
	return &RecordWriter{
		buf:    pool.GetRecordBuffer(),
		engine: engine,
	}
}

func (w *RecordWriter) Uint8(v uint8) {
	w.buf.B = append(w.buf.B, v)
}

func (w *RecordWriter) Uint32(v uint32) {
	w.buf.B = w.engine.AppendUint32(w.buf.B, v)
}

func (w *RecordWriter) Uint64(v uint64) {
	w.buf.B = w.engine.AppendUint64(w.buf.B, v)
}

func (w *RecordWriter) Uvarint(v uint64) {
	w.buf.B = binary.AppendUvarint(w.buf.B, v)
}

func (w *RecordWriter) Text(s string) {
	w.Uvarint(uint64(len(s)))
	w.buf.Grow(len(s))
	w.buf.B = append(w.buf.B, s...)
}

func (w *RecordWriter) TextList(ss []string) {
	w.Uvarint(uint64(len(ss)))
	for _, s := range ss {
		w.Text(s)
	}
}

// Blob writes a length-prefixed byte slice.
func (w *RecordWriter) Blob(b []byte) {
	w.Uvarint(uint64(len(b)))
	_, _ = w.buf.Write(b)
}

// Bytes returns the record written so far.
// The returned slice is valid until the next write or Finish.
func (w *RecordWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// Finish returns the buffer to the pool.
func (w *RecordWriter) Finish() {
	if w.buf != nil {
		pool.PutRecordBuffer(w.buf)
		w.buf = nil
	}
}

// RecordReader reads fields written by RecordWriter.
//
// Errors are sticky: after the first short read every accessor returns a zero
// value and Err reports the failure, so callers check Err once per record.
type RecordReader struct {
	data   []byte
	off    int
	engine endian.EndianEngine
	err    error
}

// NewRecordReader creates a reader over data.
func NewRecordReader(data []byte, engine endian.EndianEngine) *RecordReader {
	return &RecordReader{data: data, engine: engine}
}

// Err returns the first decoding error.
func (r *RecordReader) Err() error {
	return r.err
}

// Remaining returns the number of unread bytes.
func (r *RecordReader) Remaining() int {
	return len(r.data) - r.off
}

func (r *RecordReader) take(n int, what string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > len(r.data)-r.off {
		r.err = errors.Wrapf(errs.ErrShortRecord, "%s at offset %d", what, r.off)
		return nil
	}

	b := r.data[r.off : r.off+n]
	r.off += n

	return b
}

func (r *RecordReader) Uint8() uint8 {
	b := r.take(1, "uint8")
	if b == nil {
		return 0
	}

	return b[0]
}

func (r *RecordReader) Uint32() uint32 {
	b := r.take(4, "uint32")
	if b == nil {
		return 0
	}

	return r.engine.Uint32(b)
}

func (r *RecordReader) Uint64() uint64 {
	b := r.take(8, "uint64")
	if b == nil {
		return 0
	}

	return r.engine.Uint64(b)
}

func (r *RecordReader) Uvarint() uint64 {
	if r.err != nil {
		return 0
	}

	v, n := binary.Uvarint(r.data[r.off:])
	if n <= 0 {
		r.err = errors.Wrapf(errs.ErrShortRecord, "uvarint at offset %d", r.off)
		return 0
	}
	r.off += n

	return v
}

// length reads a uvarint length and bounds it by the remaining bytes.
func (r *RecordReader) length(what string) int {
	n := r.Uvarint()
	if r.err != nil {
		return 0
	}
	if n > uint64(r.Remaining()) {
		r.err = errors.Wrapf(errs.ErrShortRecord, "%s length %d at offset %d", what, n, r.off)
		return 0
	}

	return int(n)
}

func (r *RecordReader) Text() string {
	n := r.length("string")

	return string(r.take(n, "string"))
}

func (r *RecordReader) TextList() []string {
	n := r.length("string list")
	if r.err != nil || n == 0 {
		return nil
	}

	out := make([]string, 0, n)
	for range n {
		out = append(out, r.Text())
	}

	return out
}

// Blob returns a copy of a length-prefixed byte slice.
func (r *RecordReader) Blob() []byte {
	n := r.length("blob")

	return slices.Clone(r.take(n, "blob"))
}
