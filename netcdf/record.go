package netcdf

import (
	"maps"
	"math"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/compress"
	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/encoding"
	"github.com/arloliu/datatree/endian"
	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/format"
	"github.com/arloliu/datatree/internal/hash"
)

const (
	roleCoord   uint8 = 1
	roleDataVar uint8 = 2

	recordLenSize      = 4
	recordChecksumSize = 8
)

// groupRecord is one decoded record body.
type groupRecord struct {
	path      string
	ds        *dataset.Dataset
	unlimited []string
}

// recordEncoder turns one dataset into a framed group record.
type recordEncoder struct {
	order              endian.EndianEngine
	encoding           dataset.Encoding
	defaultCompression format.CompressionType
}

func (e recordEncoder) encode(path string, ds *dataset.Dataset, unlimited []string) ([]byte, error) {
	dims, err := ds.Dims()
	if err != nil {
		return nil, err
	}

	w := encoding.NewRecordWriter(e.order)
	defer w.Finish()

	w.Text(path)
	writeAttrs(w, ds.Attrs)

	w.Uvarint(uint64(len(dims)))
	for _, name := range slices.Sorted(maps.Keys(dims)) {
		w.Text(name)
		w.Uvarint(uint64(dims[name]))
		if slices.Contains(unlimited, name) {
			w.Uint8(1)
		} else {
			w.Uint8(0)
		}
	}

	names := ds.VariableNames()
	w.Uvarint(uint64(len(names)))
	for _, name := range names {
		v, isCoord, _ := ds.Variable(name)
		if err := e.writeVariable(w, name, v, isCoord); err != nil {
			return nil, errors.Wrapf(err, "variable %q", name)
		}
	}

	body := w.Bytes()
	framed := make([]byte, 0, recordLenSize+len(body)+recordChecksumSize)
	framed = e.order.AppendUint32(framed, uint32(len(body)))
	framed = append(framed, body...)
	framed = e.order.AppendUint64(framed, hash.Checksum(body))

	return framed, nil
}

func (e recordEncoder) writeVariable(w *encoding.RecordWriter, name string, v *dataset.Variable, isCoord bool) error {
	role := roleDataVar
	if isCoord {
		role = roleCoord
	}

	compression := e.defaultCompression
	if ve, ok := e.encoding[name]; ok && ve.Compression != 0 {
		compression = ve.Compression
	}
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return err
	}

	raw, err := encodeArray(e.order, v.Data)
	if err != nil {
		return err
	}
	payload, err := codec.Compress(raw)
	if err != nil {
		return errors.Wrapf(err, "compress with %s", compression)
	}

	w.Text(name)
	w.Uint8(role)
	w.Uint8(uint8(v.Data.DType()))
	w.TextList(v.Dims)
	w.Uvarint(uint64(len(v.Shape)))
	for _, s := range v.Shape {
		w.Uvarint(uint64(s))
	}
	writeAttrs(w, v.Attrs)
	w.Uint8(uint8(compression))
	w.Uvarint(uint64(len(raw)))
	w.Blob(payload)

	return nil
}

func writeAttrs(w *encoding.RecordWriter, attrs dataset.Attrs) {
	w.Uvarint(uint64(len(attrs)))
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		w.Text(k)
		w.Text(attrs[k])
	}
}

// encodeArray lays out array values; the result does not alias pooled memory.
func encodeArray(order endian.EndianEngine, data dataset.Array) ([]byte, error) {
	switch a := data.(type) {
	case dataset.Float64Array:
		enc := encoding.NewRawEncoder[float64](order)
		defer enc.Finish()
		enc.WriteSlice(a)

		return slices.Clone(enc.Bytes()), nil
	case dataset.Int64Array:
		enc := encoding.NewRawEncoder[int64](order)
		defer enc.Finish()
		enc.WriteSlice(a)

		return slices.Clone(enc.Bytes()), nil
	case dataset.StringArray:
		enc := encoding.NewVLenStringEncoder()
		defer enc.Finish()
		enc.WriteSlice(a)

		return slices.Clone(enc.Bytes()), nil
	default:
		return nil, errors.Wrapf(errs.ErrInvalidVariable, "unsupported array type %T", data)
	}
}

func decodeArray(order endian.EndianEngine, dtype format.DType, n int, raw []byte) (dataset.Array, error) {
	switch dtype {
	case format.DTypeFloat64:
		out := make(dataset.Float64Array, n)
		return out, encoding.NewRawDecoder[float64](order).DecodeInto(out, raw)
	case format.DTypeInt64:
		out := make(dataset.Int64Array, n)
		return out, encoding.NewRawDecoder[int64](order).DecodeInto(out, raw)
	case format.DTypeString:
		out := make(dataset.StringArray, n)
		return out, encoding.DecodeVLenStrings(out, raw)
	default:
		return nil, errors.Wrapf(errs.ErrInvalidVariable, "unknown dtype %d", dtype)
	}
}

// decodeRecords splits the bytes after the header into group records.
func decodeRecords(data []byte, order endian.EndianEngine) ([]groupRecord, error) {
	var records []groupRecord
	for off := 0; off < len(data); {
		if len(data)-off < recordLenSize {
			return nil, errors.Wrapf(errs.ErrShortRecord, "record length at offset %d", off)
		}
		n := int(order.Uint32(data[off:]))
		off += recordLenSize
		if n < 0 || len(data)-off < n+recordChecksumSize {
			return nil, errors.Wrapf(errs.ErrShortRecord, "record body at offset %d", off)
		}

		body := data[off : off+n]
		off += n
		if !hash.Verify(body, order.Uint64(data[off:])) {
			return nil, errors.Wrapf(errs.ErrChecksumMismatch, "record %d", len(records))
		}
		off += recordChecksumSize

		rec, err := decodeRecord(body, order)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", len(records))
		}
		records = append(records, rec)
	}

	return records, nil
}

func decodeRecord(body []byte, order endian.EndianEngine) (groupRecord, error) {
	r := encoding.NewRecordReader(body, order)
	rec := groupRecord{path: r.Text(), ds: dataset.New()}
	rec.ds.Attrs = readAttrs(r)

	dimCount := r.Uvarint()
	for range dimCount {
		name := r.Text()
		_ = r.Uvarint()
		if r.Uint8() == 1 {
			rec.unlimited = append(rec.unlimited, name)
		}
		if r.Err() != nil {
			return groupRecord{}, r.Err()
		}
	}

	varCount := r.Uvarint()
	for range varCount {
		if err := readVariable(r, order, rec.ds); err != nil {
			return groupRecord{}, err
		}
	}

	if r.Err() != nil {
		return groupRecord{}, r.Err()
	}

	return rec, nil
}

func readVariable(r *encoding.RecordReader, order endian.EndianEngine, ds *dataset.Dataset) error {
	name := r.Text()
	role := r.Uint8()
	dtype := format.DType(r.Uint8())
	dims := r.TextList()
	shape := make([]int, r.Uvarint())
	if r.Err() != nil {
		return r.Err()
	}
	if len(shape) > r.Remaining() {
		return errors.Wrapf(errs.ErrShortRecord, "variable %q shape", name)
	}
	n := 1
	for i := range shape {
		s := r.Uvarint()
		if s > math.MaxInt || (s != 0 && n > math.MaxInt/int(s)) {
			return errors.Wrapf(errs.ErrShortRecord, "variable %q: shape %d overflows", name, s)
		}
		shape[i] = int(s)
		n *= shape[i]
	}
	attrs := readAttrs(r)
	compression := format.CompressionType(r.Uint8())
	rawLen := r.Uvarint()
	payload := r.Blob()
	if r.Err() != nil {
		return r.Err()
	}

	codec, err := compress.GetCodec(compression)
	if err != nil {
		return errors.Wrapf(err, "variable %q", name)
	}
	raw, err := codec.Decompress(payload)
	if err != nil {
		return errors.Wrapf(err, "variable %q", name)
	}
	if uint64(len(raw)) != rawLen {
		return errors.Wrapf(errs.ErrShortRecord, "variable %q: %d bytes, want %d", name, len(raw), rawLen)
	}

	if size := dtype.ItemSize(); (size > 0 && (n > len(raw)/size || n*size != len(raw))) || (size == 0 && n > len(raw)/4) {
		return errors.Wrapf(errs.ErrShortRecord, "variable %q: %d bytes for shape %v", name, len(raw), shape)
	}

	data, err := decodeArray(order, dtype, n, raw)
	if err != nil {
		return errors.Wrapf(err, "variable %q", name)
	}

	v := &dataset.Variable{Dims: dims, Shape: shape, Data: data, Attrs: attrs}
	if role == roleCoord {
		return ds.AddCoord(name, v)
	}

	return ds.AddDataVar(name, v)
}

func readAttrs(r *encoding.RecordReader) dataset.Attrs {
	n := r.Uvarint()
	if n == 0 || r.Err() != nil {
		return nil
	}

	attrs := make(dataset.Attrs)
	for range n {
		k := r.Text()
		attrs[k] = r.Text()
		if r.Err() != nil {
			return nil
		}
	}

	return attrs
}
