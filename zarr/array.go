package zarr

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/compress"
	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/encoding"
	"github.com/arloliu/datatree/endian"
	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/internal/pool"
)

var chunkOrder = endian.GetLittleEndianEngine()

// writeChunks stores every chunk of data under prefix.
func writeChunks(store Store, prefix string, data dataset.Array, g grid, codec compress.Codec, sep string) error {
	for idx := range g.indices() {
		raw, err := encodeChunk(data, g, idx)
		if err != nil {
			return err
		}
		payload, err := codec.Compress(raw)
		if err != nil {
			return errors.Wrapf(err, "compress chunk %v", idx)
		}
		if err := store.Set(prefix+ChunkKey(idx, sep), payload); err != nil {
			return err
		}
	}

	return nil
}

// encodeChunk lays out one padded chunk; the result does not alias pooled memory.
func encodeChunk(data dataset.Array, g grid, idx []int) ([]byte, error) {
	switch a := data.(type) {
	case dataset.Float64Array:
		buf, release := pool.GetFloat64Slice(g.chunkLen())
		defer release()
		for i := range buf {
			buf[i] = nan
		}
		gather(g, idx, []float64(a), buf)

		enc := encoding.NewRawEncoder[float64](chunkOrder)
		defer enc.Finish()
		enc.WriteSlice(buf)

		return slices.Clone(enc.Bytes()), nil
	case dataset.Int64Array:
		buf, release := pool.GetInt64Slice(g.chunkLen())
		defer release()
		gather(g, idx, []int64(a), buf)

		enc := encoding.NewRawEncoder[int64](chunkOrder)
		defer enc.Finish()
		enc.WriteSlice(buf)

		return slices.Clone(enc.Bytes()), nil
	case dataset.StringArray:
		buf, release := pool.GetStringSlice(g.chunkLen())
		defer release()
		gather(g, idx, []string(a), buf)

		enc := encoding.NewVLenStringEncoder()
		defer enc.Finish()
		enc.WriteSlice(buf)

		return slices.Clone(enc.Bytes()), nil
	default:
		return nil, errors.Wrapf(errs.ErrInvalidVariable, "unsupported array type %T", data)
	}
}

// readArray loads all chunks of an array. Missing chunks read as the fill value.
func readArray(store Store, prefix string, meta arrayMeta) (dataset.Array, error) {
	dtype, err := parseDType(meta.DType)
	if err != nil {
		return nil, err
	}

	var compressorID string
	if meta.Compressor != nil {
		compressorID = meta.Compressor.ID
	}
	codec, err := compress.GetCodecByID(compressorID)
	if err != nil {
		return nil, errors.Wrapf(errs.ErrInvalidMetadata, "compressor %q", compressorID)
	}

	g := grid{shape: meta.Shape, chunks: meta.Chunks}
	out := dataset.NewArray(dtype, dataset.ShapeSize(meta.Shape))
	if f, ok := out.(dataset.Float64Array); ok {
		for i := range f {
			f[i] = nan
		}
	}

	for idx := range g.indices() {
		key := prefix + ChunkKey(idx, meta.separator())
		payload, err := store.Get(key)
		if errors.Is(err, errs.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		raw, err := codec.Decompress(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "chunk %q", key)
		}
		if err := decodeChunk(out, g, idx, raw); err != nil {
			return nil, errors.Wrapf(err, "chunk %q", key)
		}
	}

	return out, nil
}

func decodeChunk(out dataset.Array, g grid, idx []int, raw []byte) error {
	switch a := out.(type) {
	case dataset.Float64Array:
		buf, release := pool.GetFloat64Slice(g.chunkLen())
		defer release()
		if err := encoding.NewRawDecoder[float64](chunkOrder).DecodeInto(buf, raw); err != nil {
			return err
		}
		scatter(g, idx, buf, []float64(a))
	case dataset.Int64Array:
		buf, release := pool.GetInt64Slice(g.chunkLen())
		defer release()
		if err := encoding.NewRawDecoder[int64](chunkOrder).DecodeInto(buf, raw); err != nil {
			return err
		}
		scatter(g, idx, buf, []int64(a))
	case dataset.StringArray:
		buf, release := pool.GetStringSlice(g.chunkLen())
		defer release()
		if err := encoding.DecodeVLenStrings(buf, raw); err != nil {
			return err
		}
		scatter(g, idx, buf, []string(a))
	default:
		return errors.Wrapf(errs.ErrInvalidVariable, "unsupported array type %T", out)
	}

	return nil
}

// sameArray reports whether meta describes an array of v's shape and dtype.
func sameArray(meta arrayMeta, v *dataset.Variable) bool {
	return meta.DType == dtypeString(v.Data.DType()) && slices.Equal(meta.Shape, v.Shape)
}
