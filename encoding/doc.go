// Package encoding lays out array values and container records as bytes.
//
// Three encodings are provided:
//
//   - RawEncoder / RawDecoder: fixed-width float64 or int64 columns in the
//     engine's byte order. Zarr "<f8" and "<i8" chunks use this layout with
//     the little-endian engine.
//   - VLenStringEncoder / DecodeVLenStrings: the numcodecs vlen-utf8 layout
//     (uint32 item count, then uint32 length + bytes per item), used for
//     string variables in both containers.
//   - RecordWriter / RecordReader: a length-prefixed field stream for netCDF
//     group records (uvarints, fixed-width integers, strings, byte blobs).
//
// Encoders draw their buffers from internal/pool and must be finished with
// Finish to return them:
//
//	enc := encoding.NewRawEncoder[float64](endian.GetLittleEndianEngine())
//	defer enc.Finish()
//	enc.WriteSlice(values)
//	payload := bytes.Clone(enc.Bytes())
package encoding
