// Package compress provides the codecs applied to variable payloads in netCDF
// group records and to chunks in Zarr stores.
//
// Values are first laid out by the encoding package (raw little-endian numbers
// or vlen-utf8 strings) and then optionally compressed here:
//   - None: stored as-is
//   - Zstd: best ratio, moderate speed (Zarr compressor id "zstd")
//   - S2: balanced ratio and speed (Zarr compressor id "s2")
//   - LZ4: fastest decompression, block format (Zarr compressor id "lz4")
//
// All codecs are stateless values and safe for concurrent use. Zstd uses the
// pure Go klauspost/compress implementation by default; building with the
// gozstd tag switches it to the cgo valyala/gozstd binding.
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	chunk, err := codec.Compress(raw)
package compress
