package compress

import (
	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/format"
)

// Compressor compresses one encoded payload (a chunk or a whole variable).
type Compressor interface {
	// Compress returns the compressed form of data.
	//
	// The returned slice is owned by the caller. The input is not modified,
	// except that the no-op codec returns the input slice itself.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same algorithm.
type Decompressor interface {
	// Decompress returns the original payload.
	//
	// It returns an error if data is corrupted or was produced by a different
	// algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions of one compression algorithm.
type Codec interface {
	Compressor
	Decompressor
	// Type reports the algorithm implemented by the codec.
	Type() format.CompressionType
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, errs.Validation(errors.Wrapf(errs.ErrUnknownOption, "compression type %s", compressionType))
}

// GetCodecByID retrieves the built-in Codec for a Zarr compressor id.
// An empty id selects the no-op codec.
func GetCodecByID(id string) (Codec, error) {
	compressionType, err := format.ParseCompressionID(id)
	if err != nil {
		return nil, errs.Validation(err)
	}

	return GetCodec(compressionType)
}
