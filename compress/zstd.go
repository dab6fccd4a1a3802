package compress

import "github.com/arloliu/datatree/format"

// ZstdCompressor provides Zstandard compression.
//
// It gives the best ratio of the built-in codecs and suits archival stores
// where chunks are written once and read rarely.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// Type returns format.CompressionZstd.
func (c ZstdCompressor) Type() format.CompressionType {
	return format.CompressionZstd
}
