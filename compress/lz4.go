package compress

import (
	"encoding/binary"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/format"
)

// lz4SizeHeader is the little-endian uint32 uncompressed size that prefixes
// every LZ4 payload, as numcodecs does for its LZ4 codec.
const lz4SizeHeader = 4

const lz4MaxSize = 1<<31 - 1

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor provides LZ4 block compression.
//
// Payload layout:
//   - 4 bytes: uncompressed size (little-endian uint32)
//   - N bytes: LZ4 block, or the raw input when it does not compress
//
// A body exactly as long as the uncompressed size is stored raw.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Type returns format.CompressionLZ4.
func (c LZ4Compressor) Type() format.CompressionType {
	return format.CompressionLZ4
}

// Compress compresses the input data using a pooled lz4.Compressor.
//
// Parameters:
//   - data: Input data to compress
//
// Returns:
//   - []byte: Size header followed by the block (nil if input is empty)
//   - error: Compression error if any
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) > lz4MaxSize {
		return nil, errors.Newf("lz4: payload of %d bytes exceeds block limit", len(data))
	}

	dst := make([]byte, lz4SizeHeader+lz4.CompressBlockBound(len(data)))
	binary.LittleEndian.PutUint32(dst, uint32(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[lz4SizeHeader:])
	if err != nil {
		return nil, err
	}

	// incompressible input
	if n == 0 || n >= len(data) {
		dst = append(dst[:lz4SizeHeader], data...)
		return dst, nil
	}

	return dst[:lz4SizeHeader+n], nil
}

// Decompress restores a payload produced by Compress.
//
// Returns errs.ErrShortRecord if the size header is missing, or the lz4
// error if the block is corrupted.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < lz4SizeHeader {
		return nil, errors.Wrap(errs.ErrShortRecord, "lz4 size header")
	}

	size := int(binary.LittleEndian.Uint32(data))
	body := data[lz4SizeHeader:]
	if len(body) == size {
		out := make([]byte, size)
		copy(out, body)

		return out, nil
	}

	out := make([]byte, size)
	n, err := lz4.UncompressBlock(body, out)
	if err != nil {
		return nil, errors.Wrap(err, "lz4 decompression failed")
	}
	if n != size {
		return nil, errors.Wrapf(errs.ErrShortRecord, "lz4: got %d bytes, want %d", n, size)
	}

	return out, nil
}
