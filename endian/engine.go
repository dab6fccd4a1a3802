// Package endian provides the byte-order engines used by the container encoders.
//
// EndianEngine combines binary.ByteOrder and binary.AppendByteOrder so that
// encoders can both patch fixed offsets and append values through a single
// handle. Containers record the engine they were written with as a one-byte
// tag so readers can pick the matching engine.
package endian

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/errs"
)

// EndianEngine is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Byte-order tags stored in container headers.
const (
	TagLittleEndian uint8 = 0x01
	TagBigEndian    uint8 = 0x02
)

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Tag returns the header tag for engine.
func Tag(engine EndianEngine) uint8 {
	if engine == EndianEngine(binary.BigEndian) {
		return TagBigEndian
	}

	return TagLittleEndian
}

// FromTag returns the engine recorded by tag.
func FromTag(tag uint8) (EndianEngine, error) {
	switch tag {
	case TagLittleEndian:
		return binary.LittleEndian, nil
	case TagBigEndian:
		return binary.BigEndian, nil
	default:
		return nil, errors.Wrapf(errs.ErrInvalidHeader, "unknown byte order tag 0x%02x", tag)
	}
}
