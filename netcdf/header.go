package netcdf

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/arloliu/datatree/endian"
	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/format"
)

const (
	HeaderSize    = 32
	LayoutVersion = 1
)

var magic = []byte("DTNC")

// Header is the fixed container header.
type Header struct {
	ID     uuid.UUID
	Format format.FileFormat
	Engine format.Engine
	Order  endian.EndianEngine
}

func newHeader(ff format.FileFormat, engine format.Engine, order endian.EndianEngine) Header {
	return Header{
		ID:     uuid.New(),
		Format: ff,
		Engine: engine,
		Order:  order,
	}
}

// Bytes serializes the header.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	copy(b, magic)
	b[4] = LayoutVersion
	b[5] = endian.Tag(h.Order)
	b[6] = uint8(h.Format)
	b[7] = uint8(h.Engine)
	copy(b[8:24], h.ID[:])

	return b
}

// ParseHeader parses the first HeaderSize bytes of a container.
//
// Returns errs.ErrInvalidMagic for data that is not a container and
// errs.ErrInvalidHeader for an unsupported version or byte order.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errors.Wrapf(errs.ErrInvalidHeader, "%d bytes, want %d", len(data), HeaderSize)
	}
	if !bytes.Equal(data[:4], magic) {
		return Header{}, errs.ErrInvalidMagic
	}
	if data[4] != LayoutVersion {
		return Header{}, errors.Wrapf(errs.ErrInvalidHeader, "layout version %d", data[4])
	}

	order, err := endian.FromTag(data[5])
	if err != nil {
		return Header{}, err
	}

	h := Header{
		Format: format.FileFormat(data[6]),
		Engine: format.Engine(data[7]),
		Order:  order,
	}
	copy(h.ID[:], data[8:24])

	return h, nil
}
