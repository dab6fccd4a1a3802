// Package format defines the enumerations shared by the container writers:
// write modes, netCDF engines and file formats, element data types and
// compression codecs.
package format

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/errs"
)

type (
	CompressionType uint8
	DType           uint8
	Mode            uint8
	Engine          uint8
	FileFormat      uint8
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

const (
	DTypeFloat64 DType = 0x1 // DTypeFloat64 is an IEEE 754 double.
	DTypeInt64   DType = 0x2 // DTypeInt64 is a signed 64-bit integer.
	DTypeString  DType = 0x3 // DTypeString is a variable-length UTF-8 string.
)

// Write modes. The zero value means "unset" and lets each writer pick its default.
const (
	ModeWrite          Mode = iota + 1 // "w": create, overwriting existing content
	ModeWriteExclusive                 // "w-": create, failing if content exists
	ModeAppend                         // "a": create if absent, otherwise add or replace
	ModeAppendNew                      // "a-": add new variables only
	ModeUpdate                         // "r+": modify existing arrays only
)

// netCDF engines. The zero value means "unset".
const (
	EngineNetCDF4 Engine = iota + 1
	EngineH5NetCDF
	EnginePydap
	EngineScipy
)

// netCDF file formats. The zero value means "unset".
const (
	FormatNetCDF4 FileFormat = iota + 1
	FormatNetCDF4Classic
	FormatNetCDF3_64Bit
	FormatNetCDF3Classic
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ID returns the codec identifier used in Zarr compressor metadata.
// CompressionNone has no identifier and returns "".
func (c CompressionType) ID() string {
	switch c {
	case CompressionZstd:
		return "zstd"
	case CompressionS2:
		return "s2"
	case CompressionLZ4:
		return "lz4"
	default:
		return ""
	}
}

// ParseCompressionID is the inverse of CompressionType.ID.
// An empty id maps to CompressionNone.
func ParseCompressionID(id string) (CompressionType, error) {
	switch strings.ToLower(id) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, errors.Wrapf(errs.ErrUnknownOption, "compression codec %q", id)
	}
}

func (d DType) String() string {
	switch d {
	case DTypeFloat64:
		return "float64"
	case DTypeInt64:
		return "int64"
	case DTypeString:
		return "string"
	default:
		return "Unknown"
	}
}

// ItemSize returns the fixed element size in bytes, or 0 for variable-length types.
func (d DType) ItemSize() int {
	switch d {
	case DTypeFloat64, DTypeInt64:
		return 8
	default:
		return 0
	}
}

// modeTraits is the explicit family table for every write mode.
var modeTraits = map[Mode]struct {
	name   string
	create bool
	append bool
}{
	ModeWrite:          {name: "w", create: true},
	ModeWriteExclusive: {name: "w-", create: true},
	ModeAppend:         {name: "a", append: true},
	ModeAppendNew:      {name: "a-", append: true},
	ModeUpdate:         {name: "r+", append: true},
}

func (m Mode) String() string {
	if t, ok := modeTraits[m]; ok {
		return t.name
	}

	return "unset"
}

// IsCreate reports whether m belongs to the create family (w, w-).
func (m Mode) IsCreate() bool {
	return modeTraits[m].create
}

// IsAppend reports whether m belongs to the append family (a, a-, r+).
func (m Mode) IsAppend() bool {
	return modeTraits[m].append
}

// ParseMode parses a mode literal such as "w" or "a-".
func ParseMode(s string) (Mode, error) {
	for m, t := range modeTraits {
		if t.name == s {
			return m, nil
		}
	}

	return 0, errs.Validation(errors.Wrapf(errs.ErrInvalidMode, "%q", s))
}

func (e Engine) String() string {
	switch e {
	case EngineNetCDF4:
		return "netcdf4"
	case EngineH5NetCDF:
		return "h5netcdf"
	case EnginePydap:
		return "pydap"
	case EngineScipy:
		return "scipy"
	default:
		return "unset"
	}
}

// ParseEngine parses an engine name. An empty name yields the unset engine.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "netcdf4":
		return EngineNetCDF4, nil
	case "h5netcdf":
		return EngineH5NetCDF, nil
	case "pydap":
		return EnginePydap, nil
	case "scipy":
		return EngineScipy, nil
	default:
		return 0, errs.Validation(errors.Wrapf(errs.ErrUnsupportedEngine, "%q", s))
	}
}

func (f FileFormat) String() string {
	switch f {
	case FormatNetCDF4:
		return "NETCDF4"
	case FormatNetCDF4Classic:
		return "NETCDF4_CLASSIC"
	case FormatNetCDF3_64Bit:
		return "NETCDF3_64BIT"
	case FormatNetCDF3Classic:
		return "NETCDF3_CLASSIC"
	default:
		return "unset"
	}
}

// SupportsGroups reports whether the format can hold nested groups.
func (f FileFormat) SupportsGroups() bool {
	return f == FormatNetCDF4
}

// ParseFileFormat parses a format literal. An empty literal yields the unset format.
func ParseFileFormat(s string) (FileFormat, error) {
	switch strings.ToUpper(s) {
	case "":
		return 0, nil
	case "NETCDF4":
		return FormatNetCDF4, nil
	case "NETCDF4_CLASSIC":
		return FormatNetCDF4Classic, nil
	case "NETCDF3_64BIT":
		return FormatNetCDF3_64Bit, nil
	case "NETCDF3_CLASSIC":
		return FormatNetCDF3Classic, nil
	default:
		return 0, errs.Validation(errors.Wrapf(errs.ErrUnsupportedFormat, "%q", s))
	}
}
