package dataset

import (
	"maps"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/format"
)

// VariableEncoding holds per-variable storage settings.
//
// Compression applies to netCDF variable payloads and Zarr chunks alike.
// Chunks is only honored by Zarr; an empty Chunks stores the array as a
// single chunk.
type VariableEncoding struct {
	Compression format.CompressionType
	Chunks      []int
}

// Encoding maps variable names to their storage settings for one dataset.
type Encoding map[string]VariableEncoding

// CheckVariables returns errs.ErrUnknownVariable naming every key of enc that
// is not a variable of ds.
func (enc Encoding) CheckVariables(ds *Dataset) error {
	var unknown []string
	for name := range enc {
		if _, _, ok := ds.Variable(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)

	return errs.Validation(errors.Wrapf(errs.ErrUnknownVariable, "%v", unknown))
}

// Clone returns a deep copy of enc.
func (enc Encoding) Clone() Encoding {
	if enc == nil {
		return nil
	}
	out := maps.Clone(enc)
	for name, ve := range out {
		ve.Chunks = slices.Clone(ve.Chunks)
		out[name] = ve
	}

	return out
}
