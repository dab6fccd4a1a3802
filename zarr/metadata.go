package zarr

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/format"
)

// Metadata document names.
const (
	GroupMetaKey        = ".zgroup"
	AttrsKey            = ".zattrs"
	ArrayMetaKey        = ".zarray"
	ConsolidatedMetaKey = ".zmetadata"
)

const (
	zarrFormat = 2

	// ArrayDimensionsAttr lists the dimension names of an array.
	ArrayDimensionsAttr = "_ARRAY_DIMENSIONS"
	// CoordinatesAttr lists the coordinate variables of a group, space separated.
	CoordinatesAttr = "coordinates"

	vlenUTF8FilterID = "vlen-utf8"
)

type groupMeta struct {
	ZarrFormat int `json:"zarr_format"`
}

type codecMeta struct {
	ID string `json:"id"`
}

type arrayMeta struct {
	ZarrFormat         int         `json:"zarr_format"`
	Shape              []int       `json:"shape"`
	Chunks             []int       `json:"chunks"`
	DType              string      `json:"dtype"`
	Compressor         *codecMeta  `json:"compressor"`
	FillValue          any         `json:"fill_value"`
	Order              string      `json:"order"`
	Filters            []codecMeta `json:"filters"`
	DimensionSeparator string      `json:"dimension_separator"`
}

type consolidatedMeta struct {
	Metadata               map[string]json.RawMessage `json:"metadata"`
	ZarrConsolidatedFormat int                        `json:"zarr_consolidated_format"`
}

func dtypeString(d format.DType) string {
	switch d {
	case format.DTypeFloat64:
		return "<f8"
	case format.DTypeInt64:
		return "<i8"
	case format.DTypeString:
		return "|O"
	default:
		return ""
	}
}

func parseDType(s string) (format.DType, error) {
	switch s {
	case "<f8":
		return format.DTypeFloat64, nil
	case "<i8":
		return format.DTypeInt64, nil
	case "|O":
		return format.DTypeString, nil
	default:
		return 0, errors.Wrapf(errs.ErrInvalidMetadata, "unsupported dtype %q", s)
	}
}

// fillValue returns the JSON fill value for d; NaN is spelled "NaN" as in
// the Zarr v2 metadata format.
func fillValue(d format.DType) any {
	switch d {
	case format.DTypeFloat64:
		return "NaN"
	case format.DTypeInt64:
		return 0
	default:
		return ""
	}
}

func newArrayMeta(v *dataset.Variable, chunks []int, compression format.CompressionType, sep string) arrayMeta {
	meta := arrayMeta{
		ZarrFormat:         zarrFormat,
		Shape:              slices.Clone(v.Shape),
		Chunks:             chunks,
		DType:              dtypeString(v.Data.DType()),
		FillValue:          fillValue(v.Data.DType()),
		Order:              "C",
		DimensionSeparator: sep,
	}
	if meta.Shape == nil {
		meta.Shape = []int{}
	}
	if id := compression.ID(); id != "" {
		meta.Compressor = &codecMeta{ID: id}
	}
	if v.Data.DType() == format.DTypeString {
		meta.Filters = []codecMeta{{ID: vlenUTF8FilterID}}
	}

	return meta
}

func (m arrayMeta) validate() error {
	if m.ZarrFormat != zarrFormat {
		return errors.Wrapf(errs.ErrInvalidMetadata, "zarr_format %d", m.ZarrFormat)
	}
	if len(m.Chunks) != len(m.Shape) {
		return errors.Wrapf(errs.ErrInvalidMetadata, "chunks %v for shape %v", m.Chunks, m.Shape)
	}
	for i, c := range m.Chunks {
		if c <= 0 || m.Shape[i] < 0 {
			return errors.Wrapf(errs.ErrInvalidMetadata, "chunks %v for shape %v", m.Chunks, m.Shape)
		}
	}
	if m.Order != "C" {
		return errors.Wrapf(errs.ErrInvalidMetadata, "order %q", m.Order)
	}

	return nil
}

func (m arrayMeta) separator() string {
	if m.DimensionSeparator == "" {
		return DefaultDimensionSeparator
	}

	return m.DimensionSeparator
}

// variableAttrs renders user attributes plus the dimension list.
func variableAttrs(v *dataset.Variable) map[string]any {
	out := make(map[string]any, len(v.Attrs)+1)
	for k, val := range v.Attrs {
		out[k] = val
	}
	dims := v.Dims
	if dims == nil {
		dims = []string{}
	}
	out[ArrayDimensionsAttr] = dims

	return out
}

// groupAttrs renders group attributes; coords are listed sorted.
func groupAttrs(attrs dataset.Attrs, coords []string) map[string]any {
	out := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		out[k] = v
	}
	if len(coords) > 0 {
		slices.Sort(coords)
		out[CoordinatesAttr] = strings.Join(coords, " ")
	}

	return out
}

// CheckReservedAttrs returns errs.ErrInvalidOption when ds uses an attribute
// name the store layout owns: CoordinatesAttr on the group or
// ArrayDimensionsAttr on a variable.
func CheckReservedAttrs(ds *dataset.Dataset) error {
	if _, ok := ds.Attrs[CoordinatesAttr]; ok {
		return errs.Validation(errors.Wrapf(errs.ErrInvalidOption, "group attribute %q is reserved", CoordinatesAttr))
	}
	for _, name := range ds.VariableNames() {
		v, _, _ := ds.Variable(name)
		if _, ok := v.Attrs[ArrayDimensionsAttr]; ok {
			return errs.Validation(errors.Wrapf(errs.ErrInvalidOption,
				"variable %q: attribute %q is reserved", name, ArrayDimensionsAttr))
		}
	}

	return nil
}

// splitAttrs converts decoded JSON attributes back to dataset attributes,
// removing the reserved key. Non-string values are formatted with fmt.
func splitAttrs(raw map[string]any, reserved string) (dataset.Attrs, any) {
	var attrs dataset.Attrs
	for _, k := range slices.Sorted(maps.Keys(raw)) {
		if k == reserved {
			continue
		}
		if attrs == nil {
			attrs = make(dataset.Attrs, len(raw))
		}
		switch v := raw[k].(type) {
		case string:
			attrs[k] = v
		default:
			attrs[k] = fmt.Sprint(v)
		}
	}

	return attrs, raw[reserved]
}

func parseDims(v any) ([]string, error) {
	if v == nil {
		return nil, errors.Wrapf(errs.ErrInvalidMetadata, "missing %s", ArrayDimensionsAttr)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, errors.Wrapf(errs.ErrInvalidMetadata, "%s is %T", ArrayDimensionsAttr, v)
	}

	dims := make([]string, len(list))
	for i, d := range list {
		s, ok := d.(string)
		if !ok {
			return nil, errors.Wrapf(errs.ErrInvalidMetadata, "%s[%d] is %T", ArrayDimensionsAttr, i, d)
		}
		dims[i] = s
	}

	return dims, nil
}

func parseCoordinates(v any) []string {
	s, ok := v.(string)
	if !ok {
		return nil
	}

	return strings.Fields(s)
}

func marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode zarr metadata")
	}

	return data, nil
}

func unmarshal(key string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(errs.ErrInvalidMetadata, "%s: %v", key, err)
	}

	return nil
}

// nan is the float fill value.
var nan = math.NaN()
