package dataset

import (
	"slices"

	"github.com/arloliu/datatree/format"
)

// Array is the typed flat storage of a variable, in C (row-major) order.
type Array interface {
	DType() format.DType
	Len() int
	// Clone returns a deep copy.
	Clone() Array
	// Equal reports whether other has the same dtype and elements.
	Equal(other Array) bool
}

type (
	Float64Array []float64
	Int64Array   []int64
	StringArray  []string
)

var (
	_ Array = Float64Array(nil)
	_ Array = Int64Array(nil)
	_ Array = StringArray(nil)
)

func (a Float64Array) DType() format.DType { return format.DTypeFloat64 }
func (a Float64Array) Len() int            { return len(a) }
func (a Float64Array) Clone() Array        { return slices.Clone(a) }

// Equal compares element-wise; NaN equals NaN so that fill values round-trip.
func (a Float64Array) Equal(other Array) bool {
	b, ok := other.(Float64Array)
	if !ok || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && (a[i] == a[i] || b[i] == b[i]) {
			return false
		}
	}

	return true
}

func (a Int64Array) DType() format.DType { return format.DTypeInt64 }
func (a Int64Array) Len() int            { return len(a) }
func (a Int64Array) Clone() Array        { return slices.Clone(a) }

func (a Int64Array) Equal(other Array) bool {
	b, ok := other.(Int64Array)
	return ok && slices.Equal(a, b)
}

func (a StringArray) DType() format.DType { return format.DTypeString }
func (a StringArray) Len() int            { return len(a) }
func (a StringArray) Clone() Array        { return slices.Clone(a) }

func (a StringArray) Equal(other Array) bool {
	b, ok := other.(StringArray)
	return ok && slices.Equal(a, b)
}

// NewArray allocates a zeroed array of n elements of the given dtype.
// It returns nil for an unknown dtype.
func NewArray(dtype format.DType, n int) Array {
	switch dtype {
	case format.DTypeFloat64:
		return make(Float64Array, n)
	case format.DTypeInt64:
		return make(Int64Array, n)
	case format.DTypeString:
		return make(StringArray, n)
	default:
		return nil
	}
}
