package dataset

import (
	"maps"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/errs"
)

// Attrs holds string attributes of a dataset or variable.
type Attrs map[string]string

// Clone returns a copy of a; a nil map stays nil.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}

	return maps.Clone(a)
}

// Equal treats nil and empty attribute maps as equal.
func (a Attrs) Equal(other Attrs) bool {
	return maps.Equal(a, other)
}

// Variable is a named-dimension array with attributes.
type Variable struct {
	Dims  []string
	Shape []int
	Data  Array
	Attrs Attrs
}

// NewVariable creates a variable over data.
//
// When shape is omitted it is inferred: a scalar for zero dims, len(data) for
// one dim. Variables with two or more dims need an explicit shape.
//
// Returns errs.ErrInvalidVariable if dims, shape and data disagree.
func NewVariable(dims []string, data Array, shape ...int) (*Variable, error) {
	if data == nil {
		return nil, errors.Wrap(errs.ErrInvalidVariable, "nil data")
	}
	if len(shape) == 0 && len(dims) == 1 {
		shape = []int{data.Len()}
	}

	v := &Variable{Dims: slices.Clone(dims), Shape: slices.Clone(shape), Data: data}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	return v, nil
}

// MustVariable is NewVariable for statically known, valid inputs. It panics on error.
func MustVariable(dims []string, data Array, shape ...int) *Variable {
	v, err := NewVariable(dims, data, shape...)
	if err != nil {
		panic(err)
	}

	return v
}

// WithAttrs sets the variable's attributes and returns it.
func (v *Variable) WithAttrs(attrs Attrs) *Variable {
	v.Attrs = attrs
	return v
}

// Size returns the number of elements implied by the shape.
func (v *Variable) Size() int {
	return ShapeSize(v.Shape)
}

// Validate checks that dims, shape and data agree.
func (v *Variable) Validate() error {
	if v.Data == nil {
		return errors.Wrap(errs.ErrInvalidVariable, "nil data")
	}
	if len(v.Dims) != len(v.Shape) {
		return errors.Wrapf(errs.ErrInvalidVariable, "%d dims but shape %v", len(v.Dims), v.Shape)
	}

	seen := make(map[string]struct{}, len(v.Dims))
	for i, d := range v.Dims {
		if d == "" {
			return errors.Wrap(errs.ErrInvalidVariable, "empty dimension name")
		}
		if _, dup := seen[d]; dup {
			return errors.Wrapf(errs.ErrInvalidVariable, "repeated dimension %q", d)
		}
		seen[d] = struct{}{}
		if v.Shape[i] < 0 {
			return errors.Wrapf(errs.ErrInvalidVariable, "negative size for dimension %q", d)
		}
	}

	if v.Size() != v.Data.Len() {
		return errors.Wrapf(errs.ErrInvalidVariable, "shape %v holds %d elements, data has %d",
			v.Shape, v.Size(), v.Data.Len())
	}

	return nil
}

// Clone returns a deep copy of v.
func (v *Variable) Clone() *Variable {
	return &Variable{
		Dims:  slices.Clone(v.Dims),
		Shape: slices.Clone(v.Shape),
		Data:  v.Data.Clone(),
		Attrs: v.Attrs.Clone(),
	}
}

// Equal reports whether both variables have the same dims, shape, data and attrs.
func (v *Variable) Equal(other *Variable) bool {
	if v == nil || other == nil {
		return v == other
	}

	return slices.Equal(v.Dims, other.Dims) &&
		slices.Equal(v.Shape, other.Shape) &&
		v.Data.Equal(other.Data) &&
		v.Attrs.Equal(other.Attrs)
}

// ShapeSize returns the product of shape; a scalar has size 1.
func ShapeSize(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}

	return n
}
