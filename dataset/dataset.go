// Package dataset defines the labeled multidimensional dataset stored at each
// node of a data tree: coordinate variables, data variables and attributes.
package dataset

import (
	"maps"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/errs"
)

// Dataset is a set of coordinate and data variables sharing named dimensions.
//
// A variable name is either a coordinate or a data variable, never both.
type Dataset struct {
	Coords   map[string]*Variable
	DataVars map[string]*Variable
	Attrs    Attrs
}

// New creates an empty dataset.
func New() *Dataset {
	return &Dataset{
		Coords:   map[string]*Variable{},
		DataVars: map[string]*Variable{},
	}
}

// AddCoord adds a coordinate variable.
func (ds *Dataset) AddCoord(name string, v *Variable) error {
	if err := ds.checkNew(name, v); err != nil {
		return err
	}
	ds.Coords[name] = v

	return nil
}

// AddDataVar adds a data variable.
func (ds *Dataset) AddDataVar(name string, v *Variable) error {
	if err := ds.checkNew(name, v); err != nil {
		return err
	}
	ds.DataVars[name] = v

	return nil
}

func (ds *Dataset) checkNew(name string, v *Variable) error {
	if name == "" {
		return errors.Wrap(errs.ErrInvalidVariable, "empty variable name")
	}
	if _, _, ok := ds.Variable(name); ok {
		return errors.Wrapf(errs.ErrDuplicateName, "%q", name)
	}
	if err := v.Validate(); err != nil {
		return errors.Wrapf(err, "variable %q", name)
	}
	if ds.Coords == nil {
		ds.Coords = map[string]*Variable{}
	}
	if ds.DataVars == nil {
		ds.DataVars = map[string]*Variable{}
	}

	return nil
}

// Variable looks up a variable by name and reports whether it is a coordinate.
func (ds *Dataset) Variable(name string) (v *Variable, isCoord bool, ok bool) {
	if v, ok := ds.Coords[name]; ok {
		return v, true, true
	}
	if v, ok := ds.DataVars[name]; ok {
		return v, false, true
	}

	return nil, false, false
}

// VariableNames returns coordinate names followed by data variable names,
// each group sorted.
func (ds *Dataset) VariableNames() []string {
	names := slices.Sorted(maps.Keys(ds.Coords))
	return append(names, slices.Sorted(maps.Keys(ds.DataVars))...)
}

// Len returns the total number of variables.
func (ds *Dataset) Len() int {
	return len(ds.Coords) + len(ds.DataVars)
}

// Dims returns the size of every dimension used by the dataset.
//
// Returns errs.ErrDimensionClash when two variables disagree on a size.
func (ds *Dataset) Dims() (map[string]int, error) {
	dims := map[string]int{}
	for _, name := range ds.VariableNames() {
		v, _, _ := ds.Variable(name)
		for i, d := range v.Dims {
			if size, ok := dims[d]; ok && size != v.Shape[i] {
				return nil, errors.Wrapf(errs.ErrDimensionClash,
					"dimension %q is %d but variable %q has %d", d, size, name, v.Shape[i])
			}
			dims[d] = v.Shape[i]
		}
	}

	return dims, nil
}

// Validate checks every variable and the dimension sizes.
func (ds *Dataset) Validate() error {
	for _, name := range ds.VariableNames() {
		v, _, _ := ds.Variable(name)
		if err := v.Validate(); err != nil {
			return errors.Wrapf(err, "variable %q", name)
		}
	}
	_, err := ds.Dims()

	return err
}

// Clone returns a deep copy of ds.
func (ds *Dataset) Clone() *Dataset {
	out := New()
	for name, v := range ds.Coords {
		out.Coords[name] = v.Clone()
	}
	for name, v := range ds.DataVars {
		out.DataVars[name] = v.Clone()
	}
	out.Attrs = ds.Attrs.Clone()

	return out
}

// Equal reports whether both datasets hold equal coordinates, data variables
// and attributes.
func (ds *Dataset) Equal(other *Dataset) bool {
	if ds == nil || other == nil {
		return ds == other
	}

	return maps.EqualFunc(ds.Coords, other.Coords, (*Variable).Equal) &&
		maps.EqualFunc(ds.DataVars, other.DataVars, (*Variable).Equal) &&
		ds.Attrs.Equal(other.Attrs)
}
