package netcdf

import (
	"os"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/endian"
	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/format"
	"github.com/arloliu/datatree/tree"
)

// File is a decoded container.
type File struct {
	ID     uuid.UUID
	Format format.FileFormat
	Engine format.Engine

	order     endian.EndianEngine
	paths     []string
	groups    map[string]*dataset.Dataset
	unlimited map[string][]string
}

// Open decodes a container held in memory.
//
// Every record checksum is verified; records for the same group are merged
// in file order.
func Open(data []byte) (*File, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(data[HeaderSize:], header.Order)
	if err != nil {
		return nil, err
	}

	f := &File{
		ID:        header.ID,
		Format:    header.Format,
		Engine:    header.Engine,
		order:     header.Order,
		groups:    make(map[string]*dataset.Dataset),
		unlimited: make(map[string][]string),
	}
	for _, rec := range records {
		f.merge(rec)
	}

	return f, nil
}

// OpenFile reads and decodes the container at path.
func OpenFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	f, err := Open(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}

	return f, nil
}

func (f *File) merge(rec groupRecord) {
	cur, ok := f.groups[rec.path]
	if !ok {
		f.paths = append(f.paths, rec.path)
		f.groups[rec.path] = rec.ds
		f.unlimited[rec.path] = rec.unlimited

		return
	}

	for k, v := range rec.ds.Attrs {
		if cur.Attrs == nil {
			cur.Attrs = make(dataset.Attrs)
		}
		cur.Attrs[k] = v
	}
	for name, v := range rec.ds.Coords {
		delete(cur.DataVars, name)
		cur.Coords[name] = v
	}
	for name, v := range rec.ds.DataVars {
		delete(cur.Coords, name)
		cur.DataVars[name] = v
	}
	for _, d := range rec.unlimited {
		if !slices.Contains(f.unlimited[rec.path], d) {
			f.unlimited[rec.path] = append(f.unlimited[rec.path], d)
		}
	}
}

// ByteOrder returns the byte order recorded in the header.
func (f *File) ByteOrder() endian.EndianEngine {
	return f.order
}

// Groups returns group paths in order of first appearance; the root is "/".
func (f *File) Groups() []string {
	return slices.Clone(f.paths)
}

// Dataset returns a copy of the group's dataset. Both "" and "/" name the root.
func (f *File) Dataset(group string) (*dataset.Dataset, error) {
	ds, ok := f.groups[normalizeGroup(group)]
	if !ok {
		return nil, errors.Wrapf(errs.ErrGroupNotFound, "%q", group)
	}

	return ds.Clone(), nil
}

// UnlimitedDims returns the dimensions declared unlimited for group.
func (f *File) UnlimitedDims(group string) []string {
	return slices.Clone(f.unlimited[normalizeGroup(group)])
}

// Tree rebuilds the data tree. Groups missing from the container but implied
// by a nested path get empty datasets.
func (f *File) Tree() (*tree.Tree, error) {
	root := dataset.New()
	if ds, ok := f.groups["/"]; ok {
		root = ds.Clone()
	}

	t := tree.New(root)
	for _, path := range f.paths {
		if path == "/" {
			continue
		}
		if _, err := t.Add(path, f.groups[path].Clone()); err != nil {
			return nil, errors.Wrapf(err, "group %q", path)
		}
	}

	return t, nil
}

// ReadTree decodes data and rebuilds its data tree.
func ReadTree(data []byte) (*tree.Tree, error) {
	f, err := Open(data)
	if err != nil {
		return nil, err
	}

	return f.Tree()
}
