package zarr

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/tree"
)

// metaSource serves metadata documents from .zmetadata when the store has
// one, and from the store keys otherwise.
type metaSource struct {
	store        Store
	consolidated map[string]json.RawMessage
}

func newMetaSource(store Store) (*metaSource, error) {
	src := &metaSource{store: store}

	data, err := store.Get(ConsolidatedMetaKey)
	if errors.Is(err, errs.ErrKeyNotFound) {
		return src, nil
	}
	if err != nil {
		return nil, err
	}

	var meta consolidatedMeta
	if err := unmarshal(ConsolidatedMetaKey, data, &meta); err != nil {
		return nil, err
	}
	if meta.ZarrConsolidatedFormat != 1 {
		return nil, errors.Wrapf(errs.ErrInvalidMetadata, "zarr_consolidated_format %d", meta.ZarrConsolidatedFormat)
	}
	src.consolidated = meta.Metadata

	return src, nil
}

func (m *metaSource) get(key string) ([]byte, error) {
	if m.consolidated == nil {
		return m.store.Get(key)
	}
	doc, ok := m.consolidated[key]
	if !ok {
		return nil, errors.Wrapf(errs.ErrKeyNotFound, "%q", key)
	}

	return doc, nil
}

func (m *metaSource) keys() ([]string, error) {
	if m.consolidated == nil {
		return m.store.List("")
	}

	keys := make([]string, 0, len(m.consolidated))
	for k := range m.consolidated {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys, nil
}

// groups returns group prefixes ordered parent first, siblings by name.
func (m *metaSource) groups() ([]string, error) {
	keys, err := m.keys()
	if err != nil {
		return nil, err
	}

	var prefixes []string
	for _, k := range keys {
		if k == GroupMetaKey {
			prefixes = append(prefixes, "")
		} else if p, ok := strings.CutSuffix(k, "/"+GroupMetaKey); ok {
			prefixes = append(prefixes, p+"/")
		}
	}
	slices.SortFunc(prefixes, func(a, b string) int {
		return slices.Compare(strings.Split(a, "/"), strings.Split(b, "/"))
	})

	return prefixes, nil
}

// arrays returns the variable names directly under prefix.
func (m *metaSource) arrays(prefix string) ([]string, error) {
	keys, err := m.keys()
	if err != nil {
		return nil, err
	}

	var names []string
	for _, k := range keys {
		rest, ok := strings.CutPrefix(k, prefix)
		if !ok {
			continue
		}
		if name, ok := strings.CutSuffix(rest, "/"+ArrayMetaKey); ok && !strings.Contains(name, "/") {
			names = append(names, name)
		}
	}

	return names, nil
}

func (m *metaSource) attrs(key string) (map[string]any, error) {
	data, err := m.get(key)
	if errors.Is(err, errs.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := unmarshal(key, data, &raw); err != nil {
		return nil, err
	}

	return raw, nil
}

// ListGroups returns the path of every group in store, parents before
// children; the root is "/".
func ListGroups(store Store) ([]string, error) {
	src, err := newMetaSource(store)
	if err != nil {
		return nil, err
	}

	prefixes, err := src.groups()
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(prefixes))
	for i, p := range prefixes {
		paths[i] = groupPath(p)
	}

	return paths, nil
}

// ReadGroup loads the dataset of one group. Both "" and "/" name the root.
func ReadGroup(store Store, group string) (*dataset.Dataset, error) {
	src, err := newMetaSource(store)
	if err != nil {
		return nil, err
	}

	prefix, err := groupPrefix(group)
	if err != nil {
		return nil, err
	}

	return readGroup(src, prefix)
}

func readGroup(src *metaSource, prefix string) (*dataset.Dataset, error) {
	if _, err := src.get(prefix + GroupMetaKey); err != nil {
		if errors.Is(err, errs.ErrKeyNotFound) {
			return nil, errors.Wrapf(errs.ErrGroupNotFound, "%q", groupPath(prefix))
		}

		return nil, err
	}

	raw, err := src.attrs(prefix + AttrsKey)
	if err != nil {
		return nil, err
	}
	ds := dataset.New()
	var coordsAttr any
	ds.Attrs, coordsAttr = splitAttrs(raw, CoordinatesAttr)
	coords := parseCoordinates(coordsAttr)

	names, err := src.arrays(prefix)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		v, err := readVariable(src, prefix+name+"/")
		if err != nil {
			return nil, errors.Wrapf(err, "variable %q", name)
		}
		if slices.Contains(coords, name) {
			err = ds.AddCoord(name, v)
		} else {
			err = ds.AddDataVar(name, v)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "variable %q", name)
		}
	}

	return ds, nil
}

func readVariable(src *metaSource, prefix string) (*dataset.Variable, error) {
	key := prefix + ArrayMetaKey
	data, err := src.get(key)
	if err != nil {
		return nil, err
	}

	var meta arrayMeta
	if err := unmarshal(key, data, &meta); err != nil {
		return nil, err
	}
	if err := meta.validate(); err != nil {
		return nil, errors.Wrapf(err, "%s", key)
	}

	raw, err := src.attrs(prefix + AttrsKey)
	if err != nil {
		return nil, err
	}
	attrs, dimsAttr := splitAttrs(raw, ArrayDimensionsAttr)
	dims, err := parseDims(dimsAttr)
	if err != nil {
		return nil, err
	}
	if len(dims) != len(meta.Shape) {
		return nil, errors.Wrapf(errs.ErrInvalidMetadata, "%d dimension names for shape %v", len(dims), meta.Shape)
	}

	arr, err := readArray(src.store, prefix, meta)
	if err != nil {
		return nil, err
	}

	v := &dataset.Variable{Dims: dims, Shape: meta.Shape, Data: arr, Attrs: attrs}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	return v, nil
}

// ReadTree loads every group of store into a data tree.
func ReadTree(store Store) (*tree.Tree, error) {
	src, err := newMetaSource(store)
	if err != nil {
		return nil, err
	}

	prefixes, err := src.groups()
	if err != nil {
		return nil, err
	}

	t := tree.New(dataset.New())
	for _, prefix := range prefixes {
		ds, err := readGroup(src, prefix)
		if err != nil {
			return nil, err
		}
		if prefix == "" {
			t = tree.New(ds)
			continue
		}
		if _, err := t.Add(groupPath(prefix), ds); err != nil {
			return nil, errors.Wrapf(err, "group %q", groupPath(prefix))
		}
	}

	return t, nil
}
