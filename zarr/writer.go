package zarr

import (
	"maps"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/compress"
	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/format"
	"github.com/arloliu/datatree/internal/options"
)

const (
	// DefaultDimensionSeparator joins chunk indices in chunk keys.
	DefaultDimensionSeparator = "."

	// ExtraDimensionSeparator overrides the chunk key separator for one
	// write; the value must be "." or "/".
	ExtraDimensionSeparator = "dimension_separator"
)

// WriteRequest describes one dataset-to-group write.
type WriteRequest struct {
	// Group is the target group path; "" (or "/") is the store root.
	Group string
	// Mode is any of the five write modes.
	Mode format.Mode
	// Encoding holds per-variable settings; keys must be variables of the dataset.
	Encoding dataset.Encoding
	// Consolidated rewrites .zmetadata after the group is written.
	Consolidated bool
	// Compute must be true; deferred writes are not supported.
	Compute bool
	// Extra carries backend options, see ExtraDimensionSeparator.
	Extra map[string]any
}

// Writer encodes datasets into Zarr groups.
type Writer struct {
	separator   string
	compression format.CompressionType
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithDimensionSeparator sets the default chunk key separator.
func WithDimensionSeparator(sep string) WriterOption {
	return options.New(func(w *Writer) error {
		if err := checkSeparator(sep); err != nil {
			return err
		}
		w.separator = sep

		return nil
	})
}

// WithDefaultCompression sets the compressor of variables without an
// explicit compression encoding.
func WithDefaultCompression(c format.CompressionType) WriterOption {
	return options.New(func(w *Writer) error {
		if _, err := compress.GetCodec(c); err != nil {
			return err
		}
		w.compression = c

		return nil
	})
}

// NewWriter creates a Writer. Chunks are zstd-compressed and keyed with "."
// unless configured otherwise.
func NewWriter(opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		separator:   DefaultDimensionSeparator,
		compression: format.CompressionZstd,
	}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	return w, nil
}

// WriteGroup writes ds as the group req.Group of store.
//
// Mode semantics:
//   - w: the group and everything below it are deleted first.
//   - w-: fails with errs.ErrContainerExists if the group exists.
//   - a: creates the group if needed and adds or replaces variables.
//   - a-: fails with errs.ErrVariableExists if any variable exists.
//   - r+: the group and every variable must exist with the same shape and
//     dtype (errs.ErrGroupNotFound, errs.ErrVariableNotFound,
//     errs.ErrShapeMismatch).
//
// Missing ancestor groups are created with empty attributes. All request
// validation and mode checks run before anything is written.
func (w *Writer) WriteGroup(ds *dataset.Dataset, store Store, req WriteRequest) error {
	sep, err := w.validate(ds, req)
	if err != nil {
		return err
	}

	prefix, err := groupPrefix(req.Group)
	if err != nil {
		return err
	}

	exists, err := hasKey(store, prefix+GroupMetaKey)
	if err != nil {
		return err
	}
	if err := checkMode(store, prefix, exists, ds, req.Mode); err != nil {
		return err
	}

	if req.Mode == format.ModeWrite && exists {
		if err := deletePrefix(store, prefix); err != nil {
			return err
		}
		exists = false
	}

	if err := ensureGroups(store, prefix); err != nil {
		return err
	}
	if err := w.writeGroupAttrs(store, prefix, exists, ds); err != nil {
		return err
	}

	for _, name := range ds.VariableNames() {
		v, _, _ := ds.Variable(name)
		if err := w.writeVariable(store, prefix+name+"/", v, req.Encoding[name], sep); err != nil {
			return errors.Wrapf(err, "variable %q", name)
		}
	}

	if req.Consolidated {
		return ConsolidateMetadata(store)
	}

	return nil
}

func (w *Writer) validate(ds *dataset.Dataset, req WriteRequest) (string, error) {
	if !req.Compute {
		return "", errs.NotImplemented(errs.ErrDeferredCompute)
	}
	if req.Mode < format.ModeWrite || req.Mode > format.ModeUpdate {
		return "", errs.Validation(errors.Wrapf(errs.ErrInvalidMode, "%q", req.Mode))
	}

	sep := w.separator
	for _, key := range slices.Sorted(maps.Keys(req.Extra)) {
		if key != ExtraDimensionSeparator {
			return "", errs.Validation(errors.Wrapf(errs.ErrUnknownOption, "%q", key))
		}
		s, ok := req.Extra[key].(string)
		if !ok {
			return "", errs.Validation(errors.Wrapf(errs.ErrInvalidOption, "%s: unexpected type %T", key, req.Extra[key]))
		}
		if err := checkSeparator(s); err != nil {
			return "", err
		}
		sep = s
	}

	if err := ds.Validate(); err != nil {
		return "", errs.Validation(err)
	}
	if err := CheckReservedAttrs(ds); err != nil {
		return "", err
	}
	for _, name := range ds.VariableNames() {
		if strings.Contains(name, "/") || strings.HasPrefix(name, ".") {
			return "", errs.Validation(errors.Wrapf(errs.ErrInvalidVariable, "%q cannot be a zarr key", name))
		}
		v, _, _ := ds.Variable(name)
		if _, err := resolveChunks(v.Shape, req.Encoding[name].Chunks); err != nil {
			return "", errors.Wrapf(err, "variable %q", name)
		}
		if _, err := compress.GetCodec(w.codecFor(req.Encoding[name])); err != nil {
			return "", errors.Wrapf(err, "variable %q", name)
		}
	}
	if err := req.Encoding.CheckVariables(ds); err != nil {
		return "", err
	}

	return sep, nil
}

func (w *Writer) codecFor(ve dataset.VariableEncoding) format.CompressionType {
	if ve.Compression != 0 {
		return ve.Compression
	}

	return w.compression
}

func checkMode(store Store, prefix string, exists bool, ds *dataset.Dataset, mode format.Mode) error {
	switch mode {
	case format.ModeWriteExclusive:
		if exists {
			return errors.Wrapf(errs.ErrContainerExists, "group %q", groupPath(prefix))
		}
	case format.ModeAppendNew:
		for _, name := range ds.VariableNames() {
			found, err := hasKey(store, prefix+name+"/"+ArrayMetaKey)
			if err != nil {
				return err
			}
			if found {
				return errors.Wrapf(errs.ErrVariableExists, "%q in group %q", name, groupPath(prefix))
			}
		}
	case format.ModeUpdate:
		if !exists {
			return errors.Wrapf(errs.ErrGroupNotFound, "%q", groupPath(prefix))
		}
		for _, name := range ds.VariableNames() {
			key := prefix + name + "/" + ArrayMetaKey
			data, err := store.Get(key)
			if errors.Is(err, errs.ErrKeyNotFound) {
				return errors.Wrapf(errs.ErrVariableNotFound, "%q in group %q", name, groupPath(prefix))
			}
			if err != nil {
				return err
			}

			var meta arrayMeta
			if err := unmarshal(key, data, &meta); err != nil {
				return err
			}
			v, _, _ := ds.Variable(name)
			if !sameArray(meta, v) {
				return errors.Wrapf(errs.ErrShapeMismatch, "%q: stored %s%v, writing %s%v",
					name, meta.DType, meta.Shape, dtypeString(v.Data.DType()), v.Shape)
			}
		}
	}

	return nil
}

// ensureGroups writes .zgroup for prefix and every missing ancestor.
func ensureGroups(store Store, prefix string) error {
	doc, err := marshal(groupMeta{ZarrFormat: zarrFormat})
	if err != nil {
		return err
	}

	parts := strings.Split(strings.TrimSuffix(prefix, "/"), "/")
	if prefix == "" {
		parts = nil
	}
	cur := ""
	for i := 0; i <= len(parts); i++ {
		key := cur + GroupMetaKey
		found, err := hasKey(store, key)
		if err != nil {
			return err
		}
		if !found {
			if err := store.Set(key, doc); err != nil {
				return err
			}
		}
		if i < len(parts) {
			cur += parts[i] + "/"
		}
	}

	return nil
}

func (w *Writer) writeGroupAttrs(store Store, prefix string, exists bool, ds *dataset.Dataset) error {
	attrs := ds.Attrs.Clone()
	coords := slices.Collect(maps.Keys(ds.Coords))

	if exists {
		key := prefix + AttrsKey
		data, err := store.Get(key)
		if err != nil && !errors.Is(err, errs.ErrKeyNotFound) {
			return err
		}
		if err == nil {
			var raw map[string]any
			if err := unmarshal(key, data, &raw); err != nil {
				return err
			}
			old, oldCoords := splitAttrs(raw, CoordinatesAttr)
			merged := old.Clone()
			if merged == nil {
				merged = dataset.Attrs{}
			}
			maps.Copy(merged, attrs)
			attrs = merged

			for _, c := range parseCoordinates(oldCoords) {
				if _, isData := ds.DataVars[c]; !isData && !slices.Contains(coords, c) {
					coords = append(coords, c)
				}
			}
		}
	}

	doc, err := marshal(groupAttrs(attrs, coords))
	if err != nil {
		return err
	}

	return store.Set(prefix+AttrsKey, doc)
}

func (w *Writer) writeVariable(store Store, prefix string, v *dataset.Variable, ve dataset.VariableEncoding, sep string) error {
	chunks, err := resolveChunks(v.Shape, ve.Chunks)
	if err != nil {
		return err
	}
	compression := w.codecFor(ve)
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return err
	}

	if err := deletePrefix(store, prefix); err != nil {
		return err
	}

	meta, err := marshal(newArrayMeta(v, chunks, compression, sep))
	if err != nil {
		return err
	}
	if err := store.Set(prefix+ArrayMetaKey, meta); err != nil {
		return err
	}

	attrs, err := marshal(variableAttrs(v))
	if err != nil {
		return err
	}
	if err := store.Set(prefix+AttrsKey, attrs); err != nil {
		return err
	}

	return writeChunks(store, prefix, v.Data, grid{shape: v.Shape, chunks: chunks}, codec, sep)
}

func checkSeparator(sep string) error {
	if sep != "." && sep != "/" {
		return errs.Validation(errors.Wrapf(errs.ErrInvalidOption, "dimension separator %q", sep))
	}

	return nil
}

// groupPrefix converts a group path to its key prefix: "" for the root,
// "a/b/" for "/a/b".
func groupPrefix(group string) (string, error) {
	trimmed := strings.Trim(group, "/")
	if trimmed == "" {
		return "", nil
	}
	for _, name := range strings.Split(trimmed, "/") {
		if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".z") {
			return "", errs.Validation(errors.Wrapf(errs.ErrInvalidOption, "group path %q", group))
		}
	}

	return trimmed + "/", nil
}

// groupPath is the inverse of groupPrefix.
func groupPath(prefix string) string {
	return "/" + strings.TrimSuffix(prefix, "/")
}
