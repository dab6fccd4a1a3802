package netcdf

import (
	"maps"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/endian"
	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/format"
	"github.com/arloliu/datatree/internal/options"
)

// Recognized keys of WriteRequest.Extra.
const (
	// ExtraDefaultCompression names the codec for variables without an
	// explicit compression encoding. Accepts a format.CompressionType or a
	// codec id string such as "zstd".
	ExtraDefaultCompression = "default_compression"
)

// WriteRequest describes one dataset-to-group write.
type WriteRequest struct {
	// Group is the target group path; "" (or "/") is the container root.
	Group string
	// Mode is ModeWrite, ModeWriteExclusive or ModeAppend.
	Mode format.Mode
	// Encoding holds per-variable settings; keys must be variables of the dataset.
	Encoding dataset.Encoding
	// UnlimitedDims lists dimensions to declare unlimited.
	UnlimitedDims []string
	// Format defaults to NETCDF4.
	Format format.FileFormat
	// Engine defaults to netcdf4.
	Engine format.Engine
	// Compute must be true; deferred writes are not supported.
	Compute bool
	// Extra carries engine-specific options, see the Extra* constants.
	Extra map[string]any
}

// Writer encodes datasets into container groups.
type Writer struct {
	order endian.EndianEngine
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithByteOrder sets the byte order of containers created by the writer.
// Appends always use the byte order of the existing container.
func WithByteOrder(order endian.EndianEngine) WriterOption {
	return options.New(func(w *Writer) error {
		if order == nil {
			return errs.Validation(errors.Wrap(errs.ErrInvalidOption, "nil byte order"))
		}
		w.order = order

		return nil
	})
}

// NewWriter creates a Writer; containers are little-endian by default.
func NewWriter(opts ...WriterOption) (*Writer, error) {
	w := &Writer{order: endian.GetLittleEndianEngine()}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	return w, nil
}

// WriteGroup writes ds as the group req.Group of the container held by sink.
//
// All request validation happens before the sink is touched. With
// ModeAppend, an absent or empty container is created; an existing one must
// carry a valid header, and its byte order is used for the new record.
func (w *Writer) WriteGroup(ds *dataset.Dataset, sink Sink, req WriteRequest) error {
	req, defaultCompression, err := w.validate(ds, req)
	if err != nil {
		return err
	}

	size, err := sink.Size()
	if err != nil {
		return err
	}

	if req.Mode == format.ModeWriteExclusive && size > 0 {
		return errors.Wrapf(errs.ErrContainerExists, "%s", sink.Name())
	}

	if req.Mode == format.ModeAppend && size > 0 {
		buf := make([]byte, HeaderSize)
		if err := sink.ReadHeader(buf); err != nil {
			return err
		}
		header, err := ParseHeader(buf)
		if err != nil {
			return errors.Wrapf(err, "%s", sink.Name())
		}

		record, err := w.record(header.Order, ds, req, defaultCompression)
		if err != nil {
			return err
		}

		return sink.Append(record)
	}

	header := newHeader(req.Format, req.Engine, w.order)
	record, err := w.record(header.Order, ds, req, defaultCompression)
	if err != nil {
		return err
	}

	return sink.Create(append(header.Bytes(), record...))
}

func (w *Writer) record(order endian.EndianEngine, ds *dataset.Dataset, req WriteRequest,
	defaultCompression format.CompressionType,
) ([]byte, error) {
	enc := recordEncoder{
		order:              order,
		encoding:           req.Encoding,
		defaultCompression: defaultCompression,
	}

	return enc.encode(req.Group, ds, req.UnlimitedDims)
}

// validate normalizes req and checks it against ds without any I/O.
func (w *Writer) validate(ds *dataset.Dataset, req WriteRequest) (WriteRequest, format.CompressionType, error) {
	if !req.Compute {
		return req, 0, errs.NotImplemented(errs.ErrDeferredCompute)
	}

	switch req.Mode {
	case format.ModeWrite, format.ModeWriteExclusive, format.ModeAppend:
	default:
		return req, 0, errs.Validation(errors.Wrapf(errs.ErrInvalidMode, "netCDF does not support mode %q", req.Mode))
	}

	if req.Format == 0 {
		req.Format = format.FormatNetCDF4
	}
	if req.Engine == 0 {
		req.Engine = format.EngineNetCDF4
	}
	if req.Engine == format.EngineScipy && req.Format.SupportsGroups() {
		return req, 0, errs.Validation(errors.Wrapf(errs.ErrUnsupportedEngine, "scipy cannot write %s", req.Format))
	}

	req.Group = normalizeGroup(req.Group)
	if req.Group != "/" && !req.Format.SupportsGroups() {
		return req, 0, errs.Validation(errors.Wrapf(errs.ErrUnsupportedFormat, "%s has no groups, cannot write %q",
			req.Format, req.Group))
	}

	defaultCompression, err := parseExtra(req.Extra)
	if err != nil {
		return req, 0, err
	}

	if err := ds.Validate(); err != nil {
		return req, 0, errs.Validation(err)
	}
	if err := req.Encoding.CheckVariables(ds); err != nil {
		return req, 0, err
	}

	dims, _ := ds.Dims()
	var unknown []string
	for _, d := range req.UnlimitedDims {
		if _, ok := dims[d]; !ok {
			unknown = append(unknown, d)
		}
	}
	if len(unknown) > 0 {
		return req, 0, errs.Validation(errors.Wrapf(errs.ErrUnknownDimension, "%v", unknown))
	}

	return req, defaultCompression, nil
}

func parseExtra(extra map[string]any) (format.CompressionType, error) {
	compression := format.CompressionNone
	for _, key := range slices.Sorted(maps.Keys(extra)) {
		switch key {
		case ExtraDefaultCompression:
			switch v := extra[key].(type) {
			case format.CompressionType:
				compression = v
			case string:
				c, err := format.ParseCompressionID(v)
				if err != nil {
					return 0, errs.Validation(err)
				}
				compression = c
			default:
				return 0, errs.Validation(errors.Wrapf(errs.ErrInvalidOption, "%s: unexpected type %T", key, v))
			}
		default:
			return 0, errs.Validation(errors.Wrapf(errs.ErrUnknownOption, "%q", key))
		}
	}

	return compression, nil
}

func normalizeGroup(group string) string {
	if group == "" {
		return "/"
	}

	return group
}
