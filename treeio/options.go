package treeio

import (
	"maps"

	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/format"
	"github.com/arloliu/datatree/internal/options"
	"github.com/arloliu/datatree/netcdf"
	"github.com/arloliu/datatree/zarr"
)

// NetCDFGroupWriter writes one dataset into one group of a netCDF container.
// *netcdf.Writer implements it.
type NetCDFGroupWriter interface {
	WriteGroup(ds *dataset.Dataset, sink netcdf.Sink, req netcdf.WriteRequest) error
}

// ZarrGroupWriter writes one dataset into one group of a Zarr store.
// *zarr.Writer implements it.
type ZarrGroupWriter interface {
	WriteGroup(ds *dataset.Dataset, store zarr.Store, req zarr.WriteRequest) error
}

// MetadataConsolidator aggregates store-wide metadata after a tree write.
type MetadataConsolidator interface {
	Consolidate(store zarr.Store) error
}

// ConsolidatorFunc adapts a function to MetadataConsolidator.
type ConsolidatorFunc func(store zarr.Store) error

func (f ConsolidatorFunc) Consolidate(store zarr.Store) error {
	return f(store)
}

// NetCDFConfig holds the settings of WriteNetCDF.
type NetCDFConfig struct {
	Mode          format.Mode
	Encoding      map[string]dataset.Encoding
	UnlimitedDims map[string][]string
	Format        format.FileFormat
	Engine        format.Engine
	Group         string
	InheritCoords bool
	Compute       bool
	Extra         map[string]any
	Writer        NetCDFGroupWriter
}

// NetCDFOption configures WriteNetCDF.
type NetCDFOption = options.Option[*NetCDFConfig]

func defaultNetCDFConfig() *NetCDFConfig {
	return &NetCDFConfig{
		Mode:    format.ModeWrite,
		Compute: true,
	}
}

// WithMode sets the mode of the first (root) write: ModeWrite (default),
// ModeWriteExclusive or ModeAppend.
func WithMode(mode format.Mode) NetCDFOption {
	return options.NoError(func(c *NetCDFConfig) {
		c.Mode = mode
	})
}

// WithEncoding sets per-group variable encodings keyed by node path.
func WithEncoding(encoding map[string]dataset.Encoding) NetCDFOption {
	return options.NoError(func(c *NetCDFConfig) {
		c.Encoding = encoding
	})
}

// WithUnlimitedDims sets per-group unlimited dimensions keyed by node path.
func WithUnlimitedDims(dims map[string][]string) NetCDFOption {
	return options.NoError(func(c *NetCDFConfig) {
		c.UnlimitedDims = dims
	})
}

// WithFormat sets the file format. Only format.FormatNetCDF4 is accepted.
func WithFormat(ff format.FileFormat) NetCDFOption {
	return options.NoError(func(c *NetCDFConfig) {
		c.Format = ff
	})
}

// WithEngine sets the engine; it defaults to h5netcdf.
func WithEngine(engine format.Engine) NetCDFOption {
	return options.NoError(func(c *NetCDFConfig) {
		c.Engine = engine
	})
}

// WithGroup sets the container group the tree root is written to. Only the
// root ("" or "/") is supported.
func WithGroup(group string) NetCDFOption {
	return options.NoError(func(c *NetCDFConfig) {
		c.Group = group
	})
}

// WithInheritedCoords writes ancestor coordinates into every group.
func WithInheritedCoords(inherit bool) NetCDFOption {
	return options.NoError(func(c *NetCDFConfig) {
		c.InheritCoords = inherit
	})
}

// WithCompute selects eager (true, the default) or deferred writes.
// Deferred writes are not implemented.
func WithCompute(compute bool) NetCDFOption {
	return options.NoError(func(c *NetCDFConfig) {
		c.Compute = compute
	})
}

// WithExtra adds engine-specific options passed verbatim to the group writer.
func WithExtra(extra map[string]any) NetCDFOption {
	return options.NoError(func(c *NetCDFConfig) {
		if c.Extra == nil {
			c.Extra = make(map[string]any, len(extra))
		}
		maps.Copy(c.Extra, extra)
	})
}

// WithGroupWriter replaces the default netcdf.Writer.
func WithGroupWriter(w NetCDFGroupWriter) NetCDFOption {
	return options.NoError(func(c *NetCDFConfig) {
		c.Writer = w
	})
}

// ZarrConfig holds the settings of WriteZarr.
type ZarrConfig struct {
	Mode          format.Mode
	Encoding      map[string]dataset.Encoding
	Consolidated  bool
	Group         string
	InheritCoords bool
	Compute       bool
	Extra         map[string]any
	Writer        ZarrGroupWriter
	Consolidator  MetadataConsolidator
}

// ZarrOption configures WriteZarr.
type ZarrOption = options.Option[*ZarrConfig]

func defaultZarrConfig() *ZarrConfig {
	return &ZarrConfig{
		Mode:         format.ModeWriteExclusive,
		Consolidated: true,
		Compute:      true,
	}
}

// WithZarrMode sets the mode of the first (root) write; it defaults to
// ModeWriteExclusive.
func WithZarrMode(mode format.Mode) ZarrOption {
	return options.NoError(func(c *ZarrConfig) {
		c.Mode = mode
	})
}

// WithZarrEncoding sets per-group variable encodings keyed by node path.
func WithZarrEncoding(encoding map[string]dataset.Encoding) ZarrOption {
	return options.NoError(func(c *ZarrConfig) {
		c.Encoding = encoding
	})
}

// WithConsolidated enables (the default) or disables the final metadata
// consolidation.
func WithConsolidated(consolidated bool) ZarrOption {
	return options.NoError(func(c *ZarrConfig) {
		c.Consolidated = consolidated
	})
}

// WithZarrGroup sets the store group the tree root is written to. Only the
// root is supported.
func WithZarrGroup(group string) ZarrOption {
	return options.NoError(func(c *ZarrConfig) {
		c.Group = group
	})
}

// WithZarrInheritedCoords writes ancestor coordinates into every group.
func WithZarrInheritedCoords(inherit bool) ZarrOption {
	return options.NoError(func(c *ZarrConfig) {
		c.InheritCoords = inherit
	})
}

// WithZarrCompute selects eager or deferred writes.
func WithZarrCompute(compute bool) ZarrOption {
	return options.NoError(func(c *ZarrConfig) {
		c.Compute = compute
	})
}

// WithZarrExtra adds backend options passed verbatim to the group writer.
func WithZarrExtra(extra map[string]any) ZarrOption {
	return options.NoError(func(c *ZarrConfig) {
		if c.Extra == nil {
			c.Extra = make(map[string]any, len(extra))
		}
		maps.Copy(c.Extra, extra)
	})
}

// WithZarrGroupWriter replaces the default zarr.Writer.
func WithZarrGroupWriter(w ZarrGroupWriter) ZarrOption {
	return options.NoError(func(c *ZarrConfig) {
		c.Writer = w
	})
}

// WithConsolidator replaces zarr.ConsolidateMetadata.
func WithConsolidator(c MetadataConsolidator) ZarrOption {
	return options.NoError(func(cfg *ZarrConfig) {
		cfg.Consolidator = c
	})
}
