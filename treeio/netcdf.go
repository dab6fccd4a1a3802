package treeio

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/internal/options"
	"github.com/arloliu/datatree/netcdf"
	"github.com/arloliu/datatree/tree"
)

// WriteNetCDF writes every node of t as one group of a netCDF container.
//
// With an empty path the container is built in memory and its bytes are
// returned; otherwise the file at path is written and the returned slice is
// nil.
//
// Validation, in order, before any I/O:
//  1. the format must be unset or NETCDF4 (errs.ErrUnsupportedFormat)
//  2. the engine must be unset, netcdf4, h5netcdf or pydap
//     (errs.ErrUnsupportedEngine); unset means h5netcdf
//  3. the group must be the root (errs.ErrRootGroupOverride)
//  4. compute must be true (errs.ErrDeferredCompute)
//  5. encoding keys, then unlimited-dims keys, must be groups of t
//     (errs.ErrUnexpectedGroup)
//
// ctx is checked before each group write.
func WriteNetCDF(ctx context.Context, t *tree.Tree, path string, opts ...NetCDFOption) ([]byte, error) {
	cfg := defaultNetCDFConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	engine, err := validateNetCDF(t, cfg)
	if err != nil {
		return nil, err
	}

	writer := cfg.Writer
	if writer == nil {
		w, err := netcdf.NewWriter()
		if err != nil {
			return nil, err
		}
		writer = w
	}

	var (
		sink netcdf.Sink
		mem  *netcdf.MemorySink
	)
	if path == "" {
		mem = netcdf.NewMemorySink()
		sink = mem
	} else {
		sink = netcdf.NewFileSink(path)
	}

	root := t.Root()
	resolver := NewResolver(root, cfg.Encoding, cfg.UnlimitedDims)
	modes := newNetCDFEscalator(cfg.Mode)

	for n := range t.Subtree() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		atRoot := n == root
		ds := n.ToDataset(cfg.InheritCoords || atRoot)
		res := resolver.Resolve(n)

		req := netcdf.WriteRequest{
			Group:         res.Group,
			Mode:          modes.Mode(),
			Encoding:      res.Encoding,
			UnlimitedDims: res.UnlimitedDims,
			Format:        cfg.Format,
			Engine:        engine,
			Compute:       cfg.Compute,
			Extra:         cfg.Extra,
		}
		if err := writer.WriteGroup(ds, sink, req); err != nil {
			return nil, errors.Wrapf(err, "write group %q", n.Path())
		}
		modes.Committed()
	}

	if mem != nil {
		return mem.Bytes(), nil
	}

	return nil, nil
}
