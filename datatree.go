// Package datatree writes trees of labeled multidimensional datasets into
// containers with native nested groups: a netCDF-family container (a file or
// an in-memory byte slice) and Zarr v2 stores.
//
// Every node of a tree becomes one group. The root node maps to the container
// root and a node at path "/a/b" maps to group "/a/b". Per-group settings are
// passed as maps keyed by node path and are checked against the tree before
// anything is written.
//
// # Core Features
//
//   - Pre-order, sequential group writes with create-then-append mode escalation
//   - Optional coordinate inheritance from ancestor groups
//   - Per-variable compression (None, Zstd, S2, LZ4) and Zarr chunking
//   - xxHash64 checksums on every netCDF group record
//   - A single Zarr metadata consolidation after the last group
//   - Fail-fast validation: rejected calls perform no I/O
//
// # Basic Usage
//
// Building a tree:
//
//	root := dataset.New()
//	_ = root.AddCoord("x", dataset.MustVariable([]string{"x"}, dataset.Int64Array{1, 2, 3}))
//	t := tree.New(root)
//
//	child := dataset.New()
//	_ = child.AddDataVar("y", dataset.MustVariable([]string{"x"}, dataset.Float64Array{0.1, 0.2, 0.3}))
//	_, _ = t.Add("/group_a", child)
//
// Writing and reading netCDF:
//
//	data, _ := datatree.WriteNetCDFBytes(ctx, t, treeio.WithInheritedCoords(true))
//	back, _ := datatree.ReadNetCDF(data)
//
// Writing and reading Zarr:
//
//	_ = datatree.WriteZarrDir(ctx, t, "out.zarr", treeio.WithZarrMode(format.ModeWrite))
//	back, _ := datatree.ReadZarrDir("out.zarr")
//
// # Package Structure
//
// This package wraps the treeio, netcdf and zarr packages for the common
// cases. Use treeio directly to plug in custom group writers or a custom
// metadata consolidator, and netcdf or zarr to write single groups.
package datatree

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/netcdf"
	"github.com/arloliu/datatree/tree"
	"github.com/arloliu/datatree/treeio"
	"github.com/arloliu/datatree/zarr"
)

// WriteNetCDF writes t to the netCDF container at path.
//
// Returns a validation error for an empty path; use WriteNetCDFBytes to
// build the container in memory.
func WriteNetCDF(ctx context.Context, t *tree.Tree, path string, opts ...treeio.NetCDFOption) error {
	if path == "" {
		return errs.Validation(errors.Wrap(errs.ErrInvalidOption, "empty netCDF path"))
	}

	_, err := treeio.WriteNetCDF(ctx, t, path, opts...)

	return err
}

// WriteNetCDFBytes writes t to an in-memory netCDF container and returns its bytes.
func WriteNetCDFBytes(ctx context.Context, t *tree.Tree, opts ...treeio.NetCDFOption) ([]byte, error) {
	return treeio.WriteNetCDF(ctx, t, "", opts...)
}

// WriteZarr writes t to store.
func WriteZarr(ctx context.Context, t *tree.Tree, store zarr.Store, opts ...treeio.ZarrOption) error {
	return treeio.WriteZarr(ctx, t, store, opts...)
}

// WriteZarrDir writes t to a Zarr directory store rooted at dir.
func WriteZarrDir(ctx context.Context, t *tree.Tree, dir string, opts ...treeio.ZarrOption) error {
	return treeio.WriteZarr(ctx, t, zarr.NewDirectoryStore(dir), opts...)
}

// ReadNetCDF decodes an in-memory netCDF container into a tree.
func ReadNetCDF(data []byte) (*tree.Tree, error) {
	return netcdf.ReadTree(data)
}

// ReadNetCDFFile decodes the netCDF container at path into a tree.
func ReadNetCDFFile(path string) (*tree.Tree, error) {
	f, err := netcdf.OpenFile(path)
	if err != nil {
		return nil, err
	}

	return f.Tree()
}

// ReadZarr loads every group of store into a tree.
func ReadZarr(store zarr.Store) (*tree.Tree, error) {
	return zarr.ReadTree(store)
}

// ReadZarrDir loads the Zarr directory store rooted at dir.
func ReadZarrDir(dir string) (*tree.Tree, error) {
	return zarr.ReadTree(zarr.NewDirectoryStore(dir))
}
