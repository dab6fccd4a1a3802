// Package treeio writes a whole data tree into one grouped container.
//
// Each node of the tree becomes one group: the root node maps to the
// container root group and every other node to "/" + its path relative to
// the root. Nodes are written one at a time in pre-order by a group writer
// (package netcdf or zarr by default). The first write uses the caller's
// mode; later writes switch to append so they extend, rather than replace,
// the container the first write created.
//
// # NetCDF
//
//	data, err := treeio.WriteNetCDF(ctx, t, "",
//	    treeio.WithEncoding(map[string]dataset.Encoding{
//	        "/obs": {"temp": {Compression: format.CompressionZstd}},
//	    }),
//	    treeio.WithUnlimitedDims(map[string][]string{"/obs": {"time"}}),
//	)
//
// An empty path writes to memory and returns the container bytes.
//
// # Zarr
//
//	store := zarr.NewDirectoryStore("out.zarr")
//	err := treeio.WriteZarr(ctx, t, store, treeio.WithZarrMode(format.ModeWrite))
//
// Metadata is consolidated once, after every group has been written.
//
// # Errors
//
// All argument checks run before the first write, so a rejected call leaves
// the destination untouched. Such errors match errs.ErrValidation or
// errs.ErrNotImplemented. A failing group write aborts the traversal and is
// returned wrapped with the group path; groups written before it remain.
package treeio
