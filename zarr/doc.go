// Package zarr writes and reads datasets as groups of a Zarr v2 store.
//
// A group at path "/a/b" lives under the key prefix "a/b/" and holds:
//
//	a/b/.zgroup          {"zarr_format": 2}
//	a/b/.zattrs          group attributes plus "coordinates"
//	a/b/<var>/.zarray    array metadata
//	a/b/<var>/.zattrs    variable attributes plus "_ARRAY_DIMENSIONS"
//	a/b/<var>/<i.j...>   C-order chunks
//
// The root group uses the empty prefix. Numeric chunks are little-endian
// ("<f8", "<i8"); string arrays are stored as objects ("|O") through the
// vlen-utf8 filter. Partial edge chunks are padded with the fill value.
//
// ConsolidateMetadata gathers every metadata document into ".zmetadata" so
// readers can load the hierarchy with a single key lookup.
package zarr
