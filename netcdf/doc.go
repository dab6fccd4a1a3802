// Package netcdf writes and reads datasets as groups of a self-describing,
// netCDF-family container.
//
// # Container Layout
//
// A container is a fixed 32-byte header followed by group records:
//
//	offset  size  field
//	0       4     magic "DTNC"
//	4       1     layout version
//	5       1     byte order tag (see package endian)
//	6       1     file format (format.FileFormat)
//	7       1     engine that created the container (format.Engine)
//	8       16    container UUID
//	24      8     reserved
//
// Each record is framed as
//
//	[uint32 body length][body][uint64 xxHash64 of body]
//
// and the body holds one group's path, attributes, dimensions and variables.
// Variable payloads are raw little- or big-endian numbers (per the header) or
// vlen-utf8 strings, optionally compressed with a codec from package compress.
//
// Records are only ever appended. Writing the same group again merges over
// the earlier record: attributes are updated key by key and variables are
// replaced by name.
//
// # Writing
//
// Writer.WriteGroup encodes one dataset into one group. The Sink decides
// where bytes go: FileSink for a named file, MemorySink for an in-memory
// pool.ByteBuffer. Sinks acquire and release any OS handle inside each call.
//
// # Reading
//
//	f, err := netcdf.Open(data)
//	ds, err := f.Dataset("/group_a")
//	t, err := f.Tree()
package netcdf
