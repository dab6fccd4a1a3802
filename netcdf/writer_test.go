package netcdf

import (
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/endian"
	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/format"
)

func sampleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()

	ds := dataset.New()
	require.NoError(t, ds.AddCoord("time", dataset.MustVariable([]string{"time"}, dataset.Int64Array{0, 60, 120})))
	require.NoError(t, ds.AddCoord("station", dataset.MustVariable([]string{"station"}, dataset.StringArray{"north", "south"})))
	require.NoError(t, ds.AddDataVar("temp", dataset.MustVariable(
		[]string{"time", "station"},
		dataset.Float64Array{1.5, 2.5, 3.5, 4.5, 5.5, 6.5},
		3, 2,
	).WithAttrs(dataset.Attrs{"units": "degC"})))
	ds.Attrs = dataset.Attrs{"title": "surface"}

	return ds
}

func writeRequest(group string, mode format.Mode) WriteRequest {
	return WriteRequest{Group: group, Mode: mode, Compute: true}
}

func TestWriteGroupRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		order endian.EndianEngine
		enc   dataset.Encoding
		extra map[string]any
	}{
		{name: "little endian", order: endian.GetLittleEndianEngine()},
		{name: "big endian", order: endian.GetBigEndianEngine()},
		{
			name:  "per variable compression",
			order: endian.GetLittleEndianEngine(),
			enc: dataset.Encoding{
				"temp":    {Compression: format.CompressionZstd},
				"station": {Compression: format.CompressionLZ4},
			},
		},
		{
			name:  "default compression",
			order: endian.GetLittleEndianEngine(),
			extra: map[string]any{ExtraDefaultCompression: "s2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWriter(WithByteOrder(tt.order))
			require.NoError(t, err)

			ds := sampleDataset(t)
			sink := NewMemorySink()
			req := writeRequest("", format.ModeWrite)
			req.Encoding = tt.enc
			req.Extra = tt.extra
			require.NoError(t, w.WriteGroup(ds, sink, req))

			f, err := Open(sink.Bytes())
			require.NoError(t, err)
			require.Equal(t, format.FormatNetCDF4, f.Format)
			require.Equal(t, format.EngineNetCDF4, f.Engine)
			require.Equal(t, endian.Tag(tt.order), endian.Tag(f.ByteOrder()))
			require.Equal(t, []string{"/"}, f.Groups())

			got, err := f.Dataset("")
			require.NoError(t, err)
			require.True(t, ds.Equal(got))
		})
	}
}

func TestWriteGroupModes(t *testing.T) {
	w, err := NewWriter()
	require.NoError(t, err)

	t.Run("w overwrites", func(t *testing.T) {
		sink := NewMemorySink()
		require.NoError(t, w.WriteGroup(sampleDataset(t), sink, writeRequest("", format.ModeWrite)))
		first := sink.Bytes()
		require.NoError(t, w.WriteGroup(sampleDataset(t), sink, writeRequest("", format.ModeWrite)))
		require.Len(t, sink.Bytes(), len(first))
	})

	t.Run("w- fails on existing container", func(t *testing.T) {
		sink := NewMemorySink()
		require.NoError(t, w.WriteGroup(sampleDataset(t), sink, writeRequest("", format.ModeWriteExclusive)))
		before := sink.Bytes()

		err := w.WriteGroup(sampleDataset(t), sink, writeRequest("", format.ModeWriteExclusive))
		require.ErrorIs(t, err, errs.ErrContainerExists)
		require.Equal(t, before, sink.Bytes())
	})

	t.Run("a creates then appends groups", func(t *testing.T) {
		sink := NewMemorySink()
		require.NoError(t, w.WriteGroup(sampleDataset(t), sink, writeRequest("", format.ModeAppend)))
		require.NoError(t, w.WriteGroup(sampleDataset(t), sink, writeRequest("/child", format.ModeAppend)))

		f, err := Open(sink.Bytes())
		require.NoError(t, err)
		require.Equal(t, []string{"/", "/child"}, f.Groups())
	})

	t.Run("a keeps the container byte order", func(t *testing.T) {
		big, err := NewWriter(WithByteOrder(endian.GetBigEndianEngine()))
		require.NoError(t, err)

		sink := NewMemorySink()
		require.NoError(t, big.WriteGroup(sampleDataset(t), sink, writeRequest("", format.ModeWrite)))
		require.NoError(t, w.WriteGroup(sampleDataset(t), sink, writeRequest("/child", format.ModeAppend)))

		f, err := Open(sink.Bytes())
		require.NoError(t, err)
		require.Equal(t, endian.TagBigEndian, endian.Tag(f.ByteOrder()))

		got, err := f.Dataset("/child")
		require.NoError(t, err)
		require.True(t, sampleDataset(t).Equal(got))
	})

	t.Run("a rejects foreign data", func(t *testing.T) {
		sink := NewMemorySink()
		require.NoError(t, sink.Create([]byte("this is not a datatree container")))

		err := w.WriteGroup(sampleDataset(t), sink, writeRequest("", format.ModeAppend))
		require.ErrorIs(t, err, errs.ErrInvalidMagic)
	})
}

func TestWriteGroupMergesRecords(t *testing.T) {
	w, err := NewWriter()
	require.NoError(t, err)

	sink := NewMemorySink()
	require.NoError(t, w.WriteGroup(sampleDataset(t), sink, writeRequest("/g", format.ModeWrite)))

	update := dataset.New()
	require.NoError(t, update.AddDataVar("temp", dataset.MustVariable([]string{"time"}, dataset.Float64Array{9, 9, 9})))
	require.NoError(t, update.AddDataVar("pressure", dataset.MustVariable([]string{"time"}, dataset.Float64Array{1, 2, 3})))
	update.Attrs = dataset.Attrs{"history": "updated"}
	req := writeRequest("/g", format.ModeAppend)
	req.UnlimitedDims = []string{"time"}
	require.NoError(t, w.WriteGroup(update, sink, req))

	f, err := Open(sink.Bytes())
	require.NoError(t, err)
	require.Equal(t, []string{"/g"}, f.Groups())
	require.Equal(t, []string{"time"}, f.UnlimitedDims("/g"))

	got, err := f.Dataset("/g")
	require.NoError(t, err)
	require.Equal(t, dataset.Attrs{"title": "surface", "history": "updated"}, got.Attrs)
	require.Equal(t, []string{"station", "time", "pressure", "temp"}, got.VariableNames())

	temp, isCoord, ok := got.Variable("temp")
	require.True(t, ok)
	require.False(t, isCoord)
	require.Equal(t, dataset.Float64Array{9, 9, 9}, temp.Data)
}

func TestWriteGroupValidation(t *testing.T) {
	w, err := NewWriter()
	require.NoError(t, err)

	tests := []struct {
		name     string
		mutate   func(*WriteRequest)
		wantErr  error
		category error
	}{
		{
			name:     "deferred compute",
			mutate:   func(r *WriteRequest) { r.Compute = false },
			wantErr:  errs.ErrDeferredCompute,
			category: errs.ErrNotImplemented,
		},
		{
			name:     "mode a-",
			mutate:   func(r *WriteRequest) { r.Mode = format.ModeAppendNew },
			wantErr:  errs.ErrInvalidMode,
			category: errs.ErrValidation,
		},
		{
			name: "group in classic format",
			mutate: func(r *WriteRequest) {
				r.Group = "/child"
				r.Format = format.FormatNetCDF4Classic
			},
			wantErr:  errs.ErrUnsupportedFormat,
			category: errs.ErrValidation,
		},
		{
			name:     "scipy cannot write netcdf4",
			mutate:   func(r *WriteRequest) { r.Engine = format.EngineScipy },
			wantErr:  errs.ErrUnsupportedEngine,
			category: errs.ErrValidation,
		},
		{
			name:     "unknown encoding variable",
			mutate:   func(r *WriteRequest) { r.Encoding = dataset.Encoding{"humidity": {}} },
			wantErr:  errs.ErrUnknownVariable,
			category: errs.ErrValidation,
		},
		{
			name:     "unknown unlimited dim",
			mutate:   func(r *WriteRequest) { r.UnlimitedDims = []string{"depth"} },
			wantErr:  errs.ErrUnknownDimension,
			category: errs.ErrValidation,
		},
		{
			name:     "unknown extra",
			mutate:   func(r *WriteRequest) { r.Extra = map[string]any{"invalid_netcdf": true} },
			wantErr:  errs.ErrUnknownOption,
			category: errs.ErrValidation,
		},
		{
			name:     "bad default compression",
			mutate:   func(r *WriteRequest) { r.Extra = map[string]any{ExtraDefaultCompression: "brotli"} },
			wantErr:  errs.ErrUnknownOption,
			category: errs.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.nc")
			sink := NewFileSink(path)
			req := writeRequest("", format.ModeWrite)
			tt.mutate(&req)

			err := w.WriteGroup(sampleDataset(t), sink, req)
			require.ErrorIs(t, err, tt.wantErr)
			require.True(t, errors.Is(err, tt.category))

			size, err := sink.Size()
			require.NoError(t, err)
			require.Zero(t, size)
		})
	}
}

func TestFileSink(t *testing.T) {
	w, err := NewWriter()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.nc")
	sink := NewFileSink(path)
	require.NoError(t, w.WriteGroup(sampleDataset(t), sink, writeRequest("", format.ModeAppend)))
	require.NoError(t, w.WriteGroup(sampleDataset(t), sink, writeRequest("/a/b", format.ModeAppend)))

	f, err := OpenFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"/", "/a/b"}, f.Groups())
}

func TestNewWriterRejectsNilOrder(t *testing.T) {
	_, err := NewWriter(WithByteOrder(nil))
	require.ErrorIs(t, err, errs.ErrInvalidOption)
}
