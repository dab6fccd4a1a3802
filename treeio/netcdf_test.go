package treeio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/format"
	"github.com/arloliu/datatree/netcdf"
)

func TestWriteNetCDFValidation(t *testing.T) {
	tests := []struct {
		name     string
		opts     []NetCDFOption
		wantErr  error
		category error
		contains string
	}{
		{
			name:     "format",
			opts:     []NetCDFOption{WithFormat(format.FormatNetCDF4Classic)},
			wantErr:  errs.ErrUnsupportedFormat,
			category: errs.ErrValidation,
		},
		{
			name:     "engine",
			opts:     []NetCDFOption{WithEngine(format.EngineScipy)},
			wantErr:  errs.ErrUnsupportedEngine,
			category: errs.ErrValidation,
		},
		{
			name:     "group",
			opts:     []NetCDFOption{WithGroup("/sub")},
			wantErr:  errs.ErrRootGroupOverride,
			category: errs.ErrNotImplemented,
		},
		{
			name:     "compute",
			opts:     []NetCDFOption{WithCompute(false)},
			wantErr:  errs.ErrDeferredCompute,
			category: errs.ErrNotImplemented,
		},
		{
			name: "encoding keys",
			opts: []NetCDFOption{WithEncoding(map[string]dataset.Encoding{
				"/group_c": {}, "/group_a": {}, "group_a": {},
			})},
			wantErr:  errs.ErrUnexpectedGroup,
			category: errs.ErrValidation,
			contains: "[/group_c group_a]",
		},
		{
			name:     "unlimited dims keys",
			opts:     []NetCDFOption{WithUnlimitedDims(map[string][]string{"/missing": {"x"}})},
			wantErr:  errs.ErrUnexpectedGroup,
			category: errs.ErrValidation,
			contains: "/missing",
		},
		{
			name: "first failure wins",
			opts: []NetCDFOption{
				WithGroup("/sub"),
				WithCompute(false),
				WithFormat(format.FormatNetCDF3Classic),
			},
			wantErr:  errs.ErrUnsupportedFormat,
			category: errs.ErrValidation,
		},
		{
			name: "group before compute",
			opts: []NetCDFOption{
				WithCompute(false),
				WithGroup("/sub"),
				WithEncoding(map[string]dataset.Encoding{"/nope": {}}),
			},
			wantErr:  errs.ErrRootGroupOverride,
			category: errs.ErrNotImplemented,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.nc")
			w := &recordingNetCDFWriter{}
			opts := append([]NetCDFOption{WithGroupWriter(w)}, tt.opts...)

			data, err := WriteNetCDF(context.Background(), sampleTree(t), path, opts...)
			require.ErrorIs(t, err, tt.wantErr)
			require.True(t, errors.Is(err, tt.category))
			if tt.contains != "" {
				require.Contains(t, err.Error(), tt.contains)
			}
			require.Nil(t, data)
			require.Empty(t, w.calls)

			_, statErr := os.Stat(path)
			require.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestWriteNetCDFRootGroupAliases(t *testing.T) {
	for _, group := range []string{"", "/"} {
		w := &recordingNetCDFWriter{}
		_, err := WriteNetCDF(context.Background(), sampleTree(t), "", WithGroupWriter(w), WithGroup(group))
		require.NoError(t, err)
		require.Len(t, w.calls, 4)
	}
}

func TestWriteNetCDFDelegation(t *testing.T) {
	w := &recordingNetCDFWriter{}
	encoding := map[string]dataset.Encoding{"/group_a": {"y": {Compression: format.CompressionZstd}}}
	unlimited := map[string][]string{"/": {"x"}}
	extra := map[string]any{netcdf.ExtraDefaultCompression: "lz4"}

	_, err := WriteNetCDF(context.Background(), sampleTree(t), "",
		WithGroupWriter(w),
		WithMode(format.ModeWriteExclusive),
		WithEncoding(encoding),
		WithUnlimitedDims(unlimited),
		WithExtra(extra),
	)
	require.NoError(t, err)
	require.Len(t, w.calls, 4)

	wantGroups := []string{"", "/group_a", "/group_a/nested", "/group_b"}
	wantModes := []format.Mode{format.ModeWriteExclusive, format.ModeAppend, format.ModeAppend, format.ModeAppend}
	for i, call := range w.calls {
		require.Equal(t, wantGroups[i], call.req.Group)
		require.Equal(t, wantModes[i], call.req.Mode)
		require.Equal(t, format.EngineH5NetCDF, call.req.Engine)
		require.Zero(t, call.req.Format)
		require.True(t, call.req.Compute)
		require.Equal(t, extra, call.req.Extra)
	}

	require.Equal(t, []string{"x"}, w.calls[0].req.UnlimitedDims)
	require.Nil(t, w.calls[0].req.Encoding)
	require.Equal(t, encoding["/group_a"], w.calls[1].req.Encoding)
	require.Nil(t, w.calls[1].req.UnlimitedDims)
}

func TestWriteNetCDFInheritedCoords(t *testing.T) {
	t.Run("off", func(t *testing.T) {
		w := &recordingNetCDFWriter{}
		_, err := WriteNetCDF(context.Background(), sampleTree(t), "", WithGroupWriter(w))
		require.NoError(t, err)

		require.Equal(t, []string{"x"}, w.calls[0].ds.VariableNames())
		require.Equal(t, []string{"y"}, w.calls[1].ds.VariableNames())
		require.Equal(t, []string{"z"}, w.calls[2].ds.VariableNames())
	})

	t.Run("on", func(t *testing.T) {
		w := &recordingNetCDFWriter{}
		_, err := WriteNetCDF(context.Background(), sampleTree(t), "", WithGroupWriter(w), WithInheritedCoords(true))
		require.NoError(t, err)

		require.Equal(t, []string{"x"}, w.calls[0].ds.VariableNames())
		require.Equal(t, []string{"x", "y"}, w.calls[1].ds.VariableNames())
		require.Equal(t, []string{"x", "z"}, w.calls[2].ds.VariableNames())
		require.Equal(t, []string{"x"}, w.calls[3].ds.VariableNames())
	})
}

func TestWriteNetCDFFailureAborts(t *testing.T) {
	boom := errors.New("disk full")
	w := &recordingNetCDFWriter{failOn: "/group_a/nested", failErr: boom}

	_, err := WriteNetCDF(context.Background(), sampleTree(t), "", WithGroupWriter(w))
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "/group_a/nested")
	require.Len(t, w.calls, 2)
}

func TestWriteNetCDFCancellation(t *testing.T) {
	ctx, hook := cancelAfter(t, 2)
	w := &recordingNetCDFWriter{onWrite: hook}

	_, err := WriteNetCDF(ctx, sampleTree(t), "", WithGroupWriter(w))
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, w.calls, 2)
}

func TestWriteNetCDFExample(t *testing.T) {
	tr := sampleTree(t)

	t.Run("own variables only", func(t *testing.T) {
		data, err := WriteNetCDF(context.Background(), tr, "")
		require.NoError(t, err)
		require.NotEmpty(t, data)

		f, err := netcdf.Open(data)
		require.NoError(t, err)
		require.Equal(t, format.EngineH5NetCDF, f.Engine)
		require.Equal(t, []string{"/", "/group_a", "/group_a/nested", "/group_b"}, f.Groups())

		rootDS, err := f.Dataset("/")
		require.NoError(t, err)
		require.Equal(t, []string{"x"}, rootDS.VariableNames())

		groupA, err := f.Dataset("/group_a")
		require.NoError(t, err)
		require.Equal(t, []string{"y"}, groupA.VariableNames())
	})

	t.Run("inherited coordinates", func(t *testing.T) {
		data, err := WriteNetCDF(context.Background(), tr, "", WithInheritedCoords(true))
		require.NoError(t, err)

		f, err := netcdf.Open(data)
		require.NoError(t, err)
		groupA, err := f.Dataset("/group_a")
		require.NoError(t, err)
		require.Equal(t, []string{"x", "y"}, groupA.VariableNames())
	})
}

func TestWriteNetCDFRoundTrip(t *testing.T) {
	tr := sampleTree(t)
	encoding := map[string]dataset.Encoding{
		"/group_a":        {"y": {Compression: format.CompressionS2}},
		"/group_a/nested": {"z": {Compression: format.CompressionZstd}},
	}

	data, err := WriteNetCDF(context.Background(), tr, "", WithEncoding(encoding))
	require.NoError(t, err)

	got, err := netcdf.ReadTree(data)
	require.NoError(t, err)
	require.Equal(t, tr.Groups(), got.Groups())
	for n := range tr.Subtree() {
		g, ok := got.Lookup(n.Path())
		require.True(t, ok)
		require.True(t, n.ToDataset(n.IsRoot()).Equal(g.Dataset()), n.Path())
	}
}

func TestWriteNetCDFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.nc")

	data, err := WriteNetCDF(context.Background(), sampleTree(t), path)
	require.NoError(t, err)
	require.Nil(t, data)

	f, err := netcdf.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Groups(), 4)

	t.Run("w- refuses an existing file", func(t *testing.T) {
		_, err := WriteNetCDF(context.Background(), sampleTree(t), path, WithMode(format.ModeWriteExclusive))
		require.ErrorIs(t, err, errs.ErrContainerExists)
	})

	t.Run("w replaces the file", func(t *testing.T) {
		_, err := WriteNetCDF(context.Background(), sampleTree(t), path, WithMode(format.ModeWrite))
		require.NoError(t, err)

		again, err := netcdf.OpenFile(path)
		require.NoError(t, err)
		require.NotEqual(t, f.ID, again.ID)
		require.Len(t, again.Groups(), 4)
	})
}

func TestWriteNetCDFRejectsVariableNamedLikeChild(t *testing.T) {
	tr := sampleTree(t)
	require.NoError(t, tr.Root().Dataset().AddDataVar("group_b",
		dataset.MustVariable([]string{"x"}, dataset.Int64Array{1, 2, 3})))

	w := &recordingNetCDFWriter{}
	_, err := WriteNetCDF(context.Background(), tr, "", WithGroupWriter(w))
	require.ErrorIs(t, err, errs.ErrDuplicateName)
	require.True(t, errors.Is(err, errs.ErrValidation))
	require.Empty(t, w.calls)
}
