package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/tree"
	"github.com/arloliu/datatree/treeio"
	"github.com/arloliu/datatree/zarr"
)

func sampleTree(t *testing.T) *tree.Tree {
	t.Helper()

	root := dataset.New()
	require.NoError(t, root.AddCoord("x", dataset.MustVariable([]string{"x"}, dataset.Int64Array{1, 2})))
	root.Attrs = dataset.Attrs{"title": "demo"}
	tr := tree.New(root)

	child := dataset.New()
	require.NoError(t, child.AddDataVar("y", dataset.MustVariable([]string{"x"}, dataset.Float64Array{1, 2}).
		WithAttrs(dataset.Attrs{"units": "m"})))
	_, err := tr.Add("/child", child)
	require.NoError(t, err)
	_, err = tr.Add("/empty", nil)
	require.NoError(t, err)

	return tr
}

func TestRenderTree(t *testing.T) {
	var buf bytes.Buffer
	renderTree(&buf, sampleTree(t), true)

	out := buf.String()
	for _, want := range []string{"GROUP", "/child", "/empty", "coord", "data", "float64", "units=m", "group{title=demo}"} {
		require.Contains(t, out, want)
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.nc")
	dst := filepath.Join(dir, "out.zarr")

	data, err := treeio.WriteNetCDF(context.Background(), sampleTree(t), "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(src, data, 0o644))

	groups, err := convert(context.Background(), src, dst)
	require.NoError(t, err)
	require.Equal(t, 3, groups)

	got, err := zarr.ReadTree(zarr.NewDirectoryStore(dst))
	require.NoError(t, err)
	require.Equal(t, []string{"/", "/child", "/empty"}, got.Groups())

	_, err = convert(context.Background(), src, dst)
	require.Error(t, err)
}
