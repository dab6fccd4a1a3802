package treeio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/netcdf"
	"github.com/arloliu/datatree/tree"
	"github.com/arloliu/datatree/zarr"
)

// sampleTree builds
//
//	/                 coord x, attrs
//	/group_a          data var y over x
//	/group_a/nested   data var z over t
//	/group_b          empty
func sampleTree(t *testing.T) *tree.Tree {
	t.Helper()

	root := dataset.New()
	require.NoError(t, root.AddCoord("x", dataset.MustVariable([]string{"x"}, dataset.Int64Array{10, 20, 30})))
	root.Attrs = dataset.Attrs{"title": "sample"}
	tr := tree.New(root)

	a := dataset.New()
	require.NoError(t, a.AddDataVar("y", dataset.MustVariable([]string{"x"}, dataset.Float64Array{0.5, 1.5, 2.5})))
	_, err := tr.Add("/group_a", a)
	require.NoError(t, err)

	nested := dataset.New()
	require.NoError(t, nested.AddDataVar("z", dataset.MustVariable([]string{"t"}, dataset.StringArray{"a", "b"})))
	_, err = tr.Add("/group_a/nested", nested)
	require.NoError(t, err)

	_, err = tr.Add("/group_b", nil)
	require.NoError(t, err)

	return tr
}

// event is one call seen by the recording fakes, in order.
type event struct {
	kind  string
	group string
}

type netcdfCall struct {
	ds  *dataset.Dataset
	req netcdf.WriteRequest
}

// recordingNetCDFWriter records calls and fails for group failOn.
type recordingNetCDFWriter struct {
	calls   []netcdfCall
	failOn  string
	failErr error
	onWrite func()
}

func (w *recordingNetCDFWriter) WriteGroup(ds *dataset.Dataset, _ netcdf.Sink, req netcdf.WriteRequest) error {
	if w.failErr != nil && req.Group == w.failOn {
		return w.failErr
	}
	w.calls = append(w.calls, netcdfCall{ds: ds, req: req})
	if w.onWrite != nil {
		w.onWrite()
	}

	return nil
}

type zarrCall struct {
	ds  *dataset.Dataset
	req zarr.WriteRequest
}

type recordingZarrWriter struct {
	calls   []zarrCall
	events  *[]event
	failOn  string
	failErr error
	onWrite func()
}

func (w *recordingZarrWriter) WriteGroup(ds *dataset.Dataset, _ zarr.Store, req zarr.WriteRequest) error {
	if w.failErr != nil && req.Group == w.failOn {
		return w.failErr
	}
	w.calls = append(w.calls, zarrCall{ds: ds, req: req})
	if w.events != nil {
		*w.events = append(*w.events, event{kind: "write", group: req.Group})
	}
	if w.onWrite != nil {
		w.onWrite()
	}

	return nil
}

type recordingConsolidator struct {
	events *[]event
	calls  int
}

func (c *recordingConsolidator) Consolidate(zarr.Store) error {
	c.calls++
	if c.events != nil {
		*c.events = append(*c.events, event{kind: "consolidate"})
	}

	return nil
}

// cancelAfter returns a context canceled after n calls of the returned hook.
func cancelAfter(t *testing.T, n int) (context.Context, func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	calls := 0

	return ctx, func() {
		calls++
		if calls == n {
			cancel()
		}
	}
}
