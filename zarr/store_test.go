package zarr

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/datatree/errs"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()

	return map[string]Store{
		"memory":    NewMemoryStore(),
		"directory": NewDirectoryStore(filepath.Join(t.TempDir(), "store.zarr")),
	}
}

func TestStoreContract(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			keys, err := store.List("")
			require.NoError(t, err)
			require.Empty(t, keys)

			_, err = store.Get("missing")
			require.ErrorIs(t, err, errs.ErrKeyNotFound)

			require.NoError(t, store.Set(".zgroup", []byte(`{"zarr_format":2}`)))
			require.NoError(t, store.Set("a/b/.zgroup", []byte("b")))
			require.NoError(t, store.Set("a/.zgroup", []byte("a")))
			require.NoError(t, store.Set("ab/.zgroup", []byte("ab")))

			got, err := store.Get("a/b/.zgroup")
			require.NoError(t, err)
			require.Equal(t, []byte("b"), got)

			keys, err = store.List("a/")
			require.NoError(t, err)
			require.Equal(t, []string{"a/.zgroup", "a/b/.zgroup"}, keys)

			require.NoError(t, deletePrefix(store, "a/"))
			require.NoError(t, store.Delete("never-written"))

			keys, err = store.List("")
			require.NoError(t, err)
			require.Equal(t, []string{".zgroup", "ab/.zgroup"}, keys)
		})
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	store := NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, store.Set("k", value))
	value[0] = 'x'

	got, err := store.Get("k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), got)
	got[0] = 'y'

	again, err := store.Get("k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again)
	require.Equal(t, 1, store.Len())
}
