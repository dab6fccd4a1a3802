package encoding

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/datatree/endian"
	"github.com/arloliu/datatree/errs"
)

func TestRecordRoundTrip(t *testing.T) {
	engine := endian.GetBigEndianEngine()

	w := NewRecordWriter(engine)
	w.Text("/group_a")
	w.Uint8(3)
	w.Uint32(0xdeadbeef)
	w.Uint64(1 << 40)
	w.Uvarint(300)
	w.TextList([]string{"time", "lat"})
	w.TextList(nil)
	w.Blob([]byte{9, 8, 7})
	data := slices.Clone(w.Bytes())
	w.Finish()

	r := NewRecordReader(data, engine)
	require.Equal(t, "/group_a", r.Text())
	require.Equal(t, uint8(3), r.Uint8())
	require.Equal(t, uint32(0xdeadbeef), r.Uint32())
	require.Equal(t, uint64(1<<40), r.Uint64())
	require.Equal(t, uint64(300), r.Uvarint())
	require.Equal(t, []string{"time", "lat"}, r.TextList())
	require.Nil(t, r.TextList())
	require.Equal(t, []byte{9, 8, 7}, r.Blob())
	require.NoError(t, r.Err())
	require.Zero(t, r.Remaining())
}

func TestRecordReaderStickyError(t *testing.T) {
	w := NewRecordWriter(endian.GetLittleEndianEngine())
	w.Text("temperature")
	data := slices.Clone(w.Bytes())
	w.Finish()

	r := NewRecordReader(data[:4], endian.GetLittleEndianEngine())
	require.Empty(t, r.Text())
	require.ErrorIs(t, r.Err(), errs.ErrShortRecord)

	require.Zero(t, r.Uint64())
	require.Empty(t, r.Blob())
	require.ErrorIs(t, r.Err(), errs.ErrShortRecord)
}
