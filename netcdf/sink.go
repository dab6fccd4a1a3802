package netcdf

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/internal/pool"
)

// Sink is the destination of a container.
type Sink interface {
	// Name identifies the sink in error messages.
	Name() string
	// Size returns the current container size; 0 when it does not exist.
	Size() (int64, error)
	// ReadHeader fills p from the start of the container.
	ReadHeader(p []byte) error
	// Create replaces any existing content with data.
	Create(data []byte) error
	// Append adds data at the end of the existing content.
	Append(data []byte) error
}

// FileSink writes a container to a named file. Every call opens and closes
// the file itself.
type FileSink struct {
	Path string
	Perm os.FileMode
}

var _ Sink = FileSink{}

// NewFileSink creates a sink for path with 0644 permissions.
func NewFileSink(path string) FileSink {
	return FileSink{Path: path, Perm: 0o644}
}

func (s FileSink) Name() string {
	return s.Path
}

func (s FileSink) Size() (int64, error) {
	fi, err := os.Stat(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "stat %s", s.Path)
	}

	return fi.Size(), nil
}

func (s FileSink) ReadHeader(p []byte) error {
	f, err := os.Open(s.Path)
	if err != nil {
		return errors.Wrapf(err, "open %s", s.Path)
	}
	defer f.Close()

	if _, err := io.ReadFull(f, p); err != nil {
		return errors.Wrapf(err, "read header of %s", s.Path)
	}

	return nil
}

func (s FileSink) Create(data []byte) error {
	return errors.Wrapf(os.WriteFile(s.Path, data, s.perm()), "create %s", s.Path)
}

func (s FileSink) Append(data []byte) error {
	f, err := os.OpenFile(s.Path, os.O_WRONLY|os.O_APPEND, s.perm())
	if err != nil {
		return errors.Wrapf(err, "open %s for append", s.Path)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "append to %s", s.Path)
	}

	return errors.Wrapf(f.Close(), "close %s", s.Path)
}

func (s FileSink) perm() os.FileMode {
	if s.Perm == 0 {
		return 0o644
	}

	return s.Perm
}

// MemorySink holds a container in a growable in-memory buffer.
type MemorySink struct {
	buf *pool.ByteBuffer
}

var _ Sink = (*MemorySink)(nil)

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{buf: pool.NewByteBuffer(pool.RecordBufferDefaultSize)}
}

// Bytes returns a copy of the container.
func (s *MemorySink) Bytes() []byte {
	return s.buf.Clone()
}

func (s *MemorySink) Name() string {
	return "<memory>"
}

func (s *MemorySink) Size() (int64, error) {
	return int64(s.buf.Len()), nil
}

func (s *MemorySink) ReadHeader(p []byte) error {
	if _, err := s.buf.ReadAt(p, 0); err != nil {
		return errors.Wrap(err, "read header of in-memory container")
	}

	return nil
}

func (s *MemorySink) Create(data []byte) error {
	s.buf.Reset()
	_, err := s.buf.Write(data)

	return err
}

func (s *MemorySink) Append(data []byte) error {
	_, err := s.buf.Write(data)
	return err
}
