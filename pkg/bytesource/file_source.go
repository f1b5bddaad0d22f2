//go:build !nostdio

package bytesource

import (
	"fmt"
	"os"

	"github.com/orneryd/microinfer/pkg/security"
)

// FileSource is a Source backed by a real file descriptor. It is
// excluded by the nostdio build tag for hosts with no filesystem (the
// same compile-time-feature-toggle idiom the teacher uses for its GPU
// backends, see pkg/gpu/cuda's build-tag stub pattern).
type FileSource struct {
	f      *os.File
	closed bool
}

// OpenFile opens path for reading. Path traversal is rejected by
// pkg/security.ValidateModelPath before the os.Open call.
func OpenFile(path string) (*FileSource, error) {
	if err := security.ValidateModelPath(path); err != nil {
		return nil, fmt.Errorf("bytesource: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bytesource: open file: %w", err)
	}
	return &FileSource{f: f}, nil
}

func (s *FileSource) Seek(offset int64, whence Whence) (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	return s.f.Seek(offset, int(whence))
}

func (s *FileSource) Tell() (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	return s.f.Seek(0, int(SeekCurrent))
}

func (s *FileSource) Size() (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	fi, err := s.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("bytesource: stat file: %w", err)
	}
	return fi.Size(), nil
}

func (s *FileSource) ReadElements(dst []byte, elemSize int) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if elemSize <= 0 {
		return 0, fmt.Errorf("bytesource: elemSize must be positive")
	}
	wantBytes := (len(dst) / elemSize) * elemSize
	n, err := s.f.Read(dst[:wantBytes])
	elems := n / elemSize
	if err != nil {
		// EOF and short reads are reported via elems, not err, to
		// match NFileRead's "short count without error" contract.
		return elems, nil
	}
	return elems, nil
}

// RawData always returns nil: a real file is never buffer-backed, so
// the loader can never take the zero-copy mapping path for it.
func (s *FileSource) RawData() []byte { return nil }

func (s *FileSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.f.Close()
}
