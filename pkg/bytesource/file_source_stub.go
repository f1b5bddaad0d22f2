//go:build nostdio

package bytesource

import "errors"

// ErrFileSourceUnavailable is returned by OpenFile when the module is
// built with the nostdio tag, mirroring pkg/gpu/cuda's unavailable-backend
// stub pattern for a host with no filesystem.
var ErrFileSourceUnavailable = errors.New("bytesource: file source disabled by nostdio build tag")

// FileSource is unavailable under the nostdio build tag.
type FileSource struct{}

func OpenFile(path string) (*FileSource, error) {
	return nil, ErrFileSourceUnavailable
}

func (s *FileSource) Seek(offset int64, whence Whence) (int64, error) {
	return 0, ErrFileSourceUnavailable
}
func (s *FileSource) Tell() (int64, error)      { return 0, ErrFileSourceUnavailable }
func (s *FileSource) Size() (int64, error)      { return 0, ErrFileSourceUnavailable }
func (s *FileSource) ReadElements(dst []byte, elemSize int) (int, error) {
	return 0, ErrFileSourceUnavailable
}
func (s *FileSource) RawData() []byte { return nil }
func (s *FileSource) Close() error    { return nil }
