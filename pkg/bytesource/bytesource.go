// Package bytesource abstracts the two storage backends a model or
// dataset file can live in: a real file on disk, read with a cursor, or
// an in-memory buffer that a caller already owns.
//
// Example Usage:
//
//	src, err := bytesource.OpenFile("gesture.model")
//	if err != nil {
//		return err
//	}
//	defer src.Close()
//	buf := make([]byte, 16)
//	n, err := src.ReadElements(buf, 1)
//
// A buffer-backed Source additionally exposes RawData, letting
// pkg/codec alias sections of the model directly into the caller's
// buffer instead of copying them (see pkg/codec's mapping optimization).
package bytesource

import "errors"

// Whence mirrors io.Seeker's origin values without importing io into
// the exported surface, matching the [FIX]/struct-level vocabulary the
// rest of this module uses for the C file cursor (NFileSeek).
type Whence int

const (
	SeekStart Whence = iota
	SeekCurrent
	SeekEnd
)

// ErrClosed is returned by any operation performed on a Source after
// Close.
var ErrClosed = errors.New("bytesource: use of closed source")

// Source is the minimal cursor-based byte stream the codec and dataset
// readers need. It intentionally does not satisfy io.Reader: elements
// are read in units, and a short read at EOF is not an error — it is
// reported through the returned count, matching the original NFileRead
// contract.
type Source interface {
	// Seek repositions the cursor and returns the resulting absolute
	// offset.
	Seek(offset int64, whence Whence) (int64, error)

	// Tell returns the current absolute offset.
	Tell() (int64, error)

	// Size returns the total size of the underlying stream.
	Size() (int64, error)

	// ReadElements reads len(dst)/elemSize elements of elemSize bytes
	// each into dst, advancing the cursor by the number of bytes
	// actually read. It returns the number of whole elements read. A
	// short count at end of stream is not an error.
	ReadElements(dst []byte, elemSize int) (int, error)

	// RawData returns the full backing buffer when the source is
	// buffer-backed, or nil when it is not (e.g. a real file). Callers
	// use this to decide whether zero-copy aliasing is possible.
	RawData() []byte

	// Close releases any resources held by the source. Closing a
	// buffer-backed source is a no-op beyond marking it closed.
	Close() error
}
