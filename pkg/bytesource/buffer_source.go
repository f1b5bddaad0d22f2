package bytesource

import "errors"

// BufferSource is a Source backed by a caller-owned in-memory buffer.
// It is always compiled in, unlike FileSource, so a host that disables
// stdio entirely (build tag nostdio) can still load models shipped as
// embedded byte slices.
type BufferSource struct {
	buf    []byte
	pos    int64
	closed bool
}

// NewBufferSource wraps buf without copying it. Mutating buf after
// construction is the caller's responsibility to avoid; pkg/codec relies
// on this buffer staying stable for the lifetime of any mapped Model.
func NewBufferSource(buf []byte) *BufferSource {
	return &BufferSource{buf: buf}
}

func (b *BufferSource) Seek(offset int64, whence Whence) (int64, error) {
	if b.closed {
		return 0, ErrClosed
	}
	var base int64
	switch whence {
	case SeekStart:
		base = 0
	case SeekCurrent:
		base = b.pos
	case SeekEnd:
		base = int64(len(b.buf))
	default:
		return 0, errors.New("bytesource: invalid whence")
	}
	target := base + offset
	if target < 0 {
		return 0, errors.New("bytesource: negative seek position")
	}
	b.pos = target
	return b.pos, nil
}

func (b *BufferSource) Tell() (int64, error) {
	if b.closed {
		return 0, ErrClosed
	}
	return b.pos, nil
}

func (b *BufferSource) Size() (int64, error) {
	if b.closed {
		return 0, ErrClosed
	}
	return int64(len(b.buf)), nil
}

func (b *BufferSource) ReadElements(dst []byte, elemSize int) (int, error) {
	if b.closed {
		return 0, ErrClosed
	}
	if elemSize <= 0 {
		return 0, errors.New("bytesource: elemSize must be positive")
	}
	wantElems := len(dst) / elemSize
	available := int64(len(b.buf)) - b.pos
	if available < 0 {
		available = 0
	}
	availElems := int(available) / elemSize
	n := wantElems
	if availElems < n {
		n = availElems
	}
	if n <= 0 {
		return 0, nil
	}
	nBytes := n * elemSize
	copy(dst[:nBytes], b.buf[b.pos:b.pos+int64(nBytes)])
	b.pos += int64(nBytes)
	return n, nil
}

// RawData returns the full backing buffer, enabling zero-copy mapping.
func (b *BufferSource) RawData() []byte {
	if b.closed {
		return nil
	}
	return b.buf
}

func (b *BufferSource) Close() error {
	b.closed = true
	return nil
}
