package codec

import (
	"encoding/binary"
	"hash/crc32"
	"log"

	"github.com/orneryd/microinfer/pkg/bytesource"
	"github.com/orneryd/microinfer/pkg/cache"
	"github.com/orneryd/microinfer/pkg/model"
)

// CheckHeader parses src's BinHeader_-shaped header, verifies it
// matches expected, and — for model.TypeModel only, mirroring the
// original CheckFileHeader's CRC-32C walk — validates the trailing
// checksum against the whole file. Dataset files carry no checksum
// trailer and skip that step. On success the cursor is left positioned
// immediately after the header, ready for the caller's own meta block.
// The returned bool reports whether the file's byte order is the
// reverse of the host's.
func CheckHeader(src bytesource.Source, expected model.FileType) (reverse bool, err error) {
	return CheckHeaderCached(src, expected, nil)
}

// CheckHeaderCached is CheckHeader with an optional validation cache:
// when src is buffer-backed, vc is non-nil, and expected is
// model.TypeModel, a previously-seen byte-for-byte-identical buffer
// skips the whole-file CRC-32C walk. File-backed sources and dataset
// files (which carry no checksum) are unaffected by vc.
func CheckHeaderCached(src bytesource.Source, expected model.FileType, vc *cache.ValidationCache) (reverse bool, err error) {
	h, err := readHeader(src)
	if err != nil {
		return false, err
	}
	if h.typ != expected {
		return false, newErr(ErrBadFileFormat, "unexpected file type", nil)
	}

	if expected == model.TypeModel {
		if err := verifyChecksumCached(src, h.reverse, vc); err != nil {
			return false, err
		}
	}

	if _, err := src.Seek(headerSize, bytesource.SeekStart); err != nil {
		return false, newErr(ErrReadFile, "seek past header", err)
	}
	return h.reverse, nil
}

func readHeader(src bytesource.Source) (header, error) {
	if _, err := src.Seek(0, bytesource.SeekStart); err != nil {
		return header{}, newErr(ErrReadFile, "seek to header", err)
	}
	buf := make([]byte, headerSize)
	n, err := src.ReadElements(buf, 1)
	if err != nil {
		return header{}, newErr(ErrReadFile, "read header", err)
	}
	if n != headerSize {
		return header{}, newErr(ErrBadFileFormat, "truncated header", nil)
	}
	if buf[0] != magic0 || buf[1] != magic1 {
		return header{}, newErr(ErrBadFileFormat, "bad magic", nil)
	}
	typ := model.FileType(buf[2])
	version := buf[3]
	bom := binary.LittleEndian.Uint16(buf[4:6])

	var reverse bool
	switch bom {
	case bomCanonical:
		reverse = false
	case bomSwapped:
		reverse = true
	default:
		return header{}, newErr(ErrBadFileFormat, "bad byte order mark", nil)
	}
	return header{typ: typ, version: version, reverse: reverse}, nil
}

// verifyChecksumCached consults vc before doing the O(file size) CRC
// walk. A cache hit on a failed prior verification still returns the
// same inconsistent-data error the walk would have produced.
func verifyChecksumCached(src bytesource.Source, reverse bool, vc *cache.ValidationCache) error {
	if vc == nil {
		return verifyChecksum(src, reverse)
	}
	raw := src.RawData()
	if raw == nil {
		return verifyChecksum(src, reverse)
	}

	key := cache.SumKey(raw)
	if verified, found := vc.Lookup(key); found {
		if !verified {
			return newErr(ErrInconsistentData, "checksum mismatch (cached)", nil)
		}
		return nil
	}

	err := verifyChecksum(src, reverse)
	vc.Remember(key, err == nil)
	return err
}

func verifyChecksum(src bytesource.Source, reverse bool) error {
	size, err := src.Size()
	if err != nil {
		return newErr(ErrReadFile, "stat for checksum", err)
	}
	total := size - crcSize
	if total < headerSize {
		return newErr(ErrBadFileFormat, "file too small for checksum trailer", nil)
	}

	if _, err := src.Seek(0, bytesource.SeekStart); err != nil {
		return newErr(ErrReadFile, "seek for checksum", err)
	}
	hsh := crc32.New(crcTable)
	buf := make([]byte, 4096)
	remaining := total
	for remaining > 0 {
		chunk := buf
		if int64(len(chunk)) > remaining {
			chunk = chunk[:remaining]
		}
		n, err := src.ReadElements(chunk, 1)
		if err != nil {
			return newErr(ErrReadFile, "read for checksum", err)
		}
		if n == 0 {
			return newErr(ErrBadFileFormat, "truncated file", nil)
		}
		hsh.Write(chunk[:n])
		remaining -= int64(n)
	}

	trailer := make([]byte, crcSize)
	n, err := src.ReadElements(trailer, 1)
	if err != nil || n != crcSize {
		return newErr(ErrReadFile, "read checksum trailer", err)
	}
	if reverse {
		reverse4(trailer)
	}
	want := binary.LittleEndian.Uint32(trailer)
	if hsh.Sum32() != want {
		log.Printf("[CODEC] ⚠️ checksum mismatch: computed=%#08x want=%#08x", hsh.Sum32(), want)
		return newErr(ErrInconsistentData, "checksum mismatch", nil)
	}
	return nil
}
