// Package dataset reads the sample-vector file format used for
// harness and verification work against a loaded model — a sibling of
// pkg/codec's model format, sharing its header and error taxonomy but
// with a much simpler body: a run of raw float32 vectors bracketed by
// an end-of-data position and a trailing sample dimension.
//
// This is a collaborator, not part of the inference hot path: nothing
// in pkg/kernel depends on it.
package dataset

import (
	"encoding/binary"
	"log"
	"math"

	"github.com/orneryd/microinfer/pkg/bytesource"
	"github.com/orneryd/microinfer/pkg/codec"
	"github.com/orneryd/microinfer/pkg/model"
)

// metadataAddressSize is the width, in bytes, of a field the original
// format declares but never initializes (`const uint64_t
// metadataAddressSize;` in NOpenDataset). Its declared type fixes the
// apparent intent at 8 bytes; see DESIGN.md for the resolution of this
// format ambiguity.
const metadataAddressSize = 8

// Dataset is an open handle on a dataset file. The zero value is not
// usable; construct one with Open or OpenFile.
type Dataset struct {
	src        bytesource.Source
	reverse    bool
	endDataPos int64
	sampleDim  uint32
}

// OpenFile opens path and parses its dataset header, equivalent to the
// original NOpenDatasetEx.
func OpenFile(path string) (*Dataset, error) {
	src, err := bytesource.OpenFile(path)
	if err != nil {
		return nil, codec.NewError(codec.ErrOpenFile, "open dataset file", err)
	}
	d, err := Open(src)
	if err != nil {
		src.Close()
		return nil, err
	}
	return d, nil
}

// Open parses src's dataset header (NOpenDataset). On success the
// returned Dataset owns src and ReadSample calls will read forward
// from it; the caller must still call Close.
func Open(src bytesource.Source) (*Dataset, error) {
	if src == nil {
		return nil, codec.NewError(codec.ErrBadArgument, "nil source", nil)
	}

	reverse, err := codec.CheckHeader(src, model.TypeDataset)
	if err != nil {
		return nil, err
	}

	// CheckHeader leaves the cursor immediately after the header; that
	// position is headerSize, the base the original seeks back to
	// after locating endDataPos and sampleDim.
	headerEnd, err := src.Tell()
	if err != nil {
		return nil, codec.NewError(codec.ErrReadFile, "tell after dataset header", err)
	}

	var endPosBuf [4]byte
	if n, err := src.ReadElements(endPosBuf[:], 1); err != nil || n != 4 {
		return nil, codec.NewError(codec.ErrReadFile, "read end-of-data position", err)
	}
	if reverse {
		reverse4(endPosBuf[:])
	}
	endDataPos := int64(binary.LittleEndian.Uint32(endPosBuf[:]))

	if _, err := src.Seek(endDataPos, bytesource.SeekStart); err != nil {
		return nil, codec.NewError(codec.ErrBadFileFormat, "seek to sample dimension", err)
	}

	var dimBuf [4]byte
	if n, err := src.ReadElements(dimBuf[:], 1); err != nil || n != 4 {
		return nil, codec.NewError(codec.ErrReadFile, "read sample dimension", err)
	}
	if reverse {
		reverse4(dimBuf[:])
	}
	sampleDim := binary.LittleEndian.Uint32(dimBuf[:])

	if _, err := src.Seek(headerEnd+metadataAddressSize, bytesource.SeekStart); err != nil {
		return nil, codec.NewError(codec.ErrBadFileFormat, "seek past dataset metadata", err)
	}

	log.Printf("[DATASET] opened dataset: sampleDim=%d endDataPos=%d byteSwapped=%v", sampleDim, endDataPos, reverse)
	return &Dataset{src: src, reverse: reverse, endDataPos: endDataPos, sampleDim: sampleDim}, nil
}

// Close releases the underlying source (NCloseDataset).
func (d *Dataset) Close() error {
	if d == nil || d.src == nil {
		return nil
	}
	return d.src.Close()
}

// SampleDim is the number of feature values each raw sample carries on
// disk, not counting the bias slot ReadSample appends.
func (d *Dataset) SampleDim() uint32 {
	return d.sampleDim
}

// ReadSample reads the next sample into sample, which must have
// capacity for at least SampleDim()+1 float32s — the extra slot
// receives the bias value 1.0, mirroring NReadDatasetSample's "just in
// case" appendix. It returns 1 once a sample was read, or 0 once the
// cursor has reached the end-of-data position; reaching the end is not
// an error.
func (d *Dataset) ReadSample(sample []float32) (int, error) {
	if d == nil || d.src == nil {
		return 0, codec.NewError(codec.ErrBadArgument, "nil dataset", nil)
	}
	if uint32(len(sample)) < d.sampleDim+1 {
		return 0, codec.NewError(codec.ErrBadArgument, "sample buffer too small", nil)
	}

	pos, err := d.src.Tell()
	if err != nil {
		return 0, codec.NewError(codec.ErrReadFile, "tell before sample read", err)
	}
	if pos >= d.endDataPos {
		return 0, nil
	}

	buf := make([]byte, 4*d.sampleDim)
	n, err := d.src.ReadElements(buf, 4)
	if err != nil {
		return 0, codec.NewError(codec.ErrReadFile, "read sample", err)
	}
	if uint32(n) != d.sampleDim {
		return 0, codec.NewError(codec.ErrReadFile, "short sample read", nil)
	}

	for i := uint32(0); i < d.sampleDim; i++ {
		word := buf[i*4 : i*4+4]
		if d.reverse {
			reverse4(word)
		}
		sample[i] = math.Float32frombits(binary.LittleEndian.Uint32(word))
	}
	sample[d.sampleDim] = 1.0

	return 1, nil
}

// reverse4 reverses a 4-byte field in place, the same byte-order
// correction pkg/codec applies to its own multi-byte fields.
func reverse4(buf []byte) {
	buf[0], buf[1], buf[2], buf[3] = buf[3], buf[2], buf[1], buf[0]
}
