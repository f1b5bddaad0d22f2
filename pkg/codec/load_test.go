package codec

import (
	"encoding/binary"
	"hash/crc32"
	"math"
	"testing"

	"github.com/orneryd/microinfer/pkg/bytesource"
	"github.com/orneryd/microinfer/pkg/cache"
	"github.com/orneryd/microinfer/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture describes a small, internally consistent model used to build
// test files. It deliberately mirrors the section order load.go and
// sections.go expect, so the fixture builder and the loader stay in
// sync by construction rather than by a second, parallel spec of the
// format.
type fixture struct {
	quant                model.Quantization
	task                 model.TaskKind
	oneLimitForAllInputs bool
	hasLogScale          bool
	forceInteger         bool

	inputsDim    uint16
	outputsDim   uint16
	neuronsCount uint16

	intCounts []uint16
	extCounts []uint16
	links     []uint16

	weightsI8  []int8
	weightsI16 []int16
	weightsF32 []float32

	coeffsU8  []uint8
	coeffsU16 []uint16
	coeffsF32 []float32

	outputLabels []uint16
	inputsMax    []float32
	inputsMin    []float32
	outputsMax   []float32
	outputsMin   []float32
	logOffsets   []float32
}

func defaultFixture(quant model.Quantization) fixture {
	f := fixture{
		quant:        quant,
		task:         model.TaskRegression,
		inputsDim:    3, // 2 features + bias slot
		outputsDim:   2,
		neuronsCount: 2,
		intCounts:    []uint16{0, 1},
		extCounts:    []uint16{2, 1},
		links:        []uint16{0, 0, 1, 2},
		outputLabels: []uint16{0, 1},
		inputsMax:    []float32{10, 20, 1},
		inputsMin:    []float32{0, 0, 1},
		outputsMax:   []float32{100, 50},
		outputsMin:   []float32{0, 0},
	}
	switch quant {
	case model.Q8:
		f.weightsI8 = []int8{10, -5, 7, 3}
		f.coeffsU8 = []uint8{50, 60}
	case model.Q16:
		f.weightsI16 = []int16{1000, -500, 700, 300}
		f.coeffsU16 = []uint16{5000, 6000}
	case model.Q32:
		f.weightsF32 = []float32{0.5, -0.25, 0.125, 0.75}
		f.coeffsF32 = []float32{1.5, 2.5}
	}
	return f
}

func (f fixture) weightDim() uint32 { return uint32(len(f.links)) }

func putU16(buf []byte, v uint16, reverse bool) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	if reverse {
		reverse2(b)
	}
	return append(buf, b...)
}

func putU32(buf []byte, v uint32, reverse bool) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	if reverse {
		reverse4(b)
	}
	return append(buf, b...)
}

func putF32(buf []byte, v float32, reverse bool) []byte {
	return putU32(buf, math.Float32bits(v), reverse)
}

// build serializes f into a complete, valid model file, written in
// canonical (reverse=false) or byte-swapped (reverse=true) form.
func (f fixture) build(reverse bool) []byte {
	var body []byte // everything after the 6-byte header, before the CRC trailer

	options := uint8(0)
	if f.oneLimitForAllInputs {
		options |= uint8(model.OptOneMaxMinForAllInputs)
	}
	if f.hasLogScale {
		options |= uint8(model.OptLogScaleOutExists)
	}
	if f.forceInteger {
		options |= uint8(model.OptForceIntegerCalculations)
	}

	body = append(body, options, uint8(f.task))
	body = putU16(body, f.inputsDim, reverse)
	body = putU16(body, f.outputsDim, reverse)
	body = append(body, uint8(f.quant), 0 /* reserved */)
	body = putU16(body, f.neuronsCount, reverse)
	body = putU32(body, f.weightDim(), reverse)

	// blockOff mirrors computeLayout's off: byte offset relative to the
	// start of the mappable block, i.e. right after the metaSize+4 byte
	// meta+weightDim preamble just written above. alignBy must be fed
	// this block-relative offset, not len(body) itself — len(body)
	// still carries that 14-byte preamble, which is not a multiple of
	// every align width, so using it directly skews every alignment
	// decision for Q32 (align=4).
	blockOff := func() uint32 { return uint32(len(body) - (metaSize + 4)) }

	inputLimitsCount := int(f.inputsDim)
	if f.oneLimitForAllInputs {
		inputLimitsCount = 1
	}
	for i := 0; i < inputLimitsCount; i++ {
		body = putF32(body, f.inputsMax[i], reverse)
	}
	for i := 0; i < inputLimitsCount; i++ {
		body = putF32(body, f.inputsMin[i], reverse)
	}
	for _, v := range f.outputsMax {
		body = putF32(body, v, reverse)
	}
	for _, v := range f.outputsMin {
		body = putF32(body, v, reverse)
	}
	if f.hasLogScale {
		for _, v := range f.logOffsets {
			body = putF32(body, v, reverse)
		}
	}
	for _, v := range f.outputLabels {
		body = putU16(body, v, reverse)
	}

	align := int(f.quant) / 8
	body = append(body, make([]byte, int(alignBy(uint32(align), blockOff())))...)
	for _, v := range f.intCounts {
		body = putU16(body, v, reverse)
	}
	for _, v := range f.extCounts {
		body = putU16(body, v, reverse)
	}

	body = append(body, make([]byte, int(alignBy(uint32(align), blockOff())))...)
	for _, v := range f.links {
		body = putU16(body, v, reverse)
	}
	body = append(body, make([]byte, int(alignBy(uint32(align), blockOff())))...)

	switch f.quant {
	case model.Q8:
		for _, v := range f.weightsI8 {
			body = append(body, byte(v))
		}
		body = append(body, f.coeffsU8...)
	case model.Q16:
		for _, v := range f.weightsI16 {
			body = putU16(body, uint16(v), reverse)
		}
		for _, v := range f.coeffsU16 {
			body = putU16(body, v, reverse)
		}
	case model.Q32:
		for _, v := range f.weightsF32 {
			body = putF32(body, v, reverse)
		}
		for _, v := range f.coeffsF32 {
			body = putF32(body, v, reverse)
		}
	}

	header := []byte{magic0, magic1, byte(model.TypeModel), 1}
	if reverse {
		header = putU16(header, bomCanonical, true)
	} else {
		header = putU16(header, bomCanonical, false)
	}

	full := append(header, body...)
	crc := crc32.Checksum(full, crcTable)
	full = putU32(full, crc, reverse)
	return full
}

func TestLoadCopyAndMappedAgree(t *testing.T) {
	for _, q := range []model.Quantization{model.Q8, model.Q16, model.Q32} {
		t.Run(q.String(), func(t *testing.T) {
			data := defaultFixture(q).build(false)

			copied, err := Load(bytesource.NewBufferSource(append([]byte(nil), data...)), true, nil)
			require.NoError(t, err)
			assert.False(t, copied.Mapped())

			mapped, err := Load(bytesource.NewBufferSource(append([]byte(nil), data...)), false, nil)
			require.NoError(t, err)
			assert.True(t, mapped.Mapped())

			assert.Equal(t, copied.NeuronsCount, mapped.NeuronsCount)
			assert.Equal(t, copied.Links, mapped.Links)
			assert.Equal(t, copied.OutputLabels, mapped.OutputLabels)
			assert.Equal(t, copied.IntLinkOffsets, mapped.IntLinkOffsets)
			assert.Equal(t, copied.ExtLinkOffsets, mapped.ExtLinkOffsets)
		})
	}
}

func TestLoadByteSwappedFileMatchesCanonical(t *testing.T) {
	f := defaultFixture(model.Q16)
	canonical := f.build(false)
	swapped := f.build(true)

	a, err := Load(bytesource.NewBufferSource(canonical), true, nil)
	require.NoError(t, err)
	b, err := Load(bytesource.NewBufferSource(swapped), true, nil)
	require.NoError(t, err)

	assert.Equal(t, a.InputsMax, b.InputsMax)
	assert.Equal(t, a.Links, b.Links)
	assert.Equal(t, a.Payload, b.Payload)

	// A byte-swapped source can never be mapped, even with copy=false.
	mapped, err := Load(bytesource.NewBufferSource(append([]byte(nil), swapped...)), false, nil)
	require.NoError(t, err)
	assert.False(t, mapped.Mapped())
}

func TestLoadRejectsSingleBitFlipInPayload(t *testing.T) {
	data := defaultFixture(model.Q8).build(false)
	data[len(data)-10] ^= 0x01 // flip a bit inside the weights section

	_, err := Load(bytesource.NewBufferSource(data), true, nil)
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrInconsistentData, cerr.Code)
}

func TestLoadRejectsBadMagic(t *testing.T) {
	data := defaultFixture(model.Q8).build(false)
	data[0] = 'x'
	// fix up CRC so the magic byte is the file's only defect and the
	// failure is attributable to the magic check alone.
	crc := crc32.Checksum(data[:len(data)-crcSize], crcTable)
	binary.LittleEndian.PutUint32(data[len(data)-crcSize:], crc)

	_, err := Load(bytesource.NewBufferSource(data), true, nil)
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrBadFileFormat, cerr.Code)
}

func TestLoadRejectsBadBOM(t *testing.T) {
	data := defaultFixture(model.Q8).build(false)
	data[4] = 0x00
	data[5] = 0x00
	crc := crc32.Checksum(data[:len(data)-crcSize], crcTable)
	binary.LittleEndian.PutUint32(data[len(data)-crcSize:], crc)

	_, err := Load(bytesource.NewBufferSource(data), true, nil)
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrBadFileFormat, cerr.Code)
}

func TestNormalizeRoundTripIsIdempotentAfterClamping(t *testing.T) {
	// Limits of exactly [0, 1] make normalization the identity on
	// in-range values, so only the first pass (which clamps) changes
	// anything.
	f := defaultFixture(model.Q8)
	f.inputsMax = []float32{1, 1, 1}
	f.inputsMin = []float32{0, 0, 1}
	data := f.build(false)
	m, err := Load(bytesource.NewBufferSource(data), true, nil)
	require.NoError(t, err)

	sample := []float32{5, 10, 1}
	m.NormalizeSample(sample)
	once := append([]float32(nil), sample...)
	m.NormalizeSample(sample)
	assert.Equal(t, once, sample, "normalizing an already-normalized sample must be a no-op")
}

func TestLoadBoundaryWeightCounts(t *testing.T) {
	cases := []uint32{1, 257, 65537}
	for _, w := range cases {
		t.Run("", func(t *testing.T) {
			f := defaultFixture(model.Q8)
			f.neuronsCount = 1
			f.intCounts = []uint16{0}
			f.extCounts = []uint16{uint16(w)}
			if w > 65535 {
				// extCounts is a uint16 per original on-disk format;
				// split the external link budget across extra neurons
				// so no single counter needs to exceed 65535.
				f.neuronsCount = 2
				f.intCounts = []uint16{0, 0}
				f.extCounts = []uint16{65535, uint16(w - 65535)}
				f.outputLabels = []uint16{0, 1}
			}
			links := make([]uint16, w)
			for i := range links {
				links[i] = uint16(i % int(f.inputsDim))
			}
			f.links = links
			f.weightsI8 = make([]int8, w)
			f.coeffsU8 = make([]uint8, f.neuronsCount)
			if w <= 65535 {
				f.outputLabels = []uint16{0, 0}
				f.outputsDim = 2
				f.outputsMax = []float32{1, 1}
				f.outputsMin = []float32{0, 0}
			}

			data := f.build(false)
			m, err := Load(bytesource.NewBufferSource(data), true, nil)
			require.NoError(t, err)
			assert.Equal(t, w, m.WeightDim)
			assert.Equal(t, model.OffsetWidth(w), model.OffsetWidth(m.WeightDim))
		})
	}
}

func TestLoadWithLogScaleOutputs(t *testing.T) {
	f := defaultFixture(model.Q32)
	f.hasLogScale = true
	f.logOffsets = []float32{2, math.Float32frombits(0xFFFFFFFF)}

	data := f.build(false)
	m, err := Load(bytesource.NewBufferSource(data), true, nil)
	require.NoError(t, err)

	require.True(t, m.LogScaleOutExists)
	require.Len(t, m.OutputsLogOffset, int(f.outputsDim))
	assert.Equal(t, float32(2), m.OutputsLogOffset[0])
	assert.Equal(t, uint32(0xFFFFFFFF), math.Float32bits(m.OutputsLogOffset[1]))
}

// TestLoadQ32OddOutputsDimNeedsCountsAlignment targets the regression
// case where the int/ext link-count section does not already land on a
// Q/8-byte boundary: Q32 (align=4) with an odd outputsDim puts 2 bytes
// of real padding between the output-label section and the link counts
// that a reader skipping that alignment step would misinterpret as
// count data, corrupting every section after it.
func TestLoadQ32OddOutputsDimNeedsCountsAlignment(t *testing.T) {
	f := defaultFixture(model.Q32)
	f.outputsDim = 1
	f.outputsMax = []float32{100}
	f.outputsMin = []float32{0}
	f.outputLabels = []uint16{0}

	data := f.build(false)
	m, err := Load(bytesource.NewBufferSource(data), true, nil)
	require.NoError(t, err)

	assert.Equal(t, f.intCounts, m.IntLinksCounters)
	assert.Equal(t, f.extCounts, m.ExtLinksCounters)
	assert.Equal(t, f.links, m.Links)
	if payload, ok := m.Payload.(model.Q32Payload); ok {
		assert.Equal(t, f.weightsF32, payload.Weights)
		assert.Equal(t, f.coeffsF32, payload.Coeffs)
	} else {
		t.Fatalf("expected model.Q32Payload, got %T", m.Payload)
	}
}

func TestLoadForceIntegerCalculationsFlag(t *testing.T) {
	f := defaultFixture(model.Q8)
	f.forceInteger = true
	data := f.build(false)

	m, err := Load(bytesource.NewBufferSource(data), true, nil)
	require.NoError(t, err)
	assert.True(t, m.ForceIntegerCalculations)
}

func TestLoadCachedSkipsChecksumWalkOnRepeatedBuffer(t *testing.T) {
	f := defaultFixture(model.Q8)
	data := f.build(false)
	vc := cache.NewValidationCache(4, 0)

	m1, err := LoadCached(bytesource.NewBufferSource(append([]byte(nil), data...)), true, nil, vc)
	require.NoError(t, err)
	assert.Equal(t, f.neuronsCount, m1.NeuronsCount)
	require.Equal(t, uint64(0), vc.Stats().Hits)

	m2, err := LoadCached(bytesource.NewBufferSource(append([]byte(nil), data...)), true, nil, vc)
	require.NoError(t, err)
	assert.Equal(t, m1.NeuronsCount, m2.NeuronsCount)
	assert.Equal(t, uint64(1), vc.Stats().Hits, "second load of identical bytes hits the cache")
}

func TestLoadCachedRemembersCorruptionAcrossCalls(t *testing.T) {
	f := defaultFixture(model.Q8)
	data := f.build(false)
	data[len(data)-1] ^= 0xFF // corrupt the trailing CRC byte
	vc := cache.NewValidationCache(4, 0)

	_, err := LoadCached(bytesource.NewBufferSource(append([]byte(nil), data...)), true, nil, vc)
	assert.Error(t, err)

	_, err = LoadCached(bytesource.NewBufferSource(append([]byte(nil), data...)), true, nil, vc)
	assert.Error(t, err, "a cached failed verification is still rejected on the next identical load")
}

func TestLoadIntoPreservesUserDataAcrossReload(t *testing.T) {
	f := defaultFixture(model.Q8)
	data := f.build(false)

	first, err := Load(bytesource.NewBufferSource(data), true, nil)
	require.NoError(t, err)
	first.UserData = "caller-supplied tag"

	second, err := LoadInto(first, bytesource.NewBufferSource(data), true, nil)
	require.NoError(t, err)
	assert.Equal(t, "caller-supplied tag", second.UserData)
}

func TestLoadIntoWithNilReuseBehavesLikeLoad(t *testing.T) {
	f := defaultFixture(model.Q8)
	data := f.build(false)

	m, err := LoadInto(nil, bytesource.NewBufferSource(data), true, nil)
	require.NoError(t, err)
	assert.Nil(t, m.UserData)
}
