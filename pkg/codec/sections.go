package codec

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/orneryd/microinfer/pkg/bytesource"
	"github.com/orneryd/microinfer/pkg/model"
	"github.com/orneryd/microinfer/pkg/telemetry"
)

func aliasFloat32(raw []byte, n int) []float32 {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&raw[0])), n)
}

func aliasUint16(raw []byte, n int) []uint16 {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*uint16)(unsafe.Pointer(&raw[0])), n)
}

func aliasInt16(raw []byte, n int) []int16 {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*int16)(unsafe.Pointer(&raw[0])), n)
}

func aliasInt8(raw []byte, n int) []int8 {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*int8)(unsafe.Pointer(&raw[0])), n)
}

// mapSections aliases every immutable section of the mappable payload
// block directly into raw, starting at byte offset base. This is the
// zero-copy path: the Model ends up holding slices that reference
// memory owned by the caller (raw must outlive the Model).
func mapSections(m *model.Model, raw []byte, base int, inputLimitsCount, align, elemSize int, rec telemetry.Recorder) error {
	l := computeLayout(inputLimitsCount, int(m.OutputsDim), int(m.NeuronsCount), int(m.WeightDim), align, elemSize, m.LogScaleOutExists)
	if base+l.total > len(raw) {
		return newErr(ErrBadFileFormat, "mappable block extends past end of buffer", nil)
	}
	block := raw[base : base+l.total]

	m.InputsMax = aliasFloat32(block[l.inputsMaxOff:], inputLimitsCount)
	m.InputsMin = aliasFloat32(block[l.inputsMinOff:], inputLimitsCount)
	m.OutputsMax = aliasFloat32(block[l.outputsMaxOff:], int(m.OutputsDim))
	m.OutputsMin = aliasFloat32(block[l.outputsMinOff:], int(m.OutputsDim))
	if m.LogScaleOutExists {
		m.OutputsLogOffset = aliasFloat32(block[l.logOffOff:], int(m.OutputsDim))
	}
	m.OutputLabels = aliasUint16(block[l.labelsOff:], int(m.OutputsDim))
	m.IntLinksCounters = aliasUint16(block[l.intCountOff:], int(m.NeuronsCount))
	m.ExtLinksCounters = aliasUint16(block[l.extCountOff:], int(m.NeuronsCount))
	m.Links = aliasUint16(block[l.linksOff:], int(m.WeightDim))

	switch m.Quantization {
	case model.Q8:
		m.Payload = model.Q8Payload{
			Weights: aliasInt8(block[l.weightsOff:], int(m.WeightDim)),
			Coeffs:  block[l.coeffsOff : l.coeffsOff+l.coeffsLen],
		}
	case model.Q16:
		m.Payload = model.Q16Payload{
			Weights: aliasInt16(block[l.weightsOff:], int(m.WeightDim)),
			Coeffs:  aliasUint16(block[l.coeffsOff:], int(m.NeuronsCount)),
		}
	case model.Q32:
		m.Payload = model.Q32Payload{
			Weights: aliasFloat32(block[l.weightsOff:], int(m.WeightDim)),
			Coeffs:  aliasFloat32(block[l.coeffsOff:], int(m.NeuronsCount)),
		}
	}

	m.SetStorage(model.MappedStorage{Buf: block})
	rec.RecordAlloc(bgCtx, "mapped", 0)
	return nil
}

// readSections copies every section into a freshly allocated arena,
// applying byte-order reversal per element as it goes when reverse is
// set. Used whenever zero-copy mapping is not eligible: a real file, a
// byte-swapped buffer, or an explicit copy request.
func readSections(m *model.Model, src bytesource.Source, reverse bool, inputLimitsCount, align, elemSize int, rec telemetry.Recorder) error {
	l := computeLayout(inputLimitsCount, int(m.OutputsDim), int(m.NeuronsCount), int(m.WeightDim), align, elemSize, m.LogScaleOutExists)
	arena := make([]byte, l.total)
	n, err := src.ReadElements(arena, 1)
	if err != nil {
		return newErr(ErrReadFile, "read payload block", err)
	}
	if n != l.total {
		return newErr(ErrBadFileFormat, "truncated payload block", nil)
	}

	if reverse {
		reverse4(arena[l.inputsMaxOff : l.inputsMaxOff+l.inputsMaxLen])
		reverse4(arena[l.inputsMinOff : l.inputsMinOff+l.inputsMinLen])
		reverse4(arena[l.outputsMaxOff : l.outputsMaxOff+l.outputsMaxLen])
		reverse4(arena[l.outputsMinOff : l.outputsMinOff+l.outputsMinLen])
		if m.LogScaleOutExists {
			reverse4(arena[l.logOffOff : l.logOffOff+l.logOffLen])
		}
		reverse2(arena[l.labelsOff : l.labelsOff+l.labelsLen])
		reverse2(arena[l.intCountOff : l.intCountOff+l.intCountLen])
		reverse2(arena[l.extCountOff : l.extCountOff+l.extCountLen])
		reverse2(arena[l.linksOff : l.linksOff+l.linksLen])
		switch m.Quantization {
		case model.Q16:
			reverse2(arena[l.weightsOff : l.weightsOff+l.weightsLen])
			reverse2(arena[l.coeffsOff : l.coeffsOff+l.coeffsLen])
		case model.Q32:
			reverse4(arena[l.weightsOff : l.weightsOff+l.weightsLen])
			reverse4(arena[l.coeffsOff : l.coeffsOff+l.coeffsLen])
		}
	}

	m.InputsMax = aliasFloat32(arena[l.inputsMaxOff:], inputLimitsCount)
	m.InputsMin = aliasFloat32(arena[l.inputsMinOff:], inputLimitsCount)
	m.OutputsMax = aliasFloat32(arena[l.outputsMaxOff:], int(m.OutputsDim))
	m.OutputsMin = aliasFloat32(arena[l.outputsMinOff:], int(m.OutputsDim))
	if m.LogScaleOutExists {
		m.OutputsLogOffset = aliasFloat32(arena[l.logOffOff:], int(m.OutputsDim))
	}
	m.OutputLabels = aliasUint16(arena[l.labelsOff:], int(m.OutputsDim))
	m.IntLinksCounters = aliasUint16(arena[l.intCountOff:], int(m.NeuronsCount))
	m.ExtLinksCounters = aliasUint16(arena[l.extCountOff:], int(m.NeuronsCount))
	m.Links = aliasUint16(arena[l.linksOff:], int(m.WeightDim))

	switch m.Quantization {
	case model.Q8:
		m.Payload = model.Q8Payload{
			Weights: aliasInt8(arena[l.weightsOff:], int(m.WeightDim)),
			Coeffs:  arena[l.coeffsOff : l.coeffsOff+l.coeffsLen],
		}
	case model.Q16:
		m.Payload = model.Q16Payload{
			Weights: aliasInt16(arena[l.weightsOff:], int(m.WeightDim)),
			Coeffs:  aliasUint16(arena[l.coeffsOff:], int(m.NeuronsCount)),
		}
	case model.Q32:
		m.Payload = model.Q32Payload{
			Weights: aliasFloat32(arena[l.weightsOff:], int(m.WeightDim)),
			Coeffs:  aliasFloat32(arena[l.coeffsOff:], int(m.NeuronsCount)),
		}
	}

	m.SetStorage(model.OwnedStorage{Buf: arena})
	rec.RecordAlloc(bgCtx, "arena", int64(l.total))
	return nil
}

// le32, le16 and leFloat32 encode a value as a fresh little-endian
// []byte. Nothing in this package or its tests calls them; the
// load_test.go fixture builder uses its own putU16/putU32/putF32.
func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func leFloat32(v float32) []byte {
	return le32(math.Float32bits(v))
}
