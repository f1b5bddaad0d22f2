package codec

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"unsafe"

	"github.com/orneryd/microinfer/pkg/bytesource"
	"github.com/orneryd/microinfer/pkg/cache"
	"github.com/orneryd/microinfer/pkg/model"
	"github.com/orneryd/microinfer/pkg/telemetry"
)

var bgCtx = context.Background()

// hostLittleEndian is true on every platform Go realistically targets
// today; it gates the zero-copy mapping path, which aliases raw bytes
// as typed slices and is only safe when the file's byte order already
// matches the host's.
var hostLittleEndian = func() bool {
	var x uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&x))
	return b[0] == 1
}()

// Load parses src into a new *model.Model. When copy is false and the
// source is buffer-backed with matching byte order, the model's
// immutable sections alias the source's buffer directly instead of
// being copied (model.MappedStorage) — the caller must then keep that
// buffer alive and unmodified for the model's lifetime. rec may be nil,
// in which case telemetry.Noop() is used.
func Load(src bytesource.Source, copy bool, rec telemetry.Recorder) (m *model.Model, err error) {
	return load(src, copy, rec, nil)
}

// LoadCached is Load plus a validation cache: repeated loads of
// byte-for-byte-identical buffer-backed sources skip the whole-file
// CRC-32C walk on a cache hit. vc may be nil, in which case this is
// exactly Load.
func LoadCached(src bytesource.Source, copy bool, rec telemetry.Recorder, vc *cache.ValidationCache) (m *model.Model, err error) {
	return load(src, copy, rec, vc)
}

// LoadInto re-parses src into a freshly built *model.Model, discarding
// reuse's prior arena but carrying reuse.UserData forward onto the
// result. reuse may be nil, in which case LoadInto behaves exactly like
// Load. This mirrors the original NLoadModel's reload path: it captures
// model->data, frees the old model, and restores only that field before
// parsing the new one.
func LoadInto(reuse *model.Model, src bytesource.Source, copy bool, rec telemetry.Recorder) (m *model.Model, err error) {
	m, err = load(src, copy, rec, nil)
	if err != nil {
		return nil, err
	}
	if reuse != nil {
		m.UserData = reuse.UserData
	}
	return m, nil
}

func load(src bytesource.Source, copy bool, rec telemetry.Recorder, vc *cache.ValidationCache) (m *model.Model, err error) {
	if rec == nil {
		rec = telemetry.Noop()
	}
	ctx := context.Background()
	defer func() { rec.RecordLoad(ctx, m != nil && m.Mapped(), err) }()

	reverse, err := CheckHeaderCached(src, model.TypeModel, vc)
	if err != nil {
		return nil, err
	}

	mt, weightDim, err := readMeta(src, reverse)
	if err != nil {
		return nil, err
	}

	if !mt.quantisation.Supported(q16Enabled, q32Enabled) {
		return nil, newErr(ErrFeatureNotSupported, fmt.Sprintf("quantization %s", mt.quantisation), nil)
	}
	if weightDim == 0 || mt.inputsDim == 0 || mt.outputsDim == 0 || mt.neuronsCount == 0 {
		return nil, newErr(ErrInconsistentData, "zero-valued dimension in meta block", nil)
	}

	inputLimitsCount := int(mt.inputsDim)
	if mt.hasOneLimitForAllInputs() {
		inputLimitsCount = 1
	}

	align := int(mt.quantisation) / 8
	elemSize := align // weights/coeffs/accumulators element width in bytes

	pos, err := src.Tell()
	if err != nil {
		return nil, newErr(ErrReadFile, "tell after meta block", err)
	}

	useMapper := !copy && !reverse
	var raw []byte
	if useMapper {
		raw = src.RawData()
		useMapper = useMapper && raw != nil && hostLittleEndian
	}

	m = &model.Model{
		TaskType:                 mt.taskType,
		Quantization:             mt.quantisation,
		OneLimitForAllInputs:     mt.hasOneLimitForAllInputs(),
		LogScaleOutExists:        mt.hasLogScale(),
		ForceIntegerCalculations: mt.forceIntegerCalculations(),
		InputsDim:                mt.inputsDim,
		OutputsDim:               mt.outputsDim,
		NeuronsCount:             mt.neuronsCount,
		WeightDim:                weightDim,
	}

	if useMapper {
		if err := mapSections(m, raw, int(pos), inputLimitsCount, align, elemSize, rec); err != nil {
			return nil, err
		}
	} else {
		if err := readSections(m, src, reverse, inputLimitsCount, align, elemSize, rec); err != nil {
			return nil, err
		}
	}

	if err := buildLinkOffsets(m); err != nil {
		return nil, err
	}
	if err := validateLimitsAndLabels(m); err != nil {
		return nil, err
	}
	computeCachedInputsDiff(m)
	allocateScratch(m, rec)

	log.Printf("[CODEC] loaded model: task=%s quantization=%s neurons=%d weights=%d mapped=%v",
		m.TaskType, m.Quantization, m.NeuronsCount, m.WeightDim, m.Mapped())
	return m, nil
}

func readMeta(src bytesource.Source, reverse bool) (meta, uint32, error) {
	buf := make([]byte, metaSize+4)
	n, err := src.ReadElements(buf, 1)
	if err != nil {
		return meta{}, 0, newErr(ErrReadFile, "read meta block", err)
	}
	if n != len(buf) {
		return meta{}, 0, newErr(ErrBadFileFormat, "truncated meta block", nil)
	}

	options := buf[0]
	taskType := model.TaskKind(buf[1])
	inputsDimB := buf[2:4]
	outputsDimB := buf[4:6]
	quant := buf[6]
	// buf[7] reserved
	neuronsCountB := buf[8:10]
	weightDimB := buf[10:14]

	if reverse {
		reverse2(inputsDimB)
		reverse2(outputsDimB)
		reverse2(neuronsCountB)
		reverse4(weightDimB)
	}

	mt := meta{
		options:      options,
		taskType:     taskType,
		inputsDim:    binary.LittleEndian.Uint16(inputsDimB),
		outputsDim:   binary.LittleEndian.Uint16(outputsDimB),
		quantisation: model.Quantization(quant),
		neuronsCount: binary.LittleEndian.Uint16(neuronsCountB),
	}
	weightDim := binary.LittleEndian.Uint32(weightDimB)
	return mt, weightDim, nil
}
