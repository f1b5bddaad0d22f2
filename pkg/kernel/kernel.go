// Package kernel implements the three quantized inference kernels
// (Q8, Q16, Q32) that evaluate a loaded model.Model against a
// normalized input vector. Run dispatches on the model's Quantization
// at call time, choosing between the three kernel implementations
// compiled in — this is the "single generic dispatch at load time"
// design note applied at call time since the quantization itself is a
// per-model runtime value, not something the build can fix in advance.
package kernel

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/orneryd/microinfer/pkg/model"
	"github.com/orneryd/microinfer/pkg/telemetry"
)

// ErrUnsupportedQuantization is returned when a model's Payload does
// not match any compiled-in kernel, e.g. a Q16 model loaded into a
// binary built with the noq16 tag.
var ErrUnsupportedQuantization = errors.New("kernel: unsupported or disabled quantization")

// ErrModelNotLoaded is returned when Run is called on a zero-value or
// partially constructed Model.
var ErrModelNotLoaded = errors.New("kernel: model has no payload")

const (
	kshift2  = 2
	kshift10 = 10
)

// maxInputFloat is MAX_INPUT_FLOAT from the original fixed-point
// kernels: a cap just below 1.0, so that scaling a value by 2^Q yields
// at most 2^Q - 1 and fits the Q-bit accumulator. NormalizeSample clamps to the full
// [0, 1] range; this tighter cap applies only here, at the point each
// kernel converts a normalized input into its fixed-point form.
const maxInputFloat = 0.9999999

// Run evaluates model m against inputs (already normalized by
// model.Model.NormalizeSample) and writes denormalized-ready results
// into m.OutputBuffer. rec may be nil, in which case telemetry.Noop()
// is used.
func Run(ctx context.Context, m *model.Model, inputs []float32, rec telemetry.Recorder) error {
	if rec == nil {
		rec = telemetry.Noop()
	}
	if m.Payload == nil {
		return ErrModelNotLoaded
	}

	start := time.Now()
	var err error
	switch p := m.Payload.(type) {
	case model.Q8Payload:
		err = runQ8(m, p, inputs)
	case model.Q16Payload:
		err = runQ16(m, p, inputs)
	case model.Q32Payload:
		err = runQ32(m, p, inputs)
	default:
		log.Printf("[KERNEL] ⚠️ unsupported payload type %T for quantization %s", m.Payload, m.Quantization)
		err = ErrUnsupportedQuantization
	}
	rec.RecordInference(ctx, m.Quantization.String(), int(m.NeuronsCount), time.Since(start))
	return err
}

func clampUpper32(x, max float32) float32 {
	if x > max {
		return max
	}
	return x
}

func clampUpper64(x, max float64) float64 {
	if x > max {
		return max
	}
	return x
}

func dequantize(value int32, quantisation model.Quantization) float32 {
	return float32(value) / float32(uint32(2)<<(uint8(quantisation)-1))
}
