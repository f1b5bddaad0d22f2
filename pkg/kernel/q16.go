//go:build !noq16

package kernel

import (
	"math"

	"github.com/orneryd/microinfer/pkg/model"
)

// runQ16 evaluates a 16-bit quantized model: int64 accumulation,
// Q1.16 fixed-point activation coefficients, shift 16+KSHIFT_10-1 = 25.
func runQ16(m *model.Model, p model.Q16Payload, inputs []float32) error {
	for i := range p.Accumulators {
		p.Accumulators[i] = 0
	}

	for n := 0; n < int(m.NeuronsCount); n++ {
		var summ int64

		intStart, intCount := m.IntLinkOffsets[n], m.IntLinksCounters[n]
		for idx := intStart; idx < intStart+uint32(intCount); idx++ {
			summ += int64(p.Weights[idx]) * int64(p.Accumulators[m.Links[idx]])
		}

		extStart, extCount := m.ExtLinkOffsets[n], m.ExtLinksCounters[n]
		for idx := extStart; idx < extStart+uint32(extCount); idx++ {
			in := clampUpper32(inputs[m.Links[idx]], maxInputFloat)
			scaled := int64(math.Ldexp(float64(in), 16))
			summ += int64(p.Weights[idx]) * scaled
		}

		if m.ForceIntegerCalculations {
			shifted := (int64(p.Coeffs[n]) * summ) >> (16 + kshift10 - 1)
			p.Accumulators[n] = uint16(accurateFastSigmoidU16(-shifted))
		} else {
			qs := float64((int64(p.Coeffs[n])*summ)>>25) / float64(uint64(2)<<15)
			tmp := 1 / (1 + math.Exp(-qs))
			p.Accumulators[n] = uint16(math.Ldexp(float64(clampUpper64(tmp, maxInputFloat)), 16))
		}
	}

	for i, label := range m.OutputLabels {
		m.OutputBuffer[i] = dequantize(int32(p.Accumulators[label]), model.Q16)
	}
	return nil
}
