package kernel

import (
	"math"

	"github.com/orneryd/microinfer/pkg/model"
)

// runQ8 evaluates an 8-bit quantized model: int32 accumulation, Q1.8
// fixed-point activation coefficients, shift 8+KSHIFT_2-1 = 9.
func runQ8(m *model.Model, p model.Q8Payload, inputs []float32) error {
	for i := range p.Accumulators {
		p.Accumulators[i] = 0
	}

	for n := 0; n < int(m.NeuronsCount); n++ {
		var summ int32

		intStart, intCount := m.IntLinkOffsets[n], m.IntLinksCounters[n]
		for idx := intStart; idx < intStart+uint32(intCount); idx++ {
			summ += int32(p.Weights[idx]) * int32(p.Accumulators[m.Links[idx]])
		}

		extStart, extCount := m.ExtLinkOffsets[n], m.ExtLinksCounters[n]
		for idx := extStart; idx < extStart+uint32(extCount); idx++ {
			in := clampUpper32(inputs[m.Links[idx]], maxInputFloat)
			scaled := int32(math.Ldexp(float64(in), 8))
			summ += int32(p.Weights[idx]) * scaled
		}

		if m.ForceIntegerCalculations {
			shifted := (int32(p.Coeffs[n]) * summ) >> (8 + kshift2 - 1)
			p.Accumulators[n] = uint8(accurateFastSigmoidU8(-shifted))
		} else {
			qs := float64((int32(p.Coeffs[n])*summ)>>9) / float64(uint32(2)<<7)
			tmp := 1 / (1 + math.Exp(-qs))
			p.Accumulators[n] = uint8(math.Ldexp(float64(clampUpper64(tmp, maxInputFloat)), 8))
		}
	}

	for i, label := range m.OutputLabels {
		m.OutputBuffer[i] = dequantize(int32(p.Accumulators[label]), model.Q8)
	}
	return nil
}
