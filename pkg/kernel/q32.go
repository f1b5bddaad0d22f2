//go:build !noq32

package kernel

import (
	"math"

	"github.com/orneryd/microinfer/pkg/model"
)

// runQ32 evaluates a float32 model: double-precision accumulation, a
// classic floating-point sigmoid activation, and no input clamping —
// the float kernel trusts its caller to have already normalized
// inputs, unlike the quantized kernels which must protect their fixed-
// point range.
func runQ32(m *model.Model, p model.Q32Payload, inputs []float32) error {
	for i := range p.Accumulators {
		p.Accumulators[i] = 0
	}

	for n := 0; n < int(m.NeuronsCount); n++ {
		var summ float64

		intStart, intCount := m.IntLinkOffsets[n], m.IntLinksCounters[n]
		for idx := intStart; idx < intStart+uint32(intCount); idx++ {
			summ += float64(p.Weights[idx]) * float64(p.Accumulators[m.Links[idx]])
		}

		extStart, extCount := m.ExtLinkOffsets[n], m.ExtLinksCounters[n]
		for idx := extStart; idx < extStart+uint32(extCount); idx++ {
			summ += float64(p.Weights[idx]) * float64(inputs[m.Links[idx]])
		}

		p.Accumulators[n] = float32(1 / (1 + math.Exp(float64(-p.Coeffs[n])*summ)))
	}

	for i, label := range m.OutputLabels {
		m.OutputBuffer[i] = p.Accumulators[label]
	}
	return nil
}
