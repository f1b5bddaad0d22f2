package codec

import (
	"github.com/orneryd/microinfer/pkg/model"
	"github.com/orneryd/microinfer/pkg/telemetry"
)

// buildLinkOffsets derives the prefix-sum link-offset tables from the
// on-disk internal/external link counters. These tables are never
// stored on disk — they are scratch, rebuilt on every load, exactly as
// the original's intLinks/extLinks Pointer arrays were.
func buildLinkOffsets(m *model.Model) error {
	n := int(m.NeuronsCount)
	m.IntLinkOffsets = make([]uint32, n)
	m.ExtLinkOffsets = make([]uint32, n)

	var running uint32
	for i := 0; i < n; i++ {
		m.IntLinkOffsets[i] = running
		running += uint32(m.IntLinksCounters[i])
	}
	for i := 0; i < n; i++ {
		m.ExtLinkOffsets[i] = running
		running += uint32(m.ExtLinksCounters[i])
	}

	if running != m.WeightDim {
		return newErr(ErrInconsistentData, "link counters do not sum to weight count", nil)
	}
	return nil
}

func validateLimitsAndLabels(m *model.Model) error {
	for _, lbl := range m.OutputLabels {
		if uint16(lbl) >= m.NeuronsCount {
			return newErr(ErrInconsistentData, "output label references nonexistent neuron", nil)
		}
	}
	for i := range m.OutputsMax {
		if m.OutputsMin[i] > m.OutputsMax[i] {
			return newErr(ErrInconsistentData, "output min exceeds output max", nil)
		}
	}
	for i := range m.InputsMax {
		if m.InputsMin[i] > m.InputsMax[i] {
			return newErr(ErrInconsistentData, "input min exceeds input max", nil)
		}
	}
	return nil
}

func computeCachedInputsDiff(m *model.Model) {
	if m.OneLimitForAllInputs && m.InputsMax[0] != m.InputsMin[0] {
		m.SetCachedInputsDiff(m.InputsMax[0]-m.InputsMin[0], true)
	}
}

// allocateScratch allocates the always-owned runtime scratch buffers:
// the output buffer and the per-neuron accumulator array of whichever
// Q8/Q16/Q32 payload was loaded.
// These never come from the mapped arena, matching the original's
// split between the mappable block and the scratch allocation that
// follows it.
func allocateScratch(m *model.Model, rec telemetry.Recorder) {
	m.OutputBuffer = make([]float32, m.OutputsDim)

	switch p := m.Payload.(type) {
	case model.Q8Payload:
		p.Accumulators = make([]uint8, m.NeuronsCount)
		m.Payload = p
	case model.Q16Payload:
		p.Accumulators = make([]uint16, m.NeuronsCount)
		m.Payload = p
	case model.Q32Payload:
		p.Accumulators = make([]float32, m.NeuronsCount)
		m.Payload = p
	}

	rec.RecordAlloc(bgCtx, "scratch", int64(m.OutputsDim)*4+int64(m.NeuronsCount)*int64(m.Quantization)/8)
}
