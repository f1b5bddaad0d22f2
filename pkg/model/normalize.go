package model

import "math"

// NormalizeSample scales sample's feature values into [0, 1] in place
// using the model's per-input (or shared) limits, leaving the last
// slot — the bias term appended by the dataset reader — untouched.
// len(sample) must be >= int(m.InputsDim).
func (m *Model) NormalizeSample(sample []float32) {
	for i := 0; i < int(m.InputsDim)-1; i++ {
		var lo, hi float32
		if m.OneLimitForAllInputs {
			lo, hi = m.InputsMin[0], m.InputsMax[0]
		} else {
			lo, hi = m.InputsMin[i], m.InputsMax[i]
		}

		var normalized float32
		if m.OneLimitForAllInputs && m.cachedInputsDiffValid {
			normalized = (sample[i] - lo) / m.cachedInputsDiff
		} else if hi != lo {
			normalized = (sample[i] - lo) / (hi - lo)
		} else {
			normalized = sample[i]
		}

		if normalized < 0 {
			normalized = 0
		} else if normalized > 1 {
			normalized = 1
		}
		sample[i] = normalized
	}
}

// DenormalizeResult converts the kernel's raw output buffer back into
// the model's native output scale, in place.
//
// For binary classification, outputs are normalized to sum to one by
// dividing every element by the sum of all elements. If that sum is
// zero, every element becomes NaN or Inf — this is the original
// behavior and is preserved deliberately (see spec design notes' open
// question on this exact case): a model that produces an all-zero
// output vector has already failed in a way no denormalization step
// can paper over, and signaling that loudly via NaN is more useful
// than silently returning zero.
func (m *Model) DenormalizeResult(result []float32) {
	if m.TaskType == TaskBinaryClassification {
		var sum float32
		for _, v := range result {
			sum += v
		}
		for i := range result {
			result[i] /= sum
		}
		return
	}

	for i := range result {
		result[i] = result[i]*(m.OutputsMax[i]-m.OutputsMin[i]) + m.OutputsMin[i]
		if m.LogScaleOutExists && m.OutputsLogOffset != nil {
			offsetBits := math.Float32bits(m.OutputsLogOffset[i])
			if offsetBits != 0xFFFFFFFF {
				result[i] = float32(math.Exp(float64(result[i]))) - m.OutputsLogOffset[i]
			}
		}
	}
}
