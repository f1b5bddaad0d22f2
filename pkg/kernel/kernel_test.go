package kernel

import (
	"context"
	"math"
	"testing"

	"github.com/orneryd/microinfer/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleNeuronModel builds a minimal network with one neuron fed by
// two external inputs and no internal links, enough to exercise a
// kernel's external-link accumulation and activation path without
// going through pkg/codec.
func singleNeuronModel(q model.Quantization, forceInteger bool) *model.Model {
	m := &model.Model{
		Quantization:             q,
		NeuronsCount:             1,
		OutputsDim:               1,
		ForceIntegerCalculations: forceInteger,
		Links:                    []uint16{0, 1},
		IntLinkOffsets:           []uint32{0},
		IntLinksCounters:         []uint16{0},
		ExtLinkOffsets:           []uint32{0},
		ExtLinksCounters:         []uint16{2},
		OutputLabels:             []uint16{0},
		OutputBuffer:             make([]float32, 1),
	}
	switch q {
	case model.Q8:
		m.Payload = model.Q8Payload{
			Weights:      []int8{64, -32},
			Coeffs:       []uint8{200},
			Accumulators: make([]uint8, 1),
		}
	case model.Q16:
		m.Payload = model.Q16Payload{
			Weights:      []int16{16000, -8000},
			Coeffs:       []uint16{50000},
			Accumulators: make([]uint16, 1),
		}
	case model.Q32:
		m.Payload = model.Q32Payload{
			Weights:      []float32{0.8, -0.4},
			Coeffs:       []float32{1.0},
			Accumulators: make([]float32, 1),
		}
	}
	return m
}

func TestRunQ8ProducesValueInUnitRange(t *testing.T) {
	m := singleNeuronModel(model.Q8, false)
	err := Run(context.Background(), m, []float32{0.5, 0.25, 1}, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, m.OutputBuffer[0], float32(0))
	assert.Less(t, m.OutputBuffer[0], float32(1))
}

func TestRunQ8ForceIntegerCalculations(t *testing.T) {
	m := singleNeuronModel(model.Q8, true)
	err := Run(context.Background(), m, []float32{0.5, 0.25, 1}, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, m.OutputBuffer[0], float32(0))
	assert.Less(t, m.OutputBuffer[0], float32(1))
}

func TestRunQ16ProducesValueInUnitRange(t *testing.T) {
	m := singleNeuronModel(model.Q16, false)
	err := Run(context.Background(), m, []float32{0.5, 0.25, 1}, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, m.OutputBuffer[0], float32(0))
	assert.Less(t, m.OutputBuffer[0], float32(1))
}

func TestRunQ32MatchesDirectSigmoid(t *testing.T) {
	m := singleNeuronModel(model.Q32, false)
	inputs := []float32{0.5, 0.25, 1}
	err := Run(context.Background(), m, inputs, nil)
	require.NoError(t, err)

	summ := float64(0.8)*float64(inputs[0]) + float64(-0.4)*float64(inputs[1])
	want := 1 / (1 + math.Exp(-summ))
	assert.InDelta(t, want, float64(m.OutputBuffer[0]), 1e-6)
}

func TestRunTwoNeuronChainUsesInternalLink(t *testing.T) {
	// neuron 0: external input 0 only. neuron 1: internal link to
	// neuron 0, plus external input 1.
	m := &model.Model{
		Quantization:     model.Q32,
		NeuronsCount:     2,
		OutputsDim:       1,
		Links:            []uint16{0, 0, 1}, // [neuron1's internal=neuron0][neuron0 ext=0][neuron1 ext=1]
		IntLinkOffsets:   []uint32{0, 0},
		IntLinksCounters: []uint16{0, 1},
		ExtLinkOffsets:   []uint32{1, 2},
		ExtLinksCounters: []uint16{1, 1},
		OutputLabels:     []uint16{1},
		OutputBuffer:     make([]float32, 1),
		Payload: model.Q32Payload{
			Weights:      []float32{0.9, 0.5, -0.3},
			Coeffs:       []float32{1, 1},
			Accumulators: make([]float32, 2),
		},
	}

	err := Run(context.Background(), m, []float32{0.6, 0.2, 1}, nil)
	require.NoError(t, err)

	// Weights are indexed by link position: 0.9 is neuron 1's internal
	// link, 0.5 is neuron 0's external link, -0.3 is neuron 1's.
	neuron0 := 1 / (1 + math.Exp(-float64(0.5*0.6)))
	neuron1 := 1 / (1 + math.Exp(-(0.9*neuron0 + (-0.3 * 0.2))))
	assert.InDelta(t, neuron1, float64(m.OutputBuffer[0]), 1e-6)
}

func TestRunRejectsUnloadedModel(t *testing.T) {
	m := &model.Model{}
	err := Run(context.Background(), m, nil, nil)
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestRunBinaryClassificationEndToEnd(t *testing.T) {
	m := singleNeuronModel(model.Q32, false)
	m.TaskType = model.TaskBinaryClassification
	m.OutputsDim = 1
	require.NoError(t, Run(context.Background(), m, []float32{0.5, 0.25, 1}, nil))

	result := append([]float32(nil), m.OutputBuffer...)
	m.DenormalizeResult(result)
	assert.InDelta(t, 1.0, float64(result[0]), 1e-6, "a single-output binary classification always normalizes to 1")
}
