//go:build noq32

package kernel

import "github.com/orneryd/microinfer/pkg/model"

// runQ32 is unavailable under the noq32 build tag.
func runQ32(m *model.Model, p model.Q32Payload, inputs []float32) error {
	return ErrUnsupportedQuantization
}
