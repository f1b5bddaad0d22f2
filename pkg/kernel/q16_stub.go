//go:build noq16

package kernel

import "github.com/orneryd/microinfer/pkg/model"

// runQ16 is unavailable under the noq16 build tag.
func runQ16(m *model.Model, p model.Q16Payload, inputs []float32) error {
	return ErrUnsupportedQuantization
}
