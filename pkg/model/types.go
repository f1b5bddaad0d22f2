package model

import "fmt"

// FileType identifies whether a binary blob is a model or a dataset.
type FileType uint8

const (
	TypeUnknown FileType = 0
	TypeDataset FileType = 1
	TypeModel   FileType = 5
)

// TaskKind is the model's output interpretation.
type TaskKind uint8

const (
	TaskMulticlassClassification TaskKind = 0
	TaskBinaryClassification     TaskKind = 1
	TaskRegression                TaskKind = 2
)

func (t TaskKind) String() string {
	switch t {
	case TaskMulticlassClassification:
		return "multiclass-classification"
	case TaskBinaryClassification:
		return "binary-classification"
	case TaskRegression:
		return "regression"
	default:
		return fmt.Sprintf("task-kind(%d)", uint8(t))
	}
}

// OptionFlag are bits within the on-disk meta block's options byte.
type OptionFlag uint8

const (
	OptOneMaxMinForAllInputs    OptionFlag = 1 << 7
	OptLogScaleOutExists        OptionFlag = 1 << 6
	OptForceIntegerCalculations OptionFlag = 1 << 5
)

// IsSet reports whether the flag is present in opts.
func (o OptionFlag) IsSet(opts uint8) bool { return opts&uint8(o) != 0 }

// Quantization is the model's numeric kernel: how weights, activation
// coefficients, and neuron accumulators are represented on disk and at
// runtime.
type Quantization uint8

const (
	Q8  Quantization = 8
	Q16 Quantization = 16
	Q32 Quantization = 32
)

func (q Quantization) String() string {
	switch q {
	case Q8:
		return "q8"
	case Q16:
		return "q16"
	case Q32:
		return "q32"
	default:
		return fmt.Sprintf("quantization(%d)", uint8(q))
	}
}

// Supported reports whether q is a recognized quantization level and
// whether the build includes the kernel that implements it. q16Enabled
// and q32Enabled let callers pass in pkg/kernel's compile-time
// availability (noq16/noq32 build tags) without pkg/model depending on
// pkg/kernel.
func (q Quantization) Supported(q16Enabled, q32Enabled bool) bool {
	switch q {
	case Q8:
		return true
	case Q16:
		return q16Enabled
	case Q32:
		return q32Enabled
	default:
		return false
	}
}

// OffsetWidth returns the element width, in bytes, the original format
// would use to represent a prefix-sum link-offset table entry for a
// model with weightCount total weights. This module always stores
// offsets as uint32 at runtime regardless of this value (see
// DESIGN.md); OffsetWidth exists so tests can assert the boundary the
// original on-disk optimization cared about.
func OffsetWidth(weightCount uint32) int {
	switch {
	case weightCount <= 256:
		return 1
	case weightCount <= 65536:
		return 2
	default:
		return 4
	}
}
