// Package model holds the loaded, in-memory representation of a
// sparse feed-forward network: the typed views pkg/codec parses out of
// a model file, and the storage arena those views are sliced from.
//
// A Model is only ever produced by pkg/codec.Load; this package's job
// is to define its shape and the two pure operations — normalization
// and denormalization — that don't depend on a particular quantization.
package model

// Storage is the sum type over where a Model's immutable payload bytes
// live: a copy this Model owns outright, or a slice borrowed from a
// buffer the caller owns and must keep alive. Expressing this as a sum
// type (rather than a boolean "mapped" flag alongside a pointer) makes
// the two cases exhaustive at compile time wherever a switch matters —
// today only Model.Mapped and tests care, but the type exists so a
// third storage strategy could be added without a silent bug at a
// forgotten if-flag site.
type Storage interface {
	mapped() bool
}

// OwnedStorage indicates the Model allocated and owns buf outright; it
// can be mutated or dropped freely.
type OwnedStorage struct{ Buf []byte }

func (OwnedStorage) mapped() bool { return false }

// MappedStorage indicates the Model's immutable sections alias a slice
// of a buffer supplied by the caller (typically a BufferSource's raw
// data). The caller must keep that buffer alive and unmodified for as
// long as the Model is in use.
type MappedStorage struct{ Buf []byte }

func (MappedStorage) mapped() bool { return true }

// Payload is the sum type over a Model's quantization-specific weight,
// activation-coefficient, and accumulator storage. Exactly one concrete
// type is populated, selected once at load time by Quantization — this
// is the "single generic dispatch at load time" the design notes call
// for in place of runtime element-width switches.
type Payload interface {
	quantization() Quantization
}

// Q8Payload holds 8-bit quantized weights and activation coefficients.
type Q8Payload struct {
	Weights      []int8
	Coeffs       []uint8
	Accumulators []uint8
}

func (Q8Payload) quantization() Quantization { return Q8 }

// Q16Payload holds 16-bit quantized weights and activation
// coefficients. Present only when built without the noq16 tag.
type Q16Payload struct {
	Weights      []int16
	Coeffs       []uint16
	Accumulators []uint16
}

func (Q16Payload) quantization() Quantization { return Q16 }

// Q32Payload holds float32 weights and activation coefficients.
// Present only when built without the noq32 tag.
type Q32Payload struct {
	Weights      []float32
	Coeffs       []float32
	Accumulators []float32
}

func (Q32Payload) quantization() Quantization { return Q32 }

// Model is the fully-loaded network: topology, quantized parameters,
// and normalization limits, ready for kernel.Run.
type Model struct {
	TaskType     TaskKind
	Quantization Quantization

	OneLimitForAllInputs     bool
	LogScaleOutExists        bool
	ForceIntegerCalculations bool

	InputsDim    uint16
	OutputsDim   uint16
	NeuronsCount uint16
	WeightDim    uint32

	// InputsMax/InputsMin have length 1 when OneLimitForAllInputs is
	// set, otherwise length InputsDim.
	InputsMax []float32
	InputsMin []float32

	OutputsMax       []float32 // len OutputsDim
	OutputsMin       []float32 // len OutputsDim
	OutputsLogOffset []float32 // len OutputsDim, nil unless LogScaleOutExists

	// OutputLabels[i] is the neuron index whose accumulator becomes
	// output i.
	OutputLabels []uint16

	IntLinksCounters []uint16 // len NeuronsCount
	ExtLinksCounters []uint16 // len NeuronsCount

	// Links holds the concatenated internal-then-external link source
	// indices for every neuron, length WeightDim.
	Links []uint16

	// IntLinkOffsets[n] / ExtLinkOffsets[n] is the index into Links
	// where neuron n's internal/external links begin. Both are always
	// represented as uint32 regardless of WeightDim (see DESIGN.md);
	// OffsetWidth reports the on-disk-format-equivalent element
	// width a boundary test should expect.
	IntLinkOffsets []uint32
	ExtLinkOffsets []uint32

	Payload Payload

	// OutputBuffer is scratch space written by kernel.Run, length
	// OutputsDim.
	OutputBuffer []float32

	cachedInputsDiff      float32
	cachedInputsDiffValid bool

	storage Storage

	// UserData is an arbitrary caller-supplied value that survives a
	// reload through codec.LoadInto, which builds a new *Model and
	// copies only UserData over from the one it replaces, mirroring the
	// original NLoadModel's preserve-then-restore of model->data.
	UserData any
}

// Mapped reports whether the Model's immutable sections alias a
// caller-owned buffer (true) or were copied into memory this Model
// owns (false).
func (m *Model) Mapped() bool {
	if m.storage == nil {
		return false
	}
	return m.storage.mapped()
}

// SetStorage is used by pkg/codec to record which arena strategy was
// used; it is not meant to be called outside the loader.
func (m *Model) SetStorage(s Storage) { m.storage = s }

// SetCachedInputsDiff records the Max-Min shortcut NormalizeSample uses
// when a single input limit pair applies to every input and the limits
// are distinct. Set by pkg/codec at load time.
func (m *Model) SetCachedInputsDiff(diff float32, valid bool) {
	m.cachedInputsDiff = diff
	m.cachedInputsDiffValid = valid
}
