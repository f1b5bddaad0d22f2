package codec

import "github.com/orneryd/microinfer/pkg/model"

// File layout constants, taken verbatim from the original BinHeader_ /
// MetaInfo_ packed structs. Byte order within each field is little
// endian; whole-file byte order is detected from the byte-order-mark
// and corrected in-place by reversing multi-byte fields (see crc.go's
// reverse2/reverse4), the approach pkg/storage/wal_atomic_test.go
// exercises for its own magic+CRC header.
const (
	magic0 = 'n'
	magic1 = 'b'

	bomCanonical = uint16(0xABCD)
	bomSwapped   = uint16(0xCDAB)

	headerSize = 6  // nb[2] + type(1) + version(1) + bom(2)
	metaSize   = 10 // options,taskType,inputsDim(2),outputsDim(2),quant,reserved,neuronsCount(2)

	crcSize = 4

	kshift2  = 2
	kshift10 = 10
)

// header is the parsed, host-endian form of BinHeader_.
type header struct {
	typ     model.FileType
	version uint8
	reverse bool // true if the file's byte order differs from host order
}

// meta is the parsed, host-endian form of MetaInfo_.
type meta struct {
	options      uint8
	taskType     model.TaskKind
	inputsDim    uint16
	outputsDim   uint16
	quantisation model.Quantization
	neuronsCount uint16
}

func (m meta) hasOneLimitForAllInputs() bool {
	return model.OptOneMaxMinForAllInputs.IsSet(m.options)
}

func (m meta) hasLogScale() bool {
	return model.OptLogScaleOutExists.IsSet(m.options)
}

func (m meta) forceIntegerCalculations() bool {
	return model.OptForceIntegerCalculations.IsSet(m.options)
}

// alignBy returns the number of padding bytes needed to advance value
// to the next multiple of align, matching AlignBy's
// `(value % align == 0) ? 0 : align - (value % align)`.
func alignBy(align, value uint32) uint32 {
	if align == 0 || value%align == 0 {
		return 0
	}
	return align - value%align
}
