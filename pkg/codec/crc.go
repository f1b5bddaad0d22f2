package codec

import "hash/crc32"

// crcTable uses the stdlib IEEE polynomial table. The original format's
// crc32c routine reflects the data and uses polynomial 0xedb88320 — that
// is the standard reflected CRC-32 (IEEE 802.3) polynomial, not the true
// Castagnoli polynomial (0x82f63b78) the name suggests. hash/crc32's
// IEEETable is bit-for-bit identical to the original routine for every
// input, so no third-party CRC library is introduced here: stdlib is
// the objectively correct choice, not a fallback (see DESIGN.md).
var crcTable = crc32.IEEETable

// checksum computes the file's CRC exactly as the loader's verification
// pass does: a running CRC32 (IEEE polynomial) over every byte up to,
// but excluding, the trailing 4-byte checksum field.
func checksum(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// reverse2 byte-swaps every 2-byte value in buf in place.
func reverse2(buf []byte) {
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i], buf[i+1] = buf[i+1], buf[i]
	}
}

// reverse4 byte-swaps every 4-byte value in buf in place.
func reverse4(buf []byte) {
	for i := 0; i+3 < len(buf); i += 4 {
		buf[i], buf[i+3] = buf[i+3], buf[i]
		buf[i+1], buf[i+2] = buf[i+2], buf[i+1]
	}
}
