// Package checksum implements the CRC-16/CCITT-FALSE variant used to seal
// BR Code payloads.
package checksum

import (
	"fmt"

	"github.com/howeyc/crc16"
)

// Sum16 computes CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF, no reflection,
// no final XOR) over data.
func Sum16(data []byte) uint16 {
	return crc16.ChecksumCCITTFalse(data)
}

// Checksum returns Sum16 over the bytes of s as 4 uppercase hex digits.
func Checksum(s string) string {
	return Format(Sum16([]byte(s)))
}

// Format renders a 16-bit checksum the way it appears on the wire.
func Format(crc uint16) string {
	return fmt.Sprintf("%04X", crc)
}
