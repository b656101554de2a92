package brcode

import (
	"strings"

	"github.com/alovak/pix-donations/internal/checksum"
)

// Validate recomputes the checksum over everything but the last four
// characters and compares it with them.
func Validate(payload string) error {
	if len(payload) < len(checksumPrefix)+checksumLen {
		return &SyntaxError{Offset: len(payload), Msg: "payload shorter than its checksum field"}
	}
	body, claimed := Split(payload)
	if !strings.HasSuffix(body, checksumPrefix) {
		return &SyntaxError{Offset: len(body) - len(checksumPrefix), Msg: "checksum field " + checksumPrefix + " not found"}
	}
	if want := checksum.Checksum(body); want != claimed {
		return &InvalidChecksumError{Claimed: claimed, Expected: want}
	}
	return nil
}

// IsValid reports whether Validate accepts payload.
func IsValid(payload string) bool {
	return Validate(payload) == nil
}

// Split separates the checksummed body (ending in the checksum prefix) from
// the claimed checksum. Payloads shorter than a checksum return an empty claim.
func Split(payload string) (body, claimed string) {
	if len(payload) < checksumLen {
		return payload, ""
	}
	n := len(payload) - checksumLen
	return payload[:n], payload[n:]
}
