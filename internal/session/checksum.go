package session

import (
	"strconv"
	"unicode/utf16"
)

// IntegrityHash computes the rolling integrity hash of s: a signed 32-bit
// accumulator updated as acc = acc*31 + unit over the UTF-16 code units of
// s, with two's-complement wraparound at every step, rendered as lowercase
// hexadecimal. The result is negative (leading '-') when the accumulator
// ends up negative; the sign is part of the persisted format.
func IntegrityHash(s string) string {
	var acc int32
	for _, unit := range utf16.Encode([]rune(s)) {
		acc = acc*31 + int32(unit)
	}
	return strconv.FormatInt(int64(acc), 16)
}
