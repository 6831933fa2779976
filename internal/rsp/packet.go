// Package rsp frames GDB remote serial protocol packets.
//
// It only builds outgoing packets; replies are never parsed here.
package rsp

import (
	"fmt"
)

// Checksum is the modulo-256 sum of the payload bytes.
func Checksum(payload []byte) uint8 {
	var csum uint8
	for _, m := range payload {
		csum += m
	}
	return csum
}

// Frame wraps payload as $<payload>#<checksum>. Bytes that would break the
// framing ('$', '#', '}') are escaped first.
func Frame(payload []byte) []byte {
	payload = escape(payload)
	return fmt.Appendf(nil, "$%s#%02x", payload, Checksum(payload))
}

// MemoryRead builds the payload of an 'm' packet reading length bytes at addr.
func MemoryRead(addr, length uint64) []byte {
	return fmt.Appendf(nil, "m%x,%x", addr, length)
}

func escape(in []byte) []byte {
	n := 0
	for _, m := range in {
		if needsEscape(m) {
			n++
		}
	}
	if n == 0 {
		return in
	}

	out := make([]byte, 0, len(in)+n)
	for _, m := range in {
		if needsEscape(m) {
			out = append(out, 0x7d, m^0x20)
		} else {
			out = append(out, m)
		}
	}
	return out
}

func needsEscape(m byte) bool {
	return m == '$' || m == '#' || m == 0x7d
}
