package progs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcinbor85/gohex"
)

// erased is the fill value for gaps between Intel HEX segments.
const erased = 0xFF

// maxImageSize bounds the flattened image. Records for two distant regions
// (flash and SRAM, say) would otherwise be padded into hundreds of MiB.
const maxImageSize = 16 << 20

// IsIntelHex reports whether path names an Intel HEX file.
func IsIntelHex(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".ihex":
		return true
	}
	return false
}

func loadIntelHex(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(f); err != nil {
		return nil, err
	}

	segments := mem.GetDataSegments()
	if len(segments) == 0 {
		return nil, nil
	}

	start, last := segments[0].Address, segments[0].Address
	end := uint64(0)
	for _, seg := range segments {
		start = min(start, seg.Address)
		last = max(last, seg.Address)
		end = max(end, uint64(seg.Address)+uint64(len(seg.Data)))
	}
	if span := end - uint64(start); span > maxImageSize {
		return nil, fmt.Errorf("segments at 0x%08x and 0x%08x span %d bytes, limit is %d",
			start, last, span, maxImageSize)
	}
	return mem.ToBinary(start, uint32(end-uint64(start)), erased), nil
}
