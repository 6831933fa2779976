package progs

import (
	"fmt"
	"strconv"
	"strings"
)

// bytesPerLine is the number of literals per line of a rendered array.
const bytesPerLine = 16

// FormatHex renders data as C hex literals: "0x1, 0x2, 0x3," with a newline
// after every bytesPerLine values. Literals are not zero-padded.
func FormatHex(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data) * 6)
	for i, b := range data {
		if i > 0 {
			if i%bytesPerLine == 0 {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("0x")
		sb.WriteString(strconv.FormatUint(uint64(b), 16))
		sb.WriteByte(',')
	}
	return sb.String()
}

// ParseHex decodes the output of FormatHex back into bytes.
func ParseHex(s string) ([]byte, error) {
	var out []byte
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	}) {
		if !strings.HasPrefix(field, "0x") {
			return nil, fmt.Errorf("invalid literal %q", field)
		}
		v, err := strconv.ParseUint(field[2:], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid literal %q: %w", field, err)
		}
		out = append(out, byte(v))
	}
	return out, nil
}
