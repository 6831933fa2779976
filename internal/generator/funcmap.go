package generator

import (
	"text/template"

	"github.com/swd-probe/probe-tools/internal/progs"
)

// GetCommonFuncMap returns the template functions shared by the header and
// source templates.
func GetCommonFuncMap() template.FuncMap {
	return template.FuncMap{
		// Byte array initializer
		"hex": progs.FormatHex,
	}
}
