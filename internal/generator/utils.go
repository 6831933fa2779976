package generator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/swd-probe/probe-tools/internal/templates"
)

// executeTemplate loads a template, parses it with the provided funcMap, and
// writes the result to outputPath. Nothing is written if rendering fails.
func executeTemplate(tmplName string, outputPath string, data interface{}, funcMap template.FuncMap) error {
	tmplContent, err := templates.Get(tmplName)
	if err != nil {
		return err
	}

	if funcMap == nil {
		funcMap = template.FuncMap{}
	}

	t, err := template.New(tmplName).Funcs(funcMap).Parse(tmplContent)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", tmplName, err)
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// includeGuard builds the guard macro from the output directory name and the
// header name, e.g. target_src + target_progs.h -> TARGET_SRC_TARGET_PROGS_H_.
func includeGuard(outDir, header string) string {
	name := header
	if dir := filepath.Base(filepath.Clean(outDir)); dir != "." && dir != string(filepath.Separator) {
		name = dir + "_" + header
	}

	var sb strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	sb.WriteByte('_')

	guard := sb.String()
	if guard[0] >= '0' && guard[0] <= '9' {
		guard = "_" + guard
	}
	return guard
}
