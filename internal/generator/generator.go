package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/swd-probe/probe-tools/internal/config"
	"github.com/swd-probe/probe-tools/internal/progs"
	"github.com/swd-probe/probe-tools/internal/templates"
)

// ErrWrite is returned when an output file cannot be written.
var ErrWrite = errors.New("write error")

// TimestampLayout is the format of the "automatically created" comment.
const TimestampLayout = "2006-01-02 15:04:05"

// Options contains the settings of one code generation run.
type Options struct {
	// OutDir receives the header and source files. It is created if missing.
	OutDir string
	// Header and Source are the output file names.
	Header string
	Source string
	// EnumType, SizeFunc and CodeFunc name the generated C symbols.
	EnumType string
	SizeFunc string
	CodeFunc string
	// BuildID, if set, is stamped into both files so they can be matched.
	BuildID string
	// Now returns the generation time. Defaults to time.Now.
	Now func() time.Time
}

// OptionsFromConfig maps the embed section of the configuration to Options.
func OptionsFromConfig(cfg config.EmbedConfig) Options {
	return Options{
		OutDir:   cfg.OutDir,
		Header:   cfg.Header,
		Source:   cfg.Source,
		EnumType: cfg.EnumType,
		SizeFunc: cfg.SizeFunc,
		CodeFunc: cfg.CodeFunc,
	}
}

func (o *Options) applyDefaults() {
	e := config.Default().Embed

	if o.OutDir == "" {
		o.OutDir = e.OutDir
	}
	if o.Header == "" {
		o.Header = e.Header
	}
	if o.Source == "" {
		o.Source = e.Source
	}
	if o.EnumType == "" {
		o.EnumType = e.EnumType
	}
	if o.SizeFunc == "" {
		o.SizeFunc = e.SizeFunc
	}
	if o.CodeFunc == "" {
		o.CodeFunc = e.CodeFunc
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// templateData is shared by the header and source templates.
type templateData struct {
	Timestamp string
	BuildID   string
	Guard     string
	Header    string
	EnumType  string
	SizeFunc  string
	CodeFunc  string
	Sentinel  string
	Programs  []*progs.Program
}

// Generate writes the header and then the source file for set into
// opts.OutDir. An empty set still yields valid C.
//
// Returns:
//   - []string: the paths written, header first.
//   - error: an error matching ErrWrite if an output cannot be written.
func Generate(set *progs.Set, opts Options) ([]string, error) {
	opts.applyDefaults()

	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	data := templateData{
		Timestamp: opts.Now().Format(TimestampLayout),
		BuildID:   opts.BuildID,
		Guard:     includeGuard(opts.OutDir, opts.Header),
		Header:    opts.Header,
		EnumType:  opts.EnumType,
		SizeFunc:  opts.SizeFunc,
		CodeFunc:  opts.CodeFunc,
		Sentinel:  progs.CountSentinel,
		Programs:  set.Programs(),
	}

	outputs := []struct {
		tmpl string
		path string
	}{
		{templates.Header, filepath.Join(opts.OutDir, opts.Header)},
		{templates.Source, filepath.Join(opts.OutDir, opts.Source)},
	}

	written := make([]string, 0, len(outputs))
	for _, out := range outputs {
		if err := executeTemplate(out.tmpl, out.path, data, GetCommonFuncMap()); err != nil {
			return written, err
		}
		slog.Debug("generated file", "path", out.path, "programs", set.Len())
		fmt.Printf("Generated %s\n", out.path)
		written = append(written, out.path)
	}

	return written, nil
}
