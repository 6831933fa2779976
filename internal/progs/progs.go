// Package progs loads target program images and keeps them in the order they
// were supplied, keyed by the C identifier derived from their file name.
package progs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// CountSentinel is the enumeration member appended after all programs.
// It can never be used as a program identifier.
const CountSentinel = "TARGET_PROGS_COUNT"

var (
	// ErrDuplicateIdentifier is returned when two inputs map to the same identifier.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	// ErrInvalidIdentifier is returned when a file name does not yield a C identifier.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrEmptyProgram is returned for zero-length images.
	ErrEmptyProgram = errors.New("empty program")
	// ErrRead wraps any failure reading or decoding an input file.
	ErrRead = errors.New("read error")
)

var identRe = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)

// Upper-case names the generated file already sees as macros from
// <stddef.h> and <stdint.h>, plus the identifiers C reserves for the
// implementation.
var (
	reservedRe = regexp.MustCompile(`^(_[A-Z_].*|U?INT(8|16|32|64|_LEAST(8|16|32|64)|_FAST(8|16|32|64)|PTR|MAX)_(MIN|MAX|C))$`)
	reserved   = map[string]bool{
		"NULL":           true,
		"SIZE_MAX":       true,
		"PTRDIFF_MIN":    true,
		"PTRDIFF_MAX":    true,
		"SIG_ATOMIC_MIN": true,
		"SIG_ATOMIC_MAX": true,
		"WCHAR_MIN":      true,
		"WCHAR_MAX":      true,
		"WINT_MIN":       true,
		"WINT_MAX":       true,
	}
)

// Program is one embedded target image.
type Program struct {
	// Name is the enumeration identifier, e.g. BOOT for boot.bin.
	Name string
	// Path is the file the image was loaded from.
	Path string
	// Size is the image length in bytes.
	Size int
	// Data is the raw image.
	Data []byte
}

// Identifier derives the enumeration identifier for path: the base name
// without its extension, upper-cased.
func Identifier(path string) (string, error) {
	base := filepath.Base(path)
	name := strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
	if !identRe.MatchString(name) {
		return "", fmt.Errorf("%w: %q (from %s)", ErrInvalidIdentifier, name, path)
	}
	if reserved[name] || reservedRe.MatchString(name) {
		return "", fmt.Errorf("%w: %q is reserved in C (from %s)", ErrInvalidIdentifier, name, path)
	}
	return name, nil
}

// New builds a Program from an in-memory image.
func New(path string, data []byte) (*Program, error) {
	name, err := Identifier(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyProgram, path)
	}
	return &Program{
		Name: name,
		Path: path,
		Size: len(data),
		Data: data,
	}, nil
}

// Load reads the image at path. Intel HEX files (.hex, .ihex) are flattened
// to a binary image; everything else is taken verbatim.
//
// A missing file yields an error matching fs.ErrNotExist, any other I/O or
// decode failure one matching ErrRead.
func Load(path string) (*Program, error) {
	var (
		data []byte
		err  error
	)
	if IsIntelHex(path) {
		data, err = loadIntelHex(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrRead, path, err)
	}

	p, err := New(path, data)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded program", "name", p.Name, "path", path, "size", p.Size)
	return p, nil
}

// Set is an insertion-ordered collection of programs keyed by identifier.
type Set struct {
	order []*Program
	index map[string]*Program
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{index: make(map[string]*Program)}
}

// Add appends p. Identifiers are unique; a clash is an error and the
// existing program is kept.
func (s *Set) Add(p *Program) error {
	if p.Name == CountSentinel {
		return fmt.Errorf("%w: %s is reserved (from %s)", ErrDuplicateIdentifier, p.Name, p.Path)
	}
	if prev, ok := s.index[p.Name]; ok {
		return fmt.Errorf("%w: %s (from %s and %s)", ErrDuplicateIdentifier, p.Name, prev.Path, p.Path)
	}
	s.index[p.Name] = p
	s.order = append(s.order, p)
	return nil
}

// Get returns the program named name.
func (s *Set) Get(name string) (*Program, bool) {
	p, ok := s.index[name]
	return p, ok
}

// Programs returns the programs in insertion order.
func (s *Set) Programs() []*Program {
	return s.order
}

// Len returns the number of programs.
func (s *Set) Len() int {
	return len(s.order)
}

// LoadAll loads every path in order into a new Set.
// The progress callback, if not nil, is invoked before each file is read.
func LoadAll(paths []string, progress func(path string)) (*Set, error) {
	set := NewSet()
	for _, path := range paths {
		if progress != nil {
			progress(path)
		}
		p, err := Load(path)
		if err != nil {
			return nil, err
		}
		if err := set.Add(p); err != nil {
			return nil, err
		}
	}
	return set, nil
}
