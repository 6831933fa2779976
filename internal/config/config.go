package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file picked up from the working directory
// when --config is not given.
const DefaultPath = "probe.yaml"

// Config represents the top-level configuration structure parsed from probe.yaml.
type Config struct {
	// Embed configures the C source generator.
	Embed EmbedConfig `yaml:"embed"`
	// Smoke configures the remote protocol smoke test.
	Smoke SmokeConfig `yaml:"smoke"`
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level"`
	// Path is the log file path. Empty means stderr.
	Path string `yaml:"path"`
}

// EmbedConfig controls how target programs are turned into C sources.
type EmbedConfig struct {
	// OutDir is the directory receiving the header and source files.
	OutDir string `yaml:"out_dir"`
	// Header is the file name of the generated header.
	Header string `yaml:"header"`
	// Source is the file name of the generated C source.
	Source string `yaml:"source"`
	// EnumType is the typedef name of the program enumeration.
	EnumType string `yaml:"enum_type"`
	// SizeFunc is the name of the size accessor.
	SizeFunc string `yaml:"size_func"`
	// CodeFunc is the name of the data accessor.
	CodeFunc string `yaml:"code_func"`
	// Programs lists input images, in enumeration order.
	Programs []string `yaml:"programs"`
}

// SmokeConfig describes the target of the smoke test.
type SmokeConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// BufferSize is the maximum number of bytes read per receive.
	BufferSize int `yaml:"buffer_size"`
	// Timeout bounds the dial and every send and receive (e.g. "5s").
	// "0" disables it.
	Timeout string `yaml:"timeout"`
	// MemAddr and MemLen select the memory range requested by the
	// memory-read packet.
	MemAddr uint64 `yaml:"mem_addr"`
	MemLen  uint64 `yaml:"mem_len"`
}

var cIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Default returns a Config holding every default value.
func Default() *Config {
	cfg := &Config{
		Smoke: SmokeConfig{
			Port:       3333,
			BufferSize: 1024,
			MemAddr:    0x10000000,
			MemLen:     0x200,
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads and parses the configuration file at path on top of Default,
// so keys absent from the file keep their default and explicit zeros are
// kept as written. A missing file is not an error when optional is set.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyDefaults fills string fields left empty. Numeric fields are left
// alone so explicit zeros survive; Validate rejects the ones that are illegal.
func ApplyDefaults(config *Config) {
	e := &config.Embed
	if e.OutDir == "" {
		e.OutDir = "target_src"
	}
	if e.Header == "" {
		e.Header = "target_progs.h"
	}
	if e.Source == "" {
		e.Source = "target_progs.c"
	}
	if e.EnumType == "" {
		e.EnumType = "progs_typ"
	}
	if e.SizeFunc == "" {
		e.SizeFunc = "target_progs_get_size"
	}
	if e.CodeFunc == "" {
		e.CodeFunc = "target_progs_get_code"
	}

	s := &config.Smoke
	if s.Host == "" {
		s.Host = "127.0.0.1"
	}
	if s.Timeout == "" {
		s.Timeout = "5s"
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "warn"
	}
}

// Validate checks the configuration for errors.
func Validate(config *Config) error {
	e := config.Embed
	for name, v := range map[string]string{
		"enum_type": e.EnumType,
		"size_func": e.SizeFunc,
		"code_func": e.CodeFunc,
	} {
		if !cIdentifier.MatchString(v) {
			return fmt.Errorf("embed.%s: %q is not a valid C identifier", name, v)
		}
	}
	if e.Header == e.Source {
		return fmt.Errorf("embed: header and source must be different files (both %q)", e.Header)
	}
	if strings.ContainsAny(e.Header, `/\`) || strings.ContainsAny(e.Source, `/\`) {
		return fmt.Errorf("embed: header and source must be plain file names, use out_dir for the directory")
	}

	s := config.Smoke
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("smoke.port must be between 1 and 65535, got %d", s.Port)
	}
	if s.BufferSize < 1 {
		return fmt.Errorf("smoke.buffer_size must be positive, got %d", s.BufferSize)
	}
	if _, err := ParseTimeout(s.Timeout); err != nil {
		return fmt.Errorf("smoke.timeout: %w", err)
	}

	switch strings.ToLower(config.Logging.Level) {
	case "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("invalid logging level: %s (allowed: debug, info, warn, error)", config.Logging.Level)
	}

	return nil
}

// ParseTimeout parses a duration string. "0" means no timeout.
func ParseTimeout(s string) (time.Duration, error) {
	if s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}
