// Package config handles golden.toml runtime configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"golden/pkg/vm"
)

// FileName is the name of the configuration file searched next to images
const FileName = "golden.toml"

var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents a golden.toml file.
type Config struct {
	Runtime     Runtime     `toml:"runtime"`
	Limits      Limits      `toml:"limits"`
	Diagnostics Diagnostics `toml:"diagnostics"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// Runtime overrides parts of the image's presentation section.
type Runtime struct {
	Renderer string `toml:"renderer"`  // empty keeps the image's renderer
	FPS      int    `toml:"fps"`       // 0 keeps the image's rate
	MaxSteps int    `toml:"max_steps"` // 0 = unlimited
	Debug    bool   `toml:"debug"`
}

// Limits bounds the interpreter's stacks and arrays.
type Limits struct {
	ValueStack   int `toml:"value_stack"`
	ObjectStack  int `toml:"object_stack"`
	MaxArraySize int `toml:"max_array_size"`
}

// Diagnostics configures runtime error reporting.
type Diagnostics struct {
	Enabled  bool   `toml:"enabled"`
	Snapshot string `toml:"snapshot"` // write a CBOR state snapshot here after the run
}

// Default returns the configuration used when no file is found
func Default() *Config {
	return &Config{
		Limits: Limits{
			ValueStack:   vm.DefaultValueStack,
			ObjectStack:  vm.DefaultObjectStack,
			MaxArraySize: vm.DefaultMaxArraySize,
		},
		Diagnostics: Diagnostics{Enabled: true},
	}
}

// Load parses the file at path on top of the defaults.
func Load(path string) (*Config, error) {
	c := Default()

	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.Path = path
	return c, nil
}

// FindAndLoad walks up from startDir to find a golden.toml file and loads
// it. Without a file the defaults are returned.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate checks value ranges
func (c *Config) Validate() error {
	switch c.Runtime.Renderer {
	case "", "auto", "terminal", "none", "opengl":
	default:
		return fmt.Errorf("%w: unknown renderer %q", ErrInvalidConfig, c.Runtime.Renderer)
	}

	if c.Runtime.FPS < 0 || c.Runtime.MaxSteps < 0 {
		return fmt.Errorf("%w: fps and max_steps must not be negative", ErrInvalidConfig)
	}

	if c.Limits.ValueStack < 0 || c.Limits.ObjectStack < 0 || c.Limits.MaxArraySize < 0 {
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidConfig)
	}

	return nil
}
