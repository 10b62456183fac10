package config

import (
	"bytes"
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"io"
	"os"
)

// Checks toggles the optional analyses.
type Checks struct {
	// Overflow enables constant overflow and zero-divisor detection.
	Overflow bool `yaml:"overflow"`
	// PropagateLetConstants treats immutable lets bound to constants as constants
	// for overflow detection.
	PropagateLetConstants bool `yaml:"propagate_let_constants"`
	// TerminalCall requires exit(...) to be the last statement of its function.
	TerminalCall bool `yaml:"terminal_call"`
}

// Options configures one analysis run.
type Options struct {
	PointerBits    int    `yaml:"pointer_bits"`
	Checks         Checks `yaml:"checks"`
	MaxDiagnostics int    `yaml:"max_diagnostics"` // 0 means unlimited
	Debug          bool   `yaml:"debug"`
}

// DefaultOptions returns the options used when no config file is given.
func DefaultOptions() Options {
	return Options{
		PointerBits: DefaultPointerBits,
		Checks: Checks{
			Overflow:              true,
			PropagateLetConstants: true,
			TerminalCall:          true,
		},
	}
}

// LoadOptions decodes YAML options on top of DefaultOptions.
// Unknown keys are rejected.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil {
		if errors.Is(err, io.EOF) {
			return opts, nil
		}
		return Options{}, fmt.Errorf("parse options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// LoadOptionsFile reads options from a YAML file.
func LoadOptionsFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read options %s: %w", path, err)
	}
	opts, err := LoadOptions(bytes.NewReader(data))
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

// Validate checks option values that the decoder cannot.
func (o Options) Validate() error {
	switch o.PointerBits {
	case 16, 32, 64:
	default:
		return fmt.Errorf("pointer_bits must be 16, 32 or 64, got %d", o.PointerBits)
	}
	if o.MaxDiagnostics < 0 {
		return fmt.Errorf("max_diagnostics must not be negative, got %d", o.MaxDiagnostics)
	}
	return nil
}
