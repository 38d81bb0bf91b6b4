// Package config handles configuration parsing and validation for synthetic
// load runs. Malformed or out-of-range options fail here, before any record
// is generated.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBundleSize is the split-point frequency used when the source
// options do not specify one.
const DefaultBundleSize = 100

// DefaultByteSize is the key/value length used when a size spec is absent.
const DefaultByteSize = 8

// Config is the root configuration structure for a run.
type Config struct {
	Source SourceOptions `yaml:"source"`

	// Step plus Operations replicates a single step spec into a chain of
	// identical steps. Steps, when set, takes precedence and defines each
	// step independently.
	Step       *StepOptions  `yaml:"step,omitempty"`
	Steps      []StepOptions `yaml:"steps,omitempty"`
	Operations int           `yaml:"operations,omitempty"`

	Workers   int    `yaml:"workers,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
	Output    string `yaml:"output,omitempty"`
	Quiet     bool   `yaml:"quiet,omitempty"`
}

// SourceOptions parameterizes the synthetic bounded source.
type SourceOptions struct {
	NumRecords       int64         `yaml:"numRecords"`
	KeySize          SizeSpec      `yaml:"keySize"`
	ValueSize        SizeSpec      `yaml:"valueSize"`
	BundleSize       int           `yaml:"bundleSize,omitempty"`
	InitialDelay     time.Duration `yaml:"initialDelay,omitempty"`
	DelayPerBundle   time.Duration `yaml:"delayPerBundle,omitempty"`
	RecordsPerSecond int           `yaml:"recordsPerSecond,omitempty"`
	Compressibility  float64       `yaml:"compressibility,omitempty"`
	Seed             int64         `yaml:"seed,omitempty"`
}

// StepOptions parameterizes one synthetic stress step.
type StepOptions struct {
	Delay *DelaySpec `yaml:"delay,omitempty"`

	// OutputPerInput is the fan-out factor. Nil means 1; an explicit 0
	// makes the step swallow every record.
	OutputPerInput *int `yaml:"outputRecordsPerInputRecord,omitempty"`

	FailureProbability float64 `yaml:"failureProbability,omitempty"`
	Seed               int64   `yaml:"seed,omitempty"`
}

// FanOut returns the effective fan-out factor.
func (o StepOptions) FanOut() int {
	if o.OutputPerInput == nil {
		return 1
	}
	return *o.OutputPerInput
}

// SizeSpec is a byte length, either fixed or drawn from an inclusive
// [min,max] range. In YAML it accepts a bare integer or a {min,max} map.
type SizeSpec struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// FixedSize returns a spec producing exactly n bytes.
func FixedSize(n int) SizeSpec {
	return SizeSpec{Min: n, Max: n}
}

// RangeSize returns a spec producing between min and max bytes inclusive.
func RangeSize(min, max int) SizeSpec {
	return SizeSpec{Min: min, Max: max}
}

// IsFixed reports whether the spec resolves to a single length.
func (s SizeSpec) IsFixed() bool {
	return s.Min == s.Max
}

func (s *SizeSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var n int
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("size spec must be an integer or {min,max}: %w", err)
		}
		*s = FixedSize(n)
		return nil
	}
	var r struct {
		Min int `yaml:"min"`
		Max int `yaml:"max"`
	}
	if err := node.Decode(&r); err != nil {
		return fmt.Errorf("size spec must be an integer or {min,max}: %w", err)
	}
	*s = RangeSize(r.Min, r.Max)
	return nil
}

func (s SizeSpec) validate(name string) error {
	if s.Min < 0 {
		return fmt.Errorf("%s: min size %d is negative", name, s.Min)
	}
	if s.Max < s.Min {
		return fmt.Errorf("%s: max size %d is below min size %d", name, s.Max, s.Min)
	}
	return nil
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Validate checks every option of the run and applies defaults. It must be
// called (and must pass) before any record flows.
func (c *Config) Validate() error {
	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source options: %w", err)
	}

	if c.Operations < 0 {
		return fmt.Errorf("operations %d is negative", c.Operations)
	}
	for i, s := range c.StepList() {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("step %d options: %w", i, err)
		}
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers %d is negative", c.Workers)
	}
	switch c.Output {
	case "", "text", "json":
	default:
		return fmt.Errorf("output must be 'text' or 'json', got %q", c.Output)
	}
	return nil
}

// StepList resolves the configured step chain: the explicit Steps list when
// present, otherwise Operations copies of Step (default one step).
func (c *Config) StepList() []StepOptions {
	if len(c.Steps) > 0 {
		return c.Steps
	}

	n := c.Operations
	if n == 0 {
		n = 1
	}
	if n < 0 {
		return nil
	}
	base := StepOptions{}
	if c.Step != nil {
		base = *c.Step
	}
	steps := make([]StepOptions, n)
	for i := range steps {
		steps[i] = base
	}
	return steps
}

// Validate checks source option invariants and applies defaults.
func (o *SourceOptions) Validate() error {
	if o.NumRecords < 0 {
		return fmt.Errorf("numRecords %d is negative", o.NumRecords)
	}
	if o.KeySize == (SizeSpec{}) {
		o.KeySize = FixedSize(DefaultByteSize)
	}
	if o.ValueSize == (SizeSpec{}) {
		o.ValueSize = FixedSize(DefaultByteSize)
	}
	if err := o.KeySize.validate("keySize"); err != nil {
		return err
	}
	if err := o.ValueSize.validate("valueSize"); err != nil {
		return err
	}
	if o.BundleSize < 0 {
		return fmt.Errorf("bundleSize %d is negative", o.BundleSize)
	}
	if o.BundleSize == 0 {
		o.BundleSize = DefaultBundleSize
	}
	if o.InitialDelay < 0 {
		return fmt.Errorf("initialDelay %v is negative", o.InitialDelay)
	}
	if o.DelayPerBundle < 0 {
		return fmt.Errorf("delayPerBundle %v is negative", o.DelayPerBundle)
	}
	if o.RecordsPerSecond < 0 {
		return fmt.Errorf("recordsPerSecond %d is negative", o.RecordsPerSecond)
	}
	if o.Compressibility < 0 || o.Compressibility > 1 {
		return fmt.Errorf("compressibility %v must be between 0.0 and 1.0", o.Compressibility)
	}
	return nil
}

// Validate checks step option invariants.
func (o *StepOptions) Validate() error {
	if o.OutputPerInput != nil && *o.OutputPerInput < 0 {
		return fmt.Errorf("outputRecordsPerInputRecord %d is negative", *o.OutputPerInput)
	}
	if o.FailureProbability < 0 || o.FailureProbability > 1 {
		return fmt.Errorf("failureProbability %v must be between 0.0 and 1.0", o.FailureProbability)
	}
	if o.Delay != nil {
		if err := o.Delay.Validate(); err != nil {
			return fmt.Errorf("delay: %w", err)
		}
	}
	return nil
}
