package config

import (
	"fmt"
	"time"
)

// DelayType selects how a step's injected delay is spent.
type DelayType string

const (
	// DelaySleep suspends the worker without consuming CPU, modelling
	// I/O wait.
	DelaySleep DelayType = "sleep"
	// DelayCPU runs pure busy-work for roughly the target duration,
	// modelling compute-bound stress. It never sleeps or blocks.
	DelayCPU DelayType = "cpu"
)

// Distribution selects how a delay duration is drawn per record.
type Distribution string

const (
	DistConst   Distribution = "const"
	DistUniform Distribution = "uniform"
	DistSampled Distribution = "sampled"
)

// DelaySample is one entry of a sampled delay distribution.
type DelaySample struct {
	Duration time.Duration `yaml:"duration"`
	Weight   float64       `yaml:"weight"`
}

// DelaySpec is the tagged union describing a step's injected delay. The
// variant is fixed at parse time; execution is a single switch over the
// tags.
type DelaySpec struct {
	Type         DelayType    `yaml:"type"`
	Distribution Distribution `yaml:"distribution,omitempty"`

	// Duration is the fixed delay for the const distribution.
	Duration time.Duration `yaml:"duration,omitempty"`
	// Min and Max bound the uniform distribution, inclusive.
	Min time.Duration `yaml:"min,omitempty"`
	Max time.Duration `yaml:"max,omitempty"`
	// Samples is the weighted list for the sampled distribution.
	Samples []DelaySample `yaml:"samples,omitempty"`
}

// Validate checks the delay spec invariants and applies defaults.
func (d *DelaySpec) Validate() error {
	switch d.Type {
	case DelaySleep, DelayCPU:
	case "":
		return fmt.Errorf("type must be 'sleep' or 'cpu'")
	default:
		return fmt.Errorf("type must be 'sleep' or 'cpu', got %q", d.Type)
	}

	if d.Distribution == "" {
		d.Distribution = DistConst
	}
	switch d.Distribution {
	case DistConst:
		if d.Duration < 0 {
			return fmt.Errorf("duration %v is negative", d.Duration)
		}
	case DistUniform:
		if d.Min < 0 {
			return fmt.Errorf("min %v is negative", d.Min)
		}
		if d.Max < d.Min {
			return fmt.Errorf("max %v is below min %v", d.Max, d.Min)
		}
	case DistSampled:
		if len(d.Samples) == 0 {
			return fmt.Errorf("sampled distribution needs at least one sample")
		}
		for i, s := range d.Samples {
			if s.Duration < 0 {
				return fmt.Errorf("sample %d duration %v is negative", i, s.Duration)
			}
			if s.Weight <= 0 {
				return fmt.Errorf("sample %d weight %v must be positive", i, s.Weight)
			}
		}
	default:
		return fmt.Errorf("distribution must be 'const', 'uniform' or 'sampled', got %q", d.Distribution)
	}
	return nil
}
