package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfigFile(t, `
source:
  numRecords: 1000
  keySize: 8
  valueSize:
    min: 4
    max: 64
  bundleSize: 50
  delayPerBundle: 10ms
  seed: 42
step:
  outputRecordsPerInputRecord: 2
  failureProbability: 0.1
  delay:
    type: sleep
    distribution: uniform
    min: 1ms
    max: 5ms
operations: 3
workers: 4
namespace: stress
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Source.NumRecords != 1000 {
		t.Errorf("NumRecords = %d, expected 1000", cfg.Source.NumRecords)
	}
	if cfg.Source.KeySize != FixedSize(8) {
		t.Errorf("KeySize = %+v, expected fixed 8", cfg.Source.KeySize)
	}
	if cfg.Source.ValueSize != RangeSize(4, 64) {
		t.Errorf("ValueSize = %+v, expected [4,64]", cfg.Source.ValueSize)
	}
	if cfg.Source.DelayPerBundle != 10*time.Millisecond {
		t.Errorf("DelayPerBundle = %v, expected 10ms", cfg.Source.DelayPerBundle)
	}
	if cfg.Step.FanOut() != 2 {
		t.Errorf("FanOut = %d, expected 2", cfg.Step.FanOut())
	}
	if cfg.Step.Delay.Distribution != DistUniform {
		t.Errorf("Distribution = %q, expected uniform", cfg.Step.Delay.Distribution)
	}
	if len(cfg.StepList()) != 3 {
		t.Errorf("StepList length = %d, expected 3", len(cfg.StepList()))
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "source: [not a map")
	_, err := LoadConfig(path)
	if err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestConfig_ValidateErrors(t *testing.T) {
	fanOut := -1
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "negative record count",
			cfg:  Config{Source: SourceOptions{NumRecords: -1}},
			want: "numRecords",
		},
		{
			name: "negative key size",
			cfg:  Config{Source: SourceOptions{KeySize: RangeSize(-1, 4)}},
			want: "keySize",
		},
		{
			name: "inverted value range",
			cfg:  Config{Source: SourceOptions{ValueSize: RangeSize(10, 2)}},
			want: "valueSize",
		},
		{
			name: "negative bundle size",
			cfg:  Config{Source: SourceOptions{BundleSize: -5}},
			want: "bundleSize",
		},
		{
			name: "compressibility above one",
			cfg:  Config{Source: SourceOptions{Compressibility: 1.5}},
			want: "compressibility",
		},
		{
			name: "negative fan-out",
			cfg:  Config{Step: &StepOptions{OutputPerInput: &fanOut}},
			want: "outputRecordsPerInputRecord",
		},
		{
			name: "probability above one",
			cfg:  Config{Step: &StepOptions{FailureProbability: 1.1}},
			want: "failureProbability",
		},
		{
			name: "bad delay type",
			cfg:  Config{Step: &StepOptions{Delay: &DelaySpec{Type: "nap"}}},
			want: "type",
		},
		{
			name: "uniform max below min",
			cfg: Config{Step: &StepOptions{Delay: &DelaySpec{
				Type: DelaySleep, Distribution: DistUniform,
				Min: 5 * time.Millisecond, Max: time.Millisecond,
			}}},
			want: "max",
		},
		{
			name: "sampled without samples",
			cfg: Config{Step: &StepOptions{Delay: &DelaySpec{
				Type: DelayCPU, Distribution: DistSampled,
			}}},
			want: "sample",
		},
		{
			name: "sampled with zero weight",
			cfg: Config{Step: &StepOptions{Delay: &DelaySpec{
				Type:         DelaySleep,
				Distribution: DistSampled,
				Samples:      []DelaySample{{Duration: time.Millisecond, Weight: 0}},
			}}},
			want: "weight",
		},
		{
			name: "bad output format",
			cfg:  Config{Output: "xml"},
			want: "output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestConfig_ValidateDefaults(t *testing.T) {
	cfg := Config{Source: SourceOptions{NumRecords: 10}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Source.BundleSize != DefaultBundleSize {
		t.Errorf("BundleSize = %d, expected default %d", cfg.Source.BundleSize, DefaultBundleSize)
	}
	if cfg.Source.KeySize != FixedSize(DefaultByteSize) {
		t.Errorf("KeySize = %+v, expected default fixed %d", cfg.Source.KeySize, DefaultByteSize)
	}
	if cfg.Source.ValueSize != FixedSize(DefaultByteSize) {
		t.Errorf("ValueSize = %+v, expected default fixed %d", cfg.Source.ValueSize, DefaultByteSize)
	}
}

func TestConfig_StepList(t *testing.T) {
	two := 2

	// Default: one pass-through step.
	cfg := Config{}
	if got := len(cfg.StepList()); got != 1 {
		t.Errorf("default StepList length = %d, expected 1", got)
	}

	// Operations replicates the single step spec.
	cfg = Config{Step: &StepOptions{OutputPerInput: &two}, Operations: 4}
	steps := cfg.StepList()
	if len(steps) != 4 {
		t.Fatalf("StepList length = %d, expected 4", len(steps))
	}
	for i, s := range steps {
		if s.FanOut() != 2 {
			t.Errorf("step %d FanOut = %d, expected 2", i, s.FanOut())
		}
	}

	// An explicit steps list wins over step+operations.
	cfg = Config{
		Step:       &StepOptions{OutputPerInput: &two},
		Steps:      []StepOptions{{}, {}, {}},
		Operations: 7,
	}
	if got := len(cfg.StepList()); got != 3 {
		t.Errorf("explicit StepList length = %d, expected 3", got)
	}
}

func TestSizeSpec_UnmarshalYAML(t *testing.T) {
	var spec struct {
		Size SizeSpec `yaml:"size"`
	}

	if err := yaml.Unmarshal([]byte("size: 16"), &spec); err != nil {
		t.Fatalf("scalar unmarshal: %v", err)
	}
	if spec.Size != FixedSize(16) {
		t.Errorf("scalar size = %+v, expected fixed 16", spec.Size)
	}

	if err := yaml.Unmarshal([]byte("size: {min: 1, max: 9}"), &spec); err != nil {
		t.Fatalf("range unmarshal: %v", err)
	}
	if spec.Size != RangeSize(1, 9) {
		t.Errorf("range size = %+v, expected [1,9]", spec.Size)
	}

	if err := yaml.Unmarshal([]byte("size: banana"), &spec); err == nil {
		t.Error("expected error for non-integer scalar")
	}
}
