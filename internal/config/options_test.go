package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseSourceOptions(t *testing.T) {
	blob := `{
		"numRecords": 500,
		"keySize": 8,
		"valueSize": {"min": 16, "max": 128},
		"bundleSize": 25,
		"initialDelay": "100ms",
		"delayPerBundle": "5ms",
		"recordsPerSecond": 1000,
		"compressibility": 0.5,
		"seed": 7
	}`

	opts, err := ParseSourceOptions(blob)
	if err != nil {
		t.Fatalf("ParseSourceOptions: %v", err)
	}

	if opts.NumRecords != 500 {
		t.Errorf("NumRecords = %d, expected 500", opts.NumRecords)
	}
	if opts.KeySize != FixedSize(8) {
		t.Errorf("KeySize = %+v, expected fixed 8", opts.KeySize)
	}
	if opts.ValueSize != RangeSize(16, 128) {
		t.Errorf("ValueSize = %+v, expected [16,128]", opts.ValueSize)
	}
	if opts.BundleSize != 25 {
		t.Errorf("BundleSize = %d, expected 25", opts.BundleSize)
	}
	if opts.InitialDelay != 100*time.Millisecond {
		t.Errorf("InitialDelay = %v, expected 100ms", opts.InitialDelay)
	}
	if opts.DelayPerBundle != 5*time.Millisecond {
		t.Errorf("DelayPerBundle = %v, expected 5ms", opts.DelayPerBundle)
	}
	if opts.RecordsPerSecond != 1000 {
		t.Errorf("RecordsPerSecond = %d, expected 1000", opts.RecordsPerSecond)
	}
	if opts.Seed != 7 {
		t.Errorf("Seed = %d, expected 7", opts.Seed)
	}
}

func TestParseSourceOptions_Defaults(t *testing.T) {
	opts, err := ParseSourceOptions(`{"numRecords": 10}`)
	if err != nil {
		t.Fatalf("ParseSourceOptions: %v", err)
	}

	if opts.KeySize != FixedSize(DefaultByteSize) {
		t.Errorf("KeySize = %+v, expected default fixed %d", opts.KeySize, DefaultByteSize)
	}
	if opts.BundleSize != DefaultBundleSize {
		t.Errorf("BundleSize = %d, expected default %d", opts.BundleSize, DefaultBundleSize)
	}
}

func TestParseSourceOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want string
	}{
		{"invalid JSON", `{"numRecords":`, "invalid JSON"},
		{"not an object", `[1,2,3]`, "JSON object"},
		{"bad size spec", `{"keySize": "wide"}`, "keySize"},
		{"bad duration", `{"initialDelay": "fast"}`, "initialDelay"},
		{"negative records", `{"numRecords": -5}`, "numRecords"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSourceOptions(tt.blob)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseStepOptions(t *testing.T) {
	blob := `{
		"outputRecordsPerInputRecord": 2,
		"failureProbability": 0.25,
		"seed": 11,
		"delay": {
			"type": "sleep",
			"distribution": "sampled",
			"samples": [
				{"duration": "1ms", "weight": 3},
				{"duration": "10ms"}
			]
		}
	}`

	opts, err := ParseStepOptions(blob)
	if err != nil {
		t.Fatalf("ParseStepOptions: %v", err)
	}

	if opts.FanOut() != 2 {
		t.Errorf("FanOut = %d, expected 2", opts.FanOut())
	}
	if opts.FailureProbability != 0.25 {
		t.Errorf("FailureProbability = %v, expected 0.25", opts.FailureProbability)
	}
	if opts.Delay == nil {
		t.Fatal("expected delay spec")
	}
	if opts.Delay.Type != DelaySleep {
		t.Errorf("delay type = %q, expected sleep", opts.Delay.Type)
	}
	if len(opts.Delay.Samples) != 2 {
		t.Fatalf("samples = %d, expected 2", len(opts.Delay.Samples))
	}
	if opts.Delay.Samples[0].Weight != 3 {
		t.Errorf("sample 0 weight = %v, expected 3", opts.Delay.Samples[0].Weight)
	}
	// Missing weight defaults to 1 so a bare duration list is usable.
	if opts.Delay.Samples[1].Weight != 1 {
		t.Errorf("sample 1 weight = %v, expected 1", opts.Delay.Samples[1].Weight)
	}
}

func TestParseStepOptions_ExplicitZeroFanOut(t *testing.T) {
	opts, err := ParseStepOptions(`{"outputRecordsPerInputRecord": 0}`)
	if err != nil {
		t.Fatalf("ParseStepOptions: %v", err)
	}
	if opts.FanOut() != 0 {
		t.Errorf("FanOut = %d, expected explicit 0", opts.FanOut())
	}

	opts, err = ParseStepOptions(`{}`)
	if err != nil {
		t.Fatalf("ParseStepOptions: %v", err)
	}
	if opts.FanOut() != 1 {
		t.Errorf("FanOut = %d, expected default 1", opts.FanOut())
	}
}

func TestParseStepOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want string
	}{
		{"invalid JSON", `not json`, "invalid JSON"},
		{"bad probability", `{"failureProbability": 2}`, "failureProbability"},
		{"negative fan-out", `{"outputRecordsPerInputRecord": -1}`, "outputRecordsPerInputRecord"},
		{"bad delay type", `{"delay": {"type": "wait"}}`, "type"},
		{"bad delay duration", `{"delay": {"type": "cpu", "duration": "soon"}}`, "duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStepOptions(tt.blob)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
