package synthetic

import (
	"context"
	"fmt"

	"loadsmith/internal/config"
	"loadsmith/internal/core"
)

// FailureError is a deliberately injected per-record failure. It is
// surfaced to the execution engine's error policy, never handled inside the
// step.
type FailureError struct {
	Step  string
	Index uint64
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("synthetic failure injected at %s for record %d", e.Step, e.Index)
}

// Step is one per-record stress operator: it optionally sleeps or burns
// CPU, optionally injects a failure, then fans the record out. Steps hold
// no mutable state, so one Step may be shared by any number of workers.
type Step struct {
	label   string
	fanOut  int
	failure float64
	delay   *delayer
	seed    uint64
}

// NewStep builds a step from validated options. The label identifies the
// step in counters and error messages.
func NewStep(label string, opts config.StepOptions) *Step {
	seed := uint64(opts.Seed)
	return &Step{
		label:   label,
		fanOut:  opts.FanOut(),
		failure: opts.FailureProbability,
		delay:   newDelayer(opts.Delay, seed),
		seed:    seed,
	}
}

// Name returns the step's diagnostic label.
func (s *Step) Name() string {
	return s.label
}

// Process runs one record through the step. The returned error is either a
// *FailureError (injected) or a context error from an interrupted sleep.
func (s *Step) Process(ctx context.Context, rec core.Record, index uint64) ([]core.Record, error) {
	if err := s.delay.apply(ctx, index); err != nil {
		return nil, err
	}

	if s.failure > 0 && drawFloat(s.seed, index, saltFail) < s.failure {
		return nil, &FailureError{Step: s.label, Index: index}
	}

	out := make([]core.Record, 0, s.fanOut)
	for k := 0; k < s.fanOut; k++ {
		out = append(out, core.Record{
			Key:   rec.Key,
			Value: Reshape(rec.Value, s.seed, index, k),
		})
	}
	return out, nil
}

// NewChain builds the configured step chain. Each step gets a positional
// label; chain order is fixed and failures are independent between steps.
func NewChain(opts []config.StepOptions) []*Step {
	steps := make([]*Step, len(opts))
	for i, o := range opts {
		steps[i] = NewStep(fmt.Sprintf("step-%d", i), o)
	}
	return steps
}
