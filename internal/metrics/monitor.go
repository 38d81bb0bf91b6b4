package metrics

import (
	"time"

	"loadsmith/internal/core"
)

// Monitor is the per-record sink at the end of the step chain. It turns
// each terminal record (or surfaced error) into a sample and merges it
// into the shared aggregator.
type Monitor struct {
	agg   *Aggregator
	clock core.Clock
}

// NewMonitor creates a monitor feeding the given aggregator. A nil clock
// uses the real one.
func NewMonitor(agg *Aggregator, clock core.Clock) *Monitor {
	if clock == nil {
		clock = core.RealClock{}
	}
	return &Monitor{agg: agg, clock: clock}
}

// Observe records one terminal record. start is the moment the record
// entered the chain; the difference is its end-to-end latency.
func (m *Monitor) Observe(rec core.Record, start time.Time) {
	m.agg.Merge(core.Sample{
		Elapsed: m.clock.Since(start),
		Records: 1,
		Bytes:   rec.Size(),
	})
}

// ObserveError records one surfaced per-record failure.
func (m *Monitor) ObserveError(err error) {
	m.agg.Merge(core.Sample{Errors: 1})
}
