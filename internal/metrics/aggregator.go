// Package metrics aggregates per-record samples into run totals and
// publishes them.
package metrics

import (
	"sync/atomic"
	"time"

	"loadsmith/internal/core"
)

// AggregateMetrics is the frozen result of a run.
type AggregateMetrics struct {
	Records int64         `json:"records"`
	Errors  int64         `json:"errors"`
	Bytes   int64         `json:"bytes"`
	Elapsed time.Duration `json:"elapsed"`
	Wall    time.Duration `json:"wall"`
}

// RecordsPerSec returns the terminal record throughput over wall time.
func (m AggregateMetrics) RecordsPerSec() float64 {
	if m.Wall <= 0 {
		return 0
	}
	return float64(m.Records) / m.Wall.Seconds()
}

// AvgLatency returns the mean per-record latency through the chain.
func (m AggregateMetrics) AvgLatency() time.Duration {
	if m.Records == 0 {
		return 0
	}
	return m.Elapsed / time.Duration(m.Records)
}

// ErrorRate returns the fraction of records that failed, in percent.
func (m AggregateMetrics) ErrorRate() float64 {
	total := m.Records + m.Errors
	if total == 0 {
		return 0
	}
	return float64(m.Errors) / float64(total) * 100
}

// Aggregator accumulates samples from any number of concurrent observers.
// The merge is a plain sum, commutative and associative, so merge order is
// irrelevant and no coordination beyond the atomic adds is needed.
//
// Once frozen the totals are final; merging afterwards is a programming
// error and panics.
type Aggregator struct {
	records atomic.Int64
	errors  atomic.Int64
	bytes   atomic.Int64
	elapsed atomic.Int64
	wall    atomic.Int64
	frozen  atomic.Bool

	clock core.Clock
	start time.Time
}

// NewAggregator creates an aggregator anchored at the current time. A nil
// clock uses the real one.
func NewAggregator(clock core.Clock) *Aggregator {
	if clock == nil {
		clock = core.RealClock{}
	}
	return &Aggregator{
		clock: clock,
		start: clock.Now(),
	}
}

// Merge accumulates one sample. Safe under arbitrary concurrent access.
// Panics if the aggregator has been frozen.
func (a *Aggregator) Merge(s core.Sample) {
	if a.frozen.Load() {
		panic("metrics: sample merged after aggregator freeze")
	}
	a.records.Add(s.Records)
	a.errors.Add(s.Errors)
	a.bytes.Add(s.Bytes)
	a.elapsed.Add(int64(s.Elapsed))
}

// Freeze captures the wall-clock duration, seals the aggregator and
// returns the final totals. Calling Freeze again returns the same totals.
func (a *Aggregator) Freeze() AggregateMetrics {
	if !a.frozen.Load() {
		a.wall.Store(int64(a.clock.Since(a.start)))
		a.frozen.Store(true)
	}
	return a.snapshot()
}

// Snapshot returns the current totals without sealing the aggregator, for
// live progress reporting.
func (a *Aggregator) Snapshot() AggregateMetrics {
	if a.frozen.Load() {
		return a.snapshot()
	}
	m := a.snapshot()
	m.Wall = a.clock.Since(a.start)
	return m
}

func (a *Aggregator) snapshot() AggregateMetrics {
	return AggregateMetrics{
		Records: a.records.Load(),
		Errors:  a.errors.Load(),
		Bytes:   a.bytes.Load(),
		Elapsed: time.Duration(a.elapsed.Load()),
		Wall:    time.Duration(a.wall.Load()),
	}
}
