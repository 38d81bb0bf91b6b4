// Package engine executes a bounded source through a chain of per-record
// stages across a pool of workers. Workers claim disjoint bundles, so no
// ordering exists between records; within one record's path the stages run
// strictly in configured order.
package engine

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"loadsmith/internal/core"
)

// Source is a bounded, restartable record producer split into bundles.
type Source interface {
	Open(ctx context.Context) error
	Bundles() int
	Bundle(ctx context.Context, n int) (records []core.Record, firstIndex uint64, err error)
}

// Stage is a named per-record transform. Implementations must be safe for
// concurrent use by multiple workers.
type Stage interface {
	Name() string
	Process(ctx context.Context, rec core.Record, index uint64) ([]core.Record, error)
}

// Sink receives every terminal record and every surfaced per-record error.
type Sink interface {
	Observe(rec core.Record, start time.Time)
	ObserveError(err error)
}

// State is the terminal state of a run.
type State string

const (
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Result reports how a run ended. Err is set only when State is
// StateFailed.
type Result struct {
	State State
	Err   error
}

// Pipeline wires a source, a stage chain and a terminal sink to a worker
// pool.
type Pipeline struct {
	source   Source
	stages   []Stage
	sink     Sink
	workers  int
	counters *Counters
	clock    core.Clock
}

// NewPipeline assembles a pipeline. workers <= 0 defaults to GOMAXPROCS.
func NewPipeline(source Source, stages []Stage, sink Sink, workers int) *Pipeline {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{
		source:   source,
		stages:   stages,
		sink:     sink,
		workers:  workers,
		counters: NewCounters(),
		clock:    core.RealClock{},
	}
}

// Counters exposes the engine's named counter facility.
func (p *Pipeline) Counters() *Counters {
	return p.counters
}

// SetClock overrides the clock used to timestamp records, for tests.
func (p *Pipeline) SetClock(clock core.Clock) {
	p.clock = clock
}

// Run executes the pipeline and blocks until every bundle is processed or
// a fatal error stops the run. Per-record failures are surfaced to the
// sink and counted, and do not fail the run; source errors and context
// cancellation do. There is no default timeout: load runs are expected to
// run long, bounded only by the caller's context.
func (p *Pipeline) Run(ctx context.Context) Result {
	if err := p.source.Open(ctx); err != nil {
		return Result{State: StateFailed, Err: err}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		next     atomic.Int64
		wg       sync.WaitGroup
		fatalMu  sync.Mutex
		fatalErr error
	)
	total := int64(p.source.Bundles())

	fatal := func(err error) {
		fatalMu.Lock()
		if fatalErr == nil {
			fatalErr = err
		}
		fatalMu.Unlock()
		cancel()
	}

	wg.Add(p.workers)
	for w := 0; w < p.workers; w++ {
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				n := next.Add(1) - 1
				if n >= total {
					return
				}
				records, first, err := p.source.Bundle(ctx, int(n))
				if err != nil {
					fatal(err)
					return
				}
				for i, rec := range records {
					p.process(ctx, rec, first+uint64(i), fatal)
				}
			}
		}()
	}
	wg.Wait()

	if fatalErr != nil {
		return Result{State: StateFailed, Err: fatalErr}
	}
	if err := ctx.Err(); err != nil {
		return Result{State: StateFailed, Err: err}
	}
	return Result{State: StateSucceeded}
}

// process pushes one source record through the chain depth-first, so
// fan-out at step i multiplies the records seen by steps i+1..N-1.
func (p *Pipeline) process(ctx context.Context, rec core.Record, index uint64, fatal func(error)) {
	p.dispatch(ctx, rec, index, 0, p.clock.Now(), fatal)
}

func (p *Pipeline) dispatch(ctx context.Context, rec core.Record, index uint64, depth int, start time.Time, fatal func(error)) {
	if depth == len(p.stages) {
		p.sink.Observe(rec, start)
		p.counters.Add("records-terminal", 1)
		return
	}

	stage := p.stages[depth]
	out, err := stage.Process(ctx, rec, index)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			fatal(err)
			return
		}
		p.counters.Add("errors-"+stage.Name(), 1)
		p.sink.ObserveError(err)
		return
	}

	p.counters.Add("records-"+stage.Name(), int64(len(out)))
	for _, r := range out {
		p.dispatch(ctx, r, index, depth+1, start, fatal)
	}
}
