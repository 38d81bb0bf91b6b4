// Package driver assembles the synthetic pipeline and walks it through the
// run lifecycle.
package driver

import (
	"context"
	"fmt"
	"io"
	"os"

	"loadsmith/internal/config"
	"loadsmith/internal/core"
	"loadsmith/internal/engine"
	"loadsmith/internal/metrics"
	"loadsmith/internal/synthetic"
)

// State is the driver's lifecycle position. Transitions:
// Configured -> Running -> Completed -> Published, or Configured ->
// Running -> Failed when the engine reports a non-successful run.
type State string

const (
	StateConfigured State = "configured"
	StateRunning    State = "running"
	StateCompleted  State = "completed"
	StatePublished  State = "published"
	StateFailed     State = "failed"
)

// DefaultNamespace labels published metrics when none is configured.
const DefaultNamespace = "loadsmith"

// Driver binds one source, one step chain and one aggregator into a run.
type Driver struct {
	cfg      *config.Config
	agg      *metrics.Aggregator
	pub      *metrics.Publisher
	pipeline *engine.Pipeline
	state    State
	errOut   io.Writer
}

// New assembles a driver from a validated config. Results go to out;
// diagnostics (including publication failures) go to errOut.
func New(cfg *config.Config, out, errOut io.Writer) *Driver {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	agg := metrics.NewAggregator(core.RealClock{})
	monitor := metrics.NewMonitor(agg, core.RealClock{})

	source := synthetic.NewSource(cfg.Source)
	steps := synthetic.NewChain(cfg.StepList())
	stages := make([]engine.Stage, len(steps))
	for i, s := range steps {
		stages[i] = s
	}

	return &Driver{
		cfg:      cfg,
		agg:      agg,
		pub:      metrics.NewPublisher(out, cfg.Output),
		pipeline: engine.NewPipeline(source, stages, monitor, cfg.Workers),
		state:    StateConfigured,
		errOut:   errOut,
	}
}

// State returns the driver's current lifecycle state.
func (d *Driver) State() State {
	return d.state
}

// Aggregator exposes the run's aggregator for live progress reporting.
func (d *Driver) Aggregator() *metrics.Aggregator {
	return d.agg
}

// Counters exposes the engine's named counters.
func (d *Driver) Counters() *engine.Counters {
	return d.pipeline.Counters()
}

// Run submits the assembled chain to the engine, blocks until the run
// reaches a terminal state and publishes the totals. On engine-reported
// failure the driver ends in StateFailed and skips publication of partial
// metrics. Publication failure is logged, never escalated: a run that
// processed successfully stays successful.
func (d *Driver) Run(ctx context.Context) error {
	if d.state != StateConfigured {
		return fmt.Errorf("driver: run already started (state %s)", d.state)
	}

	d.state = StateRunning
	result := d.pipeline.Run(ctx)
	if result.State != engine.StateSucceeded {
		d.state = StateFailed
		return fmt.Errorf("run failed: %w", result.Err)
	}
	d.state = StateCompleted

	totals := d.agg.Freeze()
	namespace := d.cfg.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if err := d.pub.Publish(totals, namespace, d.pipeline.Counters().Snapshot()); err != nil {
		fmt.Fprintf(d.errOut, "loadsmith: publishing metrics failed: %v\n", err)
	}
	d.state = StatePublished
	return nil
}
