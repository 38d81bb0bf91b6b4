package synthetic

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"loadsmith/internal/config"
)

// delayer injects the configured per-record delay. The variant is fixed at
// construction; execution is a single switch over the parsed tags.
type delayer struct {
	spec        config.DelaySpec
	seed        uint64
	totalWeight float64
}

func newDelayer(spec *config.DelaySpec, seed uint64) *delayer {
	if spec == nil {
		return nil
	}
	d := &delayer{spec: *spec, seed: seed}
	for _, s := range spec.Samples {
		d.totalWeight += s.Weight
	}
	return d
}

// duration draws the delay for one record index from the configured
// distribution. Deterministic per (seed, index).
func (d *delayer) duration(index uint64) time.Duration {
	switch d.spec.Distribution {
	case config.DistUniform:
		return time.Duration(drawRange(d.seed, index, saltDelay,
			int64(d.spec.Min), int64(d.spec.Max)))
	case config.DistSampled:
		target := drawFloat(d.seed, index, saltDelay) * d.totalWeight
		for _, s := range d.spec.Samples {
			target -= s.Weight
			if target < 0 {
				return s.Duration
			}
		}
		return d.spec.Samples[len(d.spec.Samples)-1].Duration
	default: // config.DistConst
		return d.spec.Duration
	}
}

// apply spends the drawn delay: sleep suspends the worker honoring ctx,
// cpu runs pure busy-work and never blocks.
func (d *delayer) apply(ctx context.Context, index uint64) error {
	if d == nil {
		return nil
	}
	dur := d.duration(index)
	if dur <= 0 {
		return nil
	}
	switch d.spec.Type {
	case config.DelayCPU:
		burn(dur)
		return nil
	default: // config.DelaySleep
		timer := time.NewTimer(dur)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}

var (
	calibrateOnce sync.Once
	spinsPerNano  float64
	burnSink      atomic.Uint64
)

// burn consumes roughly the target duration in pure computation. The
// iteration cost is calibrated once with a timed probe loop; accuracy is a
// coarse approximation, which is enough for modelling CPU contention.
func burn(d time.Duration) {
	calibrateOnce.Do(calibrate)
	spin(uint64(spinsPerNano * float64(d.Nanoseconds())))
}

func calibrate() {
	const probe = 1 << 22
	start := time.Now()
	spin(probe)
	elapsed := time.Since(start)
	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}
	spinsPerNano = float64(probe) / float64(elapsed.Nanoseconds())
}

// spin is side-effect-free arithmetic; the atomic sink keeps the loop from
// being optimized away without introducing a data race between workers.
func spin(n uint64) {
	acc := uint64(1)
	for i := uint64(0); i < n; i++ {
		acc = acc*6364136223846793005 + 1442695040888963407
	}
	burnSink.Store(acc)
}
