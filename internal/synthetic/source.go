package synthetic

import (
	"context"
	"time"

	"loadsmith/internal/config"
	"loadsmith/internal/core"
	"loadsmith/internal/ratelimit"
)

// Source is the bounded synthetic input: record indices 0..N-1 shaped into
// bundles. Bundle contents are a pure function of the options, so the
// source is restartable and any bundle may be regenerated for retries.
// Methods are safe for concurrent use by parallel workers.
type Source struct {
	opts    config.SourceOptions
	shaper  *Shaper
	limiter *ratelimit.Limiter
}

// NewSource builds a source from validated options.
func NewSource(opts config.SourceOptions) *Source {
	return &Source{
		opts:    opts,
		shaper:  NewShaper(opts),
		limiter: ratelimit.New(opts.RecordsPerSecond, opts.BundleSize),
	}
}

// Open applies the configured startup delay. Called once per run before
// any bundle is claimed.
func (s *Source) Open(ctx context.Context) error {
	return sleepCtx(ctx, s.opts.InitialDelay)
}

// Bundles returns the number of bundles the record space splits into.
func (s *Source) Bundles() int {
	if s.opts.NumRecords == 0 {
		return 0
	}
	size := int64(s.opts.BundleSize)
	return int((s.opts.NumRecords + size - 1) / size)
}

// Bundle generates bundle n and the index of its first record. The
// per-bundle delay and the throughput throttle are paid up front, before
// the bundle's records are shaped, not per individual record.
func (s *Source) Bundle(ctx context.Context, n int) ([]core.Record, uint64, error) {
	first := int64(n) * int64(s.opts.BundleSize)
	last := first + int64(s.opts.BundleSize)
	if last > s.opts.NumRecords {
		last = s.opts.NumRecords
	}
	if first >= last {
		return nil, uint64(first), nil
	}

	if err := sleepCtx(ctx, s.opts.DelayPerBundle); err != nil {
		return nil, 0, err
	}
	if err := s.limiter.WaitN(ctx, int(last-first)); err != nil {
		return nil, 0, err
	}

	records := make([]core.Record, 0, last-first)
	for i := first; i < last; i++ {
		records = append(records, s.shaper.Shape(uint64(i)))
	}
	return records, uint64(first), nil
}

// NumRecords returns the total record count of the source.
func (s *Source) NumRecords() int64 {
	return s.opts.NumRecords
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
