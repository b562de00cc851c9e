package market

import (
	"context"
	"log"
	"sync"
	"time"

	"megatron-solana/internal/domain"
	"megatron-solana/internal/observability"
)

// DefaultPollInterval is the fixed period between fetch cycles.
const DefaultPollInterval = 30 * time.Second

// PollerOptions contains configuration for creating a Poller.
type PollerOptions struct {
	Fetcher     *Fetcher
	Accumulator *Accumulator
	PoolID      string
	Interval    time.Duration // Default: 30s
	Logger      *log.Logger
}

// Poller drives the fetch-and-accumulate cycle on a fixed period, plus one
// immediate cycle at startup. A tick that arrives while the previous fetch is
// still in flight is skipped, never overlapped, so snapshots are applied in
// order. A fetch in flight at shutdown is abandoned and its late result
// discarded.
type Poller struct {
	fetcher     *Fetcher
	accumulator *Accumulator
	poolID      string
	interval    time.Duration
	logger      *log.Logger

	mu            sync.Mutex
	inFlight      bool
	latest        *domain.PoolSnapshot
	latestOutcome Outcome
	lastAttempt   time.Time
	ticks         int64
	skipped       int64
	absences      int64
}

// NewPoller creates a Poller.
func NewPoller(opts PollerOptions) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Poller{
		fetcher:     opts.Fetcher,
		accumulator: opts.Accumulator,
		poolID:      opts.PoolID,
		interval:    interval,
		logger:      logger,
	}
}

// Run starts the polling loop. It blocks until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Printf("Starting market poller for pool %s (interval %v)", p.poolID, p.interval)

	// First point lands without waiting a full period.
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick launches one fetch cycle unless the previous one has not resolved.
func (p *Poller) tick(ctx context.Context) {
	p.mu.Lock()
	if p.inFlight {
		p.skipped++
		p.mu.Unlock()
		p.logger.Println("Previous fetch still in flight, skipping tick")
		observability.RecordPollSkipped()
		return
	}
	p.inFlight = true
	p.ticks++
	p.mu.Unlock()

	go func() {
		defer func() {
			p.mu.Lock()
			p.inFlight = false
			p.mu.Unlock()
		}()
		p.runCycle(ctx)
	}()
}

// runCycle performs one fetch-and-accumulate cycle.
func (p *Poller) runCycle(ctx context.Context) {
	start := time.Now()
	snap, outcome := p.fetcher.Fetch(ctx, p.poolID)

	// The poller may have been torn down while the fetch was outstanding;
	// a late result must not be applied.
	if ctx.Err() != nil {
		p.logger.Println("Poller stopped during fetch, discarding result")
		return
	}

	observability.RecordPoolFetch(outcome.String(), time.Since(start).Seconds())

	now := time.Now()

	p.mu.Lock()
	p.lastAttempt = now
	p.latestOutcome = outcome
	if snap != nil {
		p.latest = snap
	} else {
		p.absences++
	}
	p.mu.Unlock()

	// Absent ticks are invisible in the series: length unchanged, no gap
	// marker, so the time axis is not guaranteed evenly spaced.
	p.accumulator.Record(snap, now)
	observability.SetHistoryLength(p.accumulator.Len())

	if snap != nil {
		observability.SetLastSnapshot(now.Unix())
		p.logger.Printf("Snapshot applied (%s): price=%s mcap=%s points=%d",
			outcome, snap.PriceUsd, snap.MarketCap, p.accumulator.Len())
	}
}

// Latest returns the most recent snapshot (nil before the first success or
// fallback), its outcome tag, and the time of the last completed attempt.
func (p *Poller) Latest() (*domain.PoolSnapshot, Outcome, time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.latestOutcome, p.lastAttempt
}

// PollerStats are cumulative loop counters for the status endpoint.
type PollerStats struct {
	Ticks    int64 `json:"ticks"`
	Skipped  int64 `json:"skipped"`
	Absences int64 `json:"absences"`
}

// Stats returns cumulative loop counters.
func (p *Poller) Stats() PollerStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PollerStats{Ticks: p.ticks, Skipped: p.skipped, Absences: p.absences}
}
