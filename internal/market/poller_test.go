package market

import (
	"context"
	"testing"
	"time"

	"megatron-solana/internal/gecko"
)

// blockingSource holds every fetch until release is closed.
type blockingSource struct {
	release chan struct{}
}

func (b *blockingSource) PoolAttributes(ctx context.Context, poolID string) (*gecko.PoolAttributes, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return attrsWith("6.25", "450000", "450000"), nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached within 2s")
}

func newTestPoller(source Source) (*Poller, *Accumulator) {
	acc := NewAccumulator(0)
	fetcher := NewFetcher(source, OverrideConfig{}, nil)
	p := NewPoller(PollerOptions{
		Fetcher:     fetcher,
		Accumulator: acc,
		PoolID:      "pool1",
		Interval:    time.Hour,
	})
	return p, acc
}

func TestPoller_TickSkippedWhileInFlight(t *testing.T) {
	source := &blockingSource{release: make(chan struct{})}
	p, acc := newTestPoller(source)

	ctx := context.Background()
	p.tick(ctx)
	waitFor(t, func() bool { return p.Stats().Ticks == 1 })

	// Second tick arrives while the first fetch is still blocked.
	p.tick(ctx)

	stats := p.Stats()
	if stats.Ticks != 1 {
		t.Errorf("ticks mismatch: got %d, want 1", stats.Ticks)
	}
	if stats.Skipped != 1 {
		t.Errorf("skipped mismatch: got %d, want 1", stats.Skipped)
	}

	close(source.release)
	waitFor(t, func() bool { return acc.Len() == 1 })

	// The loop recovers after the slow fetch resolves.
	p.tick(ctx)
	waitFor(t, func() bool { return acc.Len() == 2 })
}

func TestPoller_LateResultDiscardedAfterCancel(t *testing.T) {
	source := &blockingSource{release: make(chan struct{})}
	p, acc := newTestPoller(source)

	ctx, cancel := context.WithCancel(context.Background())
	p.tick(ctx)
	waitFor(t, func() bool { return p.Stats().Ticks == 1 })

	cancel()
	close(source.release)

	waitFor(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return !p.inFlight
	})

	if acc.Len() != 0 {
		t.Errorf("late result was applied: series length %d, want 0", acc.Len())
	}
	if snap, _, _ := p.Latest(); snap != nil {
		t.Errorf("late result was applied: latest %+v, want nil", snap)
	}
}

func TestPoller_RunStartsWithImmediateCycle(t *testing.T) {
	source := &fakeSource{attrs: attrsWith("6.25", "450000", "450000")}
	p, acc := newTestPoller(source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go p.Run(ctx)

	// Interval is one hour, so the only way a point appears quickly is the
	// startup cycle.
	waitFor(t, func() bool { return acc.Len() == 1 })

	snap, outcome, _ := p.Latest()
	if snap == nil || snap.PriceUsd != "6.25" {
		t.Errorf("latest snapshot mismatch: got %+v", snap)
	}
	if outcome != OutcomeLive {
		t.Errorf("outcome mismatch: got %s, want live", outcome)
	}
}
