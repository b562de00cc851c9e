package market

import (
	"fmt"
	"sync"
	"time"

	"megatron-solana/internal/domain"
)

// Accumulator maintains the bounded, insertion-ordered chart history.
// Record replaces the whole backing slice on each append, so a slice handed
// out by Series stays valid while the poller keeps appending.
type Accumulator struct {
	mu     sync.Mutex
	points []domain.HistoryPoint
	cap    int
}

// NewAccumulator creates an Accumulator with the given capacity. A
// non-positive capacity falls back to domain.HistoryCap.
func NewAccumulator(capacity int) *Accumulator {
	if capacity <= 0 {
		capacity = domain.HistoryCap
	}
	return &Accumulator{cap: capacity}
}

// Record appends one point derived from the snapshot and the wall clock.
// A nil snapshot (failed tick) is a no-op: no point, no gap marker. Once the
// series exceeds capacity only the most recent points are retained, in
// original insertion order.
func (a *Accumulator) Record(snap *domain.PoolSnapshot, now time.Time) {
	if snap == nil {
		return
	}

	point := domain.HistoryPoint{
		Time:   ClockLabel(now),
		Price:  parseDecimal(snap.PriceUsd),
		Volume: parseDecimal(snap.Volume24h),
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	next := make([]domain.HistoryPoint, 0, len(a.points)+1)
	next = append(next, a.points...)
	next = append(next, point)
	if len(next) > a.cap {
		next = next[len(next)-a.cap:]
	}
	a.points = next
}

// Series returns the current history, oldest first. The returned slice is
// never mutated afterwards; treat it as read-only.
func (a *Accumulator) Series() []domain.HistoryPoint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.points
}

// Len returns the current series length.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.points)
}

// ClockLabel formats t as the chart's time axis label: unpadded 24-hour
// hour, zero-padded minutes and seconds ("9:05:03", "14:22:00").
func ClockLabel(t time.Time) string {
	return fmt.Sprintf("%d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}
