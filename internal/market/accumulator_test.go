package market

import (
	"fmt"
	"testing"
	"time"

	"megatron-solana/internal/domain"
)

func snapAt(price, volume string) *domain.PoolSnapshot {
	return &domain.PoolSnapshot{PriceUsd: price, Volume24h: volume}
}

func TestAccumulator_RecordAndSeries(t *testing.T) {
	acc := NewAccumulator(0)
	now := time.Date(2025, 3, 1, 9, 5, 7, 0, time.UTC)

	acc.Record(snapAt("6.25", "450000"), now)

	series := acc.Series()
	if len(series) != 1 {
		t.Fatalf("series length mismatch: got %d, want 1", len(series))
	}
	p := series[0]
	if p.Time != "9:05:07" {
		t.Errorf("Time mismatch: got %s, want 9:05:07", p.Time)
	}
	if p.Price != 6.25 {
		t.Errorf("Price mismatch: got %v, want 6.25", p.Price)
	}
	if p.Volume != 450000 {
		t.Errorf("Volume mismatch: got %v, want 450000", p.Volume)
	}
}

func TestAccumulator_NilSnapshotIsNoOp(t *testing.T) {
	acc := NewAccumulator(0)
	acc.Record(snapAt("1", "1"), time.Now())
	acc.Record(nil, time.Now())

	if acc.Len() != 1 {
		t.Errorf("length mismatch after nil record: got %d, want 1", acc.Len())
	}
}

func TestAccumulator_CapEvictsFromFront(t *testing.T) {
	acc := NewAccumulator(0)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < domain.HistoryCap+10; i++ {
		acc.Record(snapAt(fmt.Sprintf("%d", i), "0"), base.Add(time.Duration(i)*time.Second))
	}

	series := acc.Series()
	if len(series) != domain.HistoryCap {
		t.Fatalf("series length mismatch: got %d, want %d", len(series), domain.HistoryCap)
	}
	// Oldest surviving point is number 10; newest is 59.
	if series[0].Price != 10 {
		t.Errorf("front mismatch: got %v, want 10", series[0].Price)
	}
	if series[len(series)-1].Price != float64(domain.HistoryCap+9) {
		t.Errorf("back mismatch: got %v, want %d", series[len(series)-1].Price, domain.HistoryCap+9)
	}
}

func TestAccumulator_SeriesIsStableWhileRecording(t *testing.T) {
	acc := NewAccumulator(0)
	acc.Record(snapAt("1", "0"), time.Now())

	held := acc.Series()
	acc.Record(snapAt("2", "0"), time.Now())

	if len(held) != 1 {
		t.Errorf("held series changed length: got %d, want 1", len(held))
	}
	if held[0].Price != 1 {
		t.Errorf("held series changed contents: got %v, want 1", held[0].Price)
	}
	if acc.Len() != 2 {
		t.Errorf("accumulator length mismatch: got %d, want 2", acc.Len())
	}
}

func TestClockLabel(t *testing.T) {
	tests := []struct {
		hour, min, sec int
		want           string
	}{
		{9, 5, 7, "9:05:07"},
		{14, 30, 0, "14:30:00"},
		{0, 0, 9, "0:00:09"},
	}
	for _, tt := range tests {
		ts := time.Date(2025, 3, 1, tt.hour, tt.min, tt.sec, 0, time.UTC)
		if got := ClockLabel(ts); got != tt.want {
			t.Errorf("ClockLabel(%d:%d:%d) = %s, want %s", tt.hour, tt.min, tt.sec, got, tt.want)
		}
	}
}
