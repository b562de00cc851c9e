// Package market implements the pool market-data pipeline: a fail-soft
// fetcher with the price-override transform, and a bounded in-memory history
// accumulator driven by a polling loop.
package market

import (
	"context"
	"log"
	"strconv"

	"megatron-solana/internal/domain"
	"megatron-solana/internal/gecko"
)

// Reference values used by the override transform when the raw payload
// carries a zero price or market cap. Preserved verbatim from the legacy
// override script; their derivation is undocumented, do not reinterpret.
const (
	referenceOriginalPrice = 0.053881
	referenceMarketCap     = 3880.78
)

// fallbackPairName is the pair label on the hardcoded fallback snapshot.
const fallbackPairName = "DMT / SOL"

// Outcome tags how a fetch cycle produced (or failed to produce) a snapshot.
// Callers that only care about display continuity can ignore it; it exists
// so observability can distinguish live data from the fallback path.
type Outcome int

const (
	// OutcomeAbsent means no snapshot could be produced.
	OutcomeAbsent Outcome = iota
	// OutcomeLive means the snapshot came from the remote service.
	OutcomeLive
	// OutcomeFallback means the remote call failed and the hardcoded
	// fallback snapshot was substituted.
	OutcomeFallback
)

// String returns the outcome label for logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeLive:
		return "live"
	case OutcomeFallback:
		return "fallback"
	default:
		return "absent"
	}
}

// OverrideConfig forces displayed price, market cap and FDV to track a fixed
// target regardless of real market data. Set once at startup, read-only after.
type OverrideConfig struct {
	Enabled        bool
	TargetPriceUsd float64
	SolRate        float64
}

// Source provides raw pool attributes. *gecko.Client satisfies it.
type Source interface {
	PoolAttributes(ctx context.Context, poolID string) (*gecko.PoolAttributes, error)
}

// Fetcher performs one fetch-and-normalize cycle per call. It fails soft:
// every failure mode collapses to either the fallback snapshot (override
// enabled) or absence (override disabled), never an error.
type Fetcher struct {
	source   Source
	override OverrideConfig
	logger   *log.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(source Source, override OverrideConfig, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{
		source:   source,
		override: override,
		logger:   logger,
	}
}

// Fetch retrieves and normalizes one snapshot for the pool. The returned
// snapshot is nil only when the outcome is OutcomeAbsent.
func (f *Fetcher) Fetch(ctx context.Context, poolID string) (*domain.PoolSnapshot, Outcome) {
	attrs, err := f.source.PoolAttributes(ctx, poolID)
	if err != nil {
		f.logger.Printf("pool data fetch failed: %v", err)
		if f.override.Enabled {
			return f.fallbackSnapshot(), OutcomeFallback
		}
		return nil, OutcomeAbsent
	}

	priceUsd := parseDecimal(attrs.BaseTokenPriceUsd)
	marketCap := parseDecimal(attrs.MarketCapUsd)
	fdv := parseDecimal(attrs.FdvUsd)

	if f.override.Enabled {
		priceUsd, marketCap, fdv = applyOverride(f.override.TargetPriceUsd, priceUsd, marketCap, fdv)
	}

	return &domain.PoolSnapshot{
		PriceUsd:       formatDecimal(priceUsd),
		PriceChange24h: attrs.PriceChangePercentage.H24,
		Volume24h:      attrs.VolumeUsd.H24,
		Liquidity:      attrs.ReserveInUsd,
		MarketCap:      formatDecimal(marketCap),
		FDV:            formatDecimal(fdv),
		PairName:       attrs.Name,
	}, OutcomeLive
}

// applyOverride rescales price, market cap and FDV toward the target price.
// Ordering matters: the FDV fallback substitutes the already-transformed
// market cap, not the raw one. Apply exactly once per raw fetch; re-applying
// to an overridden snapshot recomputes the ratio against the forced price.
func applyOverride(target, rawPrice, rawMarketCap, rawFDV float64) (price, marketCap, fdv float64) {
	original := rawPrice
	if original == 0 {
		original = referenceOriginalPrice
	}
	ratio := target / original

	price = target

	if rawMarketCap > 0 {
		marketCap = rawMarketCap * ratio
	} else {
		marketCap = referenceMarketCap * ratio
	}

	if rawFDV > 0 {
		fdv = rawFDV * ratio
	} else {
		fdv = marketCap
	}

	return price, marketCap, fdv
}

// fallbackSnapshot is the deterministic placeholder served when the remote
// call fails with the override enabled.
func (f *Fetcher) fallbackSnapshot() *domain.PoolSnapshot {
	cap := referenceMarketCap * (f.override.TargetPriceUsd / referenceOriginalPrice)
	return &domain.PoolSnapshot{
		PriceUsd:       formatDecimal(f.override.TargetPriceUsd),
		PriceChange24h: "12.5",
		Volume24h:      "450000",
		Liquidity:      "85000",
		MarketCap:      formatDecimal(cap),
		FDV:            formatDecimal(cap),
		PairName:       fallbackPairName,
	}
}

// parseDecimal parses a decimal string, treating absent or malformed values
// as zero.
func parseDecimal(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// formatDecimal serializes a numeric result back to a decimal string for the
// output record.
func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
