package domain

// PoolSnapshot represents one point-in-time read of a trading pool's market
// state, normalized from the market-data API. All numeric fields are decimal
// strings; PriceChange24h is the only one that may be negative. A snapshot is
// immutable once constructed and superseded snapshots are simply discarded.
type PoolSnapshot struct {
	PriceUsd       string `json:"priceUsd"`
	PriceChange24h string `json:"priceChange24h"` // percent over 24h
	Volume24h      string `json:"volume24h"`      // USD
	Liquidity      string `json:"liquidity"`      // USD
	MarketCap      string `json:"marketCap"`      // USD
	FDV            string `json:"fdv"`            // USD
	PairName       string `json:"pairName"`
}
