package domain

// MarketTrend is one global market index chip (e.g. "S&P 500").
type MarketTrend struct {
	Title    string `json:"title"`
	Value    string `json:"value"`
	Change   string `json:"change"`
	Positive bool   `json:"isPositive"`
}

// NewsItem is one scraped financial headline.
type NewsItem struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Time   string `json:"time"`
}

// MarketPulse bundles the scraped trends and headlines shown on the
// dashboard. Best-effort data: it may be the static fallback payload.
type MarketPulse struct {
	Trends []MarketTrend `json:"marketTrends"`
	News   []NewsItem    `json:"news"`
}
