package domain

// HistoryCap is the maximum number of points retained in a chart history
// series. Older points are evicted from the front once the cap is exceeded.
const HistoryCap = 50

// HistoryPoint is one entry in the accumulated chart time series, derived
// from a PoolSnapshot plus the wall clock at accumulation time.
type HistoryPoint struct {
	Time   string  `json:"time"` // local clock label, e.g. "9:05:03"
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}
