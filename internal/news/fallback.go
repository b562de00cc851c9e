package news

import "megatron-solana/internal/domain"

// Fallback returns the static payload served when the proxy fails or the
// page markup is unrecognizable. A fresh copy each call; callers may hold it.
func Fallback() *domain.MarketPulse {
	return &domain.MarketPulse{
		Trends: []domain.MarketTrend{
			{Title: "S&P 500", Value: "5,420.10", Change: "+1.2%", Positive: true},
			{Title: "Nasdaq", Value: "17,300.50", Change: "+0.8%", Positive: true},
			{Title: "Bitcoin", Value: "$64,200.00", Change: "-0.5%", Positive: false},
			{Title: "Solana", Value: "$145.00", Change: "+5.2%", Positive: true},
		},
		News: []domain.NewsItem{
			{Title: "Solana Transaction Volume Hits Record High", Source: "CryptoDaily", Time: "1h ago"},
			{Title: "Global Markets Rally as Inflation Cools", Source: "Bloomberg", Time: "2h ago"},
			{Title: "Tech Stocks Lead Market Surge", Source: "Reuters", Time: "3h ago"},
			{Title: "Crypto Regulation Talks Heat Up", Source: "CoinDesk", Time: "5h ago"},
			{Title: "AI Sector Continues to Dominate", Source: "TechCrunch", Time: "6h ago"},
		},
	}
}
