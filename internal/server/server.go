// Package server exposes the dashboard state over an HTTP JSON API:
// the latest pool snapshot, the price/volume history series, the market
// pulse feed and the wallet operations.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"megatron-solana/internal/config"
	"megatron-solana/internal/domain"
	"megatron-solana/internal/market"
	"megatron-solana/internal/news"
	"megatron-solana/internal/observability"
	"megatron-solana/internal/wallet"
)

// newsTTL caches the scraped market pulse between requests.
const newsTTL = 5 * time.Minute

// Options contains configuration for creating a Server.
type Options struct {
	Config      config.Config
	Poller      *market.Poller
	Accumulator *market.Accumulator
	News        *news.Scraper
	Wallet      *wallet.Service
	Logger      *log.Logger
}

// Server holds the HTTP handlers and the single wallet session.
type Server struct {
	cfg         config.Config
	poller      *market.Poller
	accumulator *market.Accumulator
	news        *news.Scraper
	wallet      *wallet.Service
	logger      *log.Logger
	started     time.Time

	mu           sync.Mutex
	session      *wallet.Session
	pulse        *domain.MarketPulse
	pulseFetched time.Time
}

// New creates a Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		cfg:         opts.Config,
		poller:      opts.Poller,
		accumulator: opts.Accumulator,
		news:        opts.News,
		wallet:      opts.Wallet,
		logger:      logger,
		started:     time.Now(),
	}
}

// Routes returns the request multiplexer for the API.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	mux.HandleFunc("/api/pool", s.handlePool)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/news", s.handleNews)
	mux.HandleFunc("/api/status", s.handleStatus)

	mux.HandleFunc("/api/wallet/import", s.handleWalletImport)
	mux.HandleFunc("/api/wallet/transfer", s.handleWalletTransfer)
	mux.HandleFunc("/api/wallet/buy", s.handleWalletBuy)

	return mux
}

// WarmNews fetches the market pulse once so the first /api/news request is
// served from cache. Meant to run in its own goroutine at startup.
func (s *Server) WarmNews(ctx context.Context) {
	pulse := s.news.Fetch(ctx)
	s.mu.Lock()
	s.pulse = pulse
	s.pulseFetched = time.Now()
	s.mu.Unlock()
}

// PoolResponse is the JSON response for /api/pool.
type PoolResponse struct {
	Connecting bool                 `json:"connecting"`
	Outcome    string               `json:"outcome,omitempty"`
	FetchedAt  time.Time            `json:"fetchedAt,omitempty"`
	Pool       *domain.PoolSnapshot `json:"pool,omitempty"`
}

// handlePool returns the latest snapshot. Before the first successful cycle
// it answers 200 with connecting=true; fetch failures never surface as 5xx.
func (s *Server) handlePool(w http.ResponseWriter, r *http.Request) {
	snap, outcome, at := s.poller.Latest()
	if snap == nil {
		writeJSON(w, http.StatusOK, PoolResponse{Connecting: true})
		return
	}
	writeJSON(w, http.StatusOK, PoolResponse{
		Connecting: false,
		Outcome:    outcome.String(),
		FetchedAt:  at,
		Pool:       snap,
	})
}

// HistoryResponse is the JSON response for /api/history.
type HistoryResponse struct {
	Points []domain.HistoryPoint `json:"points"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	points := s.accumulator.Series()
	if points == nil {
		points = []domain.HistoryPoint{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Points: points})
}

// handleNews serves the market pulse, refreshing the cached copy when stale.
// The scraper itself falls back to static content, so this always succeeds.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	pulse := s.pulse
	stale := pulse == nil || time.Since(s.pulseFetched) > newsTTL
	s.mu.Unlock()

	if stale {
		pulse = s.news.Fetch(r.Context())
		s.mu.Lock()
		s.pulse = pulse
		s.pulseFetched = time.Now()
		s.mu.Unlock()
	}

	writeJSON(w, http.StatusOK, pulse)
}

// StatusResponse is the JSON response for /api/status.
type StatusResponse struct {
	Status          string    `json:"status"`
	Uptime          string    `json:"uptime"`
	Started         time.Time `json:"started"`
	PollTicks       int64     `json:"poll_ticks"`
	PollSkipped     int64     `json:"poll_skipped"`
	PollAbsences    int64     `json:"poll_absences"`
	HistoryLength   int       `json:"history_length"`
	LastOutcome     string    `json:"last_outcome"`
	WalletConnected bool      `json:"wallet_connected"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.poller.Stats()
	_, outcome, _ := s.poller.Latest()

	s.mu.Lock()
	connected := s.session != nil && s.session.State.Connected
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:          "running",
		Uptime:          time.Since(s.started).String(),
		Started:         s.started,
		PollTicks:       stats.Ticks,
		PollSkipped:     stats.Skipped,
		PollAbsences:    stats.Absences,
		HistoryLength:   s.accumulator.Len(),
		LastOutcome:     outcome.String(),
		WalletConnected: connected,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
