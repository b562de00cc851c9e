// Package main runs the dashboard service:
// - Poller (continuous): fetches pool market data every 30s into the history series
// - News (on demand, cached): Google Finance market pulse with static fallback
// - HTTP API: pool/history/news/status plus wallet import, transfer and buy
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"megatron-solana/internal/config"
	"megatron-solana/internal/gecko"
	"megatron-solana/internal/market"
	"megatron-solana/internal/news"
	"megatron-solana/internal/server"
	"megatron-solana/internal/wallet"
)

func main() {
	config.LoadEnvFile(".env")

	// Parse flags (env vars as defaults)
	poolAddress := flag.String("pool", config.Env("POOL_ADDRESS", config.DefaultPoolAddress), "Trading pool address to poll")
	tokenAddress := flag.String("token", config.Env("TOKEN_ADDRESS", config.DefaultTokenAddress), "Token mint address")
	treasuryAddress := flag.String("treasury", config.Env("TREASURY_ADDRESS", config.DefaultTreasuryAddress), "Treasury address for the token gas fee")
	rpcEndpoint := flag.String("rpc-endpoint", config.Env("SOLANA_RPC_ENDPOINT", config.DefaultRPCEndpoint), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", config.Env("SOLANA_WS_ENDPOINT", config.DefaultWSEndpoint), "Solana WebSocket endpoint")
	pollInterval := flag.Duration("poll-interval", envDuration("POLL_INTERVAL", config.DefaultPollInterval), "Market data poll interval")
	listenAddr := flag.String("listen-addr", config.Env("LISTEN_ADDR", config.DefaultListenAddr), "HTTP listen address")
	overrideEnabled := flag.Bool("override", envBool("OVERRIDE_ENABLED", false), "Enable the price override transform")
	overridePrice := flag.Float64("override-price", envFloat("OVERRIDE_TARGET_PRICE", config.DefaultOverrideTargetPrice), "Override target price in USD")
	overrideSolRate := flag.Float64("override-sol-rate", envFloat("OVERRIDE_SOL_RATE", config.DefaultOverrideSolRate), "SOL/USD rate assumed by the override")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg := config.Config{
		PoolAddress:         *poolAddress,
		PollInterval:        *pollInterval,
		OverrideEnabled:     *overrideEnabled,
		OverrideTargetPrice: *overridePrice,
		OverrideSolRate:     *overrideSolRate,
		RPCEndpoint:         *rpcEndpoint,
		WSEndpoint:          *wsEndpoint,
		TokenAddress:        *tokenAddress,
		TreasuryAddress:     *treasuryAddress,
		ListenAddr:          *listenAddr,
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	logger.Printf("Polling pool %s every %v (override: %v)", cfg.PoolAddress, cfg.PollInterval, cfg.OverrideEnabled)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Market data pipeline
	source := gecko.NewClient()
	fetcher := market.NewFetcher(source, market.OverrideConfig{
		Enabled:        cfg.OverrideEnabled,
		TargetPriceUsd: cfg.OverrideTargetPrice,
		SolRate:        cfg.OverrideSolRate,
	}, log.New(os.Stdout, "[market] ", log.LstdFlags))

	accumulator := market.NewAccumulator(0)
	poller := market.NewPoller(market.PollerOptions{
		Fetcher:     fetcher,
		Accumulator: accumulator,
		PoolID:      cfg.PoolAddress,
		Interval:    cfg.PollInterval,
		Logger:      log.New(os.Stdout, "[poller] ", log.LstdFlags),
	})

	// News and wallet
	scraper := news.NewScraper(news.ScraperOptions{
		Logger: log.New(os.Stdout, "[news] ", log.LstdFlags),
	})
	walletSvc := wallet.NewService(wallet.ServiceOptions{
		Config: cfg,
		Logger: log.New(os.Stdout, "[wallet] ", log.LstdFlags),
	})

	srv := server.New(server.Options{
		Config:      cfg,
		Poller:      poller,
		Accumulator: accumulator,
		News:        scraper,
		Wallet:      walletSvc,
		Logger:      logger,
	})

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Routes(),
	}

	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	errCh := make(chan error, 2)

	go srv.WarmNews(ctx)

	go func() {
		if err := poller.Run(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("poller: %w", err)
		}
	}()

	go func() {
		logger.Printf("Starting HTTP server on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
		cancel()
	}
	done <- err

	if err != nil {
		logger.Fatalf("Server error: %v", err)
	}
	logger.Println("Shutdown complete")
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
