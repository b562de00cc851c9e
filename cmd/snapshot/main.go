// Package main fetches one pool snapshot and prints it as JSON. Useful for
// checking the market-data pipeline and the override transform without
// running the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"megatron-solana/internal/config"
	"megatron-solana/internal/gecko"
	"megatron-solana/internal/market"
)

func main() {
	config.LoadEnvFile(".env")

	poolAddress := flag.String("pool", config.Env("POOL_ADDRESS", config.DefaultPoolAddress), "Trading pool address")
	overrideEnabled := flag.Bool("override", false, "Enable the price override transform")
	overridePrice := flag.Float64("override-price", config.DefaultOverrideTargetPrice, "Override target price in USD")
	timeout := flag.Duration("timeout", 15*time.Second, "Fetch timeout")

	flag.Parse()

	logger := log.New(os.Stderr, "[snapshot] ", log.LstdFlags)

	fetcher := market.NewFetcher(gecko.NewClient(), market.OverrideConfig{
		Enabled:        *overrideEnabled,
		TargetPriceUsd: *overridePrice,
		SolRate:        config.DefaultOverrideSolRate,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	snap, outcome := fetcher.Fetch(ctx, *poolAddress)
	logger.Printf("Outcome: %s", outcome)
	if snap == nil {
		logger.Fatal("No snapshot available")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		logger.Fatalf("Encode snapshot: %v", err)
	}
}
