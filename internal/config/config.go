// Package config holds runtime configuration for the dashboard service.
// Values come from flags with environment variables as defaults, plus an
// optional .env file; an explicit Config is passed down to components so no
// process-wide mutable state exists.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Default addresses and endpoints. The pool and token addresses identify the
// Diamond token and its trading pool; they are overridable per run.
const (
	DefaultRPCEndpoint     = "https://api.mainnet-beta.solana.com"
	DefaultWSEndpoint      = "wss://api.mainnet-beta.solana.com"
	DefaultTokenAddress    = "4AtnF1pPmqABPDQtCogqS2LqDkNtuzMg76yQRjuJpump"
	DefaultPoolAddress     = "8oiVbfQT4ErS1wciaTuJhCSn1EuPn37wThA5MypiBq6K"
	DefaultTreasuryAddress = "5VqjB57PnrTUSQRoN8skwKtstqPrMFJiZaDGz6BF5FuK"

	DefaultPollInterval = 30 * time.Second
	DefaultListenAddr   = ":8080"

	// DefaultOverrideTargetPrice is the forced display price when the
	// market override is enabled.
	DefaultOverrideTargetPrice = 6.00

	// DefaultOverrideSolRate is the SOL/USD rate assumed by the override.
	DefaultOverrideSolRate = 150.0
)

// Config is the full service configuration.
type Config struct {
	// Market data
	PoolAddress  string
	PollInterval time.Duration

	// Override transform
	OverrideEnabled     bool
	OverrideTargetPrice float64
	OverrideSolRate     float64

	// Wallet / chain
	RPCEndpoint     string
	WSEndpoint      string
	TokenAddress    string
	TreasuryAddress string

	// HTTP
	ListenAddr string
}

// Default returns a Config populated with the compiled-in defaults.
func Default() Config {
	return Config{
		PoolAddress:         DefaultPoolAddress,
		PollInterval:        DefaultPollInterval,
		OverrideEnabled:     false,
		OverrideTargetPrice: DefaultOverrideTargetPrice,
		OverrideSolRate:     DefaultOverrideSolRate,
		RPCEndpoint:         DefaultRPCEndpoint,
		WSEndpoint:          DefaultWSEndpoint,
		TokenAddress:        DefaultTokenAddress,
		TreasuryAddress:     DefaultTreasuryAddress,
		ListenAddr:          DefaultListenAddr,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.PoolAddress == "" {
		return fmt.Errorf("pool address is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.PollInterval)
	}
	if err := checkEndpoint(c.RPCEndpoint, "http", "https"); err != nil {
		return fmt.Errorf("rpc endpoint: %w", err)
	}
	if c.WSEndpoint != "" {
		if err := checkEndpoint(c.WSEndpoint, "ws", "wss"); err != nil {
			return fmt.Errorf("ws endpoint: %w", err)
		}
	}
	if c.OverrideEnabled && c.OverrideTargetPrice <= 0 {
		return fmt.Errorf("override target price must be positive, got %v", c.OverrideTargetPrice)
	}
	return nil
}

func checkEndpoint(endpoint string, schemes ...string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parse %q: %w", endpoint, err)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			if u.Host == "" {
				return fmt.Errorf("missing host in %q", endpoint)
			}
			return nil
		}
	}
	return fmt.Errorf("unsupported scheme %q in %q (want one of %v)", u.Scheme, endpoint, schemes)
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment. Existing environment variables are not overridden. A missing
// file is not an error.
func LoadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

// Env returns the environment variable value or a fallback.
func Env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
