package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// BpsScale is the fixed-point scale used for RTP targets and reveal
// coverage: 10000 basis points = 100%.
const BpsScale = 10000

// Config holds all application configuration
type Config struct {
	// HTTP configuration
	HTTPAddr string

	// Database configuration
	DatabaseURL string

	// Ledger configuration
	StartingBalance int64 // granted once when an account is first seen, minor units

	// Game configuration
	DefaultRTPBps      int64         // win-rate target applied to categories without their own
	RevealThresholdBps int64         // scratch coverage at which a play counts as revealed
	OrphanPlayTimeout  time.Duration // purchased-but-unsettled age before reconciliation picks a play up
	SweepInterval      time.Duration // how often the reconciliation worker runs

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		HTTPAddr:    os.Getenv("HTTP_ADDR"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Defaults mirror the observed product: R$10.00 starting credit,
		// 30% win-rate target, reveal at half the card scratched, hour-old
		// purchased plays swept every minute.
		StartingBalance:    1000,
		DefaultRTPBps:      3000,
		RevealThresholdBps: 5000,
		OrphanPlayTimeout:  time.Hour,
		SweepInterval:      time.Minute,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.HTTPAddr == "" {
		config.HTTPAddr = ":8080"
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsed
		}
	}
	if rtp := os.Getenv("DEFAULT_RTP_BPS"); rtp != "" {
		if parsed, err := strconv.ParseInt(rtp, 10, 64); err == nil {
			config.DefaultRTPBps = parsed
		}
	}
	if threshold := os.Getenv("REVEAL_THRESHOLD_BPS"); threshold != "" {
		if parsed, err := strconv.ParseInt(threshold, 10, 64); err == nil {
			config.RevealThresholdBps = parsed
		}
	}
	if minutes := os.Getenv("ORPHAN_PLAY_TIMEOUT_MINUTES"); minutes != "" {
		if parsed, err := strconv.Atoi(minutes); err == nil && parsed > 0 {
			config.OrphanPlayTimeout = time.Duration(parsed) * time.Minute
		}
	}
	if seconds := os.Getenv("SWEEP_INTERVAL_SECONDS"); seconds != "" {
		if parsed, err := strconv.Atoi(seconds); err == nil && parsed > 0 {
			config.SweepInterval = time.Duration(parsed) * time.Second
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	// Configuration errors are fatal at startup, never per-play.
	if config.DefaultRTPBps < 0 || config.DefaultRTPBps > BpsScale {
		return nil, fmt.Errorf("DEFAULT_RTP_BPS must be within [0, %d], got %d", BpsScale, config.DefaultRTPBps)
	}
	if config.RevealThresholdBps <= 0 || config.RevealThresholdBps > BpsScale {
		return nil, fmt.Errorf("REVEAL_THRESHOLD_BPS must be within (0, %d], got %d", BpsScale, config.RevealThresholdBps)
	}
	if config.StartingBalance < 0 {
		return nil, fmt.Errorf("STARTING_BALANCE must not be negative")
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
