// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Protocol rules: constant across every participant, defined in
//     genesis.go
//   - Node settings: runtime configuration, can vary per node, defined
//     below
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// =============================================================================
// Node Configuration (runtime, per-node settings)
// =============================================================================

// Config holds node-specific runtime configuration. These settings can
// vary between nodes without changing what bundles they accept.
type Config struct {
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	Log LogConfig

	// MaxCost overrides MAX_BLOCK_COST for a single node, e.g. for test
	// harnesses that want a tighter ceiling. Zero means use the protocol
	// default.
	MaxCost uint64 `conf:"maxcost"`

	// MinFeePerCostNumerator/Denominator set a node-local floor on
	// fee_per_cost for admission, stricter than the mempool's own
	// capacity-driven floor. Zero denominator means no floor.
	MinFeePerCostNumerator   uint64 `conf:"minfeerate.num"`
	MinFeePerCostDenominator uint64 `conf:"minfeerate.denom"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.spendbench
//	macOS:   ~/Library/Application Support/Spendbench
//	Windows: %APPDATA%\Spendbench
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spendbench"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Spendbench")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Spendbench")
		}
		return filepath.Join(home, "AppData", "Roaming", "Spendbench")
	default:
		return filepath.Join(home, ".spendbench")
	}
}

// ChainDataDir returns the chain-specific data directory.
func (c *Config) ChainDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// UnspentDir returns the unspent-index database directory.
func (c *Config) UnspentDir() string {
	return filepath.Join(c.ChainDataDir(), "unspent")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "spendbench.conf")
}
