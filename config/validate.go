package config

import "fmt"

// Validate checks runtime node config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}
	if (cfg.MinFeePerCostDenominator == 0) != (cfg.MinFeePerCostNumerator == 0) {
		return fmt.Errorf("minfeerate numerator and denominator must both be zero or both be set")
	}
	return nil
}
