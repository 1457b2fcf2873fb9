package config

import "github.com/agbru/picalc/internal/integration"

// ApplyAdaptiveWorkers fills in a zero worker count with EstimateOptimalWorkers.
// Explicit values from flags, environment or a calibration profile are kept.
func ApplyAdaptiveWorkers(cfg AppConfig) AppConfig {
	if cfg.Workers == 0 {
		cfg.Workers = EstimateOptimalWorkers(cfg.MaxWorkers)
	}
	return cfg
}

// EstimateOptimalWorkers returns the hardware concurrency, capped by limit
// when limit is positive. The integrand loop is CPU-bound with no I/O, so
// one worker per usable core is the natural default.
func EstimateOptimalWorkers(limit int) int {
	n := integration.HardwareConcurrency()
	if limit > 0 {
		n = min(n, limit)
	}
	return n
}
