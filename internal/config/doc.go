// Package config parses command-line flags and PICALC_* environment
// variables into an AppConfig and validates it.
//
// Resolution order, highest priority first: command-line flags, environment
// variables, the cached calibration profile, then hardware-based defaults.
package config
