// Package config defines the configuration structures for the xpid
// detector. No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import "fmt"

// RunConfig holds detection run parameters.
type RunConfig struct {
	// Jobs bounds the number of structures processed concurrently.
	Jobs int `mapstructure:"jobs"`
	// HydrogenMode is the hydrogen preparation mode, 0..5.
	HydrogenMode int `mapstructure:"hydrogen_mode"`
	// Model selects models to process: "all" or a non-negative index.
	Model string `mapstructure:"model"`
	// MonomerLibrary is the CCP4-style monomer dictionary path used by the
	// hydrogen preparation modes that rebuild or shift hydrogens.
	MonomerLibrary string `mapstructure:"monomer_library"`
}

// OutputConfig holds result sink parameters.
type OutputConfig struct {
	// Dir receives the result file(s). Empty means the working directory.
	Dir string `mapstructure:"dir"`
	// Name is the base name of the combined result file.
	Name string `mapstructure:"name"`
	// Format is "csv" or "json".
	Format string `mapstructure:"format"`
	// Verbose selects the full column schema over the compact subset.
	Verbose bool `mapstructure:"verbose"`
	// Separate writes one result file per input structure instead of a
	// combined file.
	Separate bool `mapstructure:"separate"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"` // file path, or "stderr"/"stdout"
}

// MetricsConfig holds the optional Prometheus exposition endpoint.
type MetricsConfig struct {
	// Addr is the listen address (e.g. "127.0.0.1:9090"); empty disables
	// the endpoint.
	Addr string `mapstructure:"addr"`
}

// Config is the root configuration for a detection run.
type Config struct {
	Run     RunConfig     `mapstructure:"run"`
	Output  OutputConfig  `mapstructure:"output"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// Validate performs semantic validation of the fully-populated Config. It
// returns the first error encountered; callers should treat any error as
// fatal and refuse to start the run.
func (c *Config) Validate() error {
	if c.Run.Jobs < 1 {
		return fmt.Errorf("config: run.jobs must be ≥ 1, got %d", c.Run.Jobs)
	}
	if c.Run.HydrogenMode < 0 || c.Run.HydrogenMode > 5 {
		return fmt.Errorf("config: run.hydrogen_mode %d is out of range [0, 5]", c.Run.HydrogenMode)
	}
	switch c.Output.Format {
	case "csv", "json":
	default:
		return fmt.Errorf("config: output.format %q is invalid; expected csv|json", c.Output.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}
	return nil
}
