package config

// Default values applied to zero-value fields after unmarshalling.
// DefaultHydrogenMode is registered with the loader instead of
// ApplyDefaults: an explicit mode 0 (no-change) is indistinguishable from
// an unset field here, while viper can tell them apart.
const (
	DefaultJobs         = 1
	DefaultHydrogenMode = 4 // re-add, skip waters
	DefaultModel        = "0"

	DefaultOutputName   = "xpid_results"
	DefaultOutputFormat = "json"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
	DefaultLogOutput = "stderr"
)

// ApplyDefaults fills every zero-value field in cfg with its default.
// Fields already set by the caller are left unchanged so that explicit
// configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Run.Jobs == 0 {
		cfg.Run.Jobs = DefaultJobs
	}
	if cfg.Run.Model == "" {
		cfg.Run.Model = DefaultModel
	}

	if cfg.Output.Name == "" {
		cfg.Output.Name = DefaultOutputName
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}
}
