package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "XPID"

// newViper builds a pre-configured Viper instance: YAML file type, XPID_
// env prefix, automatic env binding, and a key replacer mapping "." → "_"
// so that nested keys like "run.jobs" resolve to "XPID_RUN_JOBS".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Registering every key makes AutomaticEnv overrides visible to
	// Unmarshal; real defaults for the other fields are applied later by
	// ApplyDefaults. The hydrogen mode is the exception: 0 is a valid
	// explicit value, so its default must live here where file and env
	// settings still override it.
	for key, zero := range map[string]any{
		"run.jobs":            0,
		"run.hydrogen_mode":   DefaultHydrogenMode,
		"run.model":           "",
		"run.monomer_library": "",
		"output.dir":          "",
		"output.name":         "",
		"output.format":       "",
		"output.verbose":      false,
		"output.separate":     false,
		"log.level":           "",
		"log.format":          "",
		"log.output":          "",
		"metrics.addr":        "",
	} {
		v.SetDefault(key, zero)
	}
	return v
}

// Load reads the YAML file at configPath, merges XPID_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from XPID_* environment variables
// and defaults, with no config file required.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}
