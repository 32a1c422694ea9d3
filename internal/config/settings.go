package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// settingsFile is the per-user settings file under the home directory.
// It currently persists a single key: the default monomer library path.
const (
	settingsDir   = ".xpid"
	settingsFile  = "config.yaml"
	monomerLibKey = "monomer_library_path"
)

// SettingsPath returns the location of the per-user settings file.
func SettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolving home directory: %w", err)
	}
	return filepath.Join(home, settingsDir, settingsFile), nil
}

// SaveMonomerLibraryPath persists path as the default monomer library in
// the per-user settings file, creating it as needed.
func SaveMonomerLibraryPath(path string) error {
	file, err := SettingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("config: creating settings directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	// Merge existing settings so other keys survive the write.
	_ = v.ReadInConfig()
	v.Set(monomerLibKey, path)

	if err := v.WriteConfigAs(file); err != nil {
		return fmt.Errorf("config: writing settings file %q: %w", file, err)
	}
	return nil
}

// LoadMonomerLibraryPath reads the persisted default monomer library path.
// A missing settings file or key yields "" without error.
func LoadMonomerLibraryPath() (string, error) {
	file, err := SettingsPath()
	if err != nil {
		return "", err
	}
	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return "", nil
		}
		return "", fmt.Errorf("config: reading settings file %q: %w", file, err)
	}
	return v.GetString(monomerLibKey), nil
}
