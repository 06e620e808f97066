package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoadGlobalConfig loads global configuration from ~/.pkgchew/config.yml.
// Returns default values if the file doesn't exist (not an error).
// Environment variables override file values (PKGCHEW_* prefix).
func LoadGlobalConfig() (*GlobalConfig, error) {
	v := viper.New()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	globalDir := filepath.Join(home, ".pkgchew")

	// Look for ~/.pkgchew/config.yml (NOT project .pkgchew/config.yml)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(globalDir)

	v.SetEnvPrefix("PKGCHEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("search_paths")
	v.BindEnv("sandbox.timeout_seconds")

	setGlobalDefaults(v)

	// Read config (not an error if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &GlobalConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setGlobalDefaults configures viper with default values for global config.
func setGlobalDefaults(v *viper.Viper) {
	v.SetDefault("search_paths", []string{})
	v.SetDefault("sandbox.timeout_seconds", Default().Sandbox.TimeoutSeconds)
}
