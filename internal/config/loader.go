package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (PKGCHEW_*)
// 2. Project config file (.pkgchew/config.yml or .pkgchew/config.yaml)
// 3. Global config file (~/.pkgchew/config.yml)
// 4. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	// Set up config file search
	configDir := filepath.Join(l.rootDir, ".pkgchew")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	// Enable environment variable overrides
	v.SetEnvPrefix("PKGCHEW")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g. PKGCHEW_SANDBOX_ENABLED)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind environment variables to config keys
	v.BindEnv("analysis.include_private")
	v.BindEnv("analysis.version_pattern")
	v.BindEnv("sandbox.enabled")
	v.BindEnv("sandbox.timeout_seconds")
	v.BindEnv("output.dir")
	v.BindEnv("output.max_example_lines")
	v.BindEnv("output.cross_references")

	setDefaults(v)

	// Global config sits between built-in defaults and the project
	// file: machine-wide search paths and sandbox defaults apply
	// unless the project overrides them.
	if global, err := LoadGlobalConfig(); err == nil {
		if len(global.SearchPaths) > 0 {
			v.SetDefault("analysis.search_paths", global.SearchPaths)
		}
		if global.Sandbox.TimeoutSeconds > 0 {
			v.SetDefault("sandbox.timeout_seconds", global.Sandbox.TimeoutSeconds)
		}
	}

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("analysis.exclude", defaults.Analysis.Exclude)
	v.SetDefault("analysis.include_private", defaults.Analysis.IncludePrivate)
	v.SetDefault("analysis.namespace_packages", defaults.Analysis.NamespacePackages)
	v.SetDefault("analysis.version_pattern", defaults.Analysis.VersionPattern)
	v.SetDefault("analysis.search_paths", defaults.Analysis.SearchPaths)

	v.SetDefault("sandbox.enabled", defaults.Sandbox.Enabled)
	v.SetDefault("sandbox.timeout_seconds", defaults.Sandbox.TimeoutSeconds)

	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("output.max_example_lines", defaults.Output.MaxExampleLines)
	v.SetDefault("output.cross_references", defaults.Output.CrossReferences)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
