// Package config provides configuration loading for pkgchew.
//
// It supports two distinct configuration scopes:
//
// 1. Global Configuration (~/.pkgchew/config.yml)
//   - Machine-wide settings
//   - Search paths for installed packages (site-packages locations)
//   - Sandbox defaults shared by every project
//   - Loaded via LoadGlobalConfig()
//
// 2. Project Configuration (.pkgchew/config.yml)
//   - Project-specific settings
//   - Exclusion globs, namespace packages, output layout
//   - Loaded via Load() / LoadConfigFromDir()
//   - Isolated per project
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (PKGCHEW_*)
//  2. Project config (.pkgchew/config.yml)
//  3. Global config (~/.pkgchew/config.yml)
//  4. Built-in defaults
package config

// GlobalConfig holds machine-wide settings loaded from
// ~/.pkgchew/config.yml (not project .pkgchew/config.yml).
//
// Search paths belong here because they describe the machine, not the
// project: where interpreters keep their site-packages directories.
type GlobalConfig struct {
	SearchPaths []string            `yaml:"search_paths" mapstructure:"search_paths"`
	Sandbox     GlobalSandboxConfig `yaml:"sandbox" mapstructure:"sandbox"`
}

// GlobalSandboxConfig holds machine-wide sandbox defaults. A project
// config overrides these per project.
type GlobalSandboxConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}
