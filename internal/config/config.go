package config

// Config represents the complete pkgchew configuration.
// It can be loaded from .pkgchew/config.yml with environment variable overrides.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Sandbox  SandboxConfig  `yaml:"sandbox" mapstructure:"sandbox"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
}

// AnalysisConfig controls package discovery and extraction.
type AnalysisConfig struct {
	Exclude           []string `yaml:"exclude" mapstructure:"exclude"`                       // glob patterns to skip
	IncludePrivate    bool     `yaml:"include_private" mapstructure:"include_private"`       // render _private entities
	NamespacePackages []string `yaml:"namespace_packages" mapstructure:"namespace_packages"` // marker-less package names
	VersionPattern    string   `yaml:"version_pattern" mapstructure:"version_pattern"`       // version-suffix directory regexp
	SearchPaths       []string `yaml:"search_paths" mapstructure:"search_paths"`             // where installed packages live
}

// SandboxConfig controls optional example execution.
type SandboxConfig struct {
	Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
	TimeoutSeconds int  `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// OutputConfig controls the markdown writer.
type OutputConfig struct {
	Dir             string `yaml:"dir" mapstructure:"dir"`
	MaxExampleLines int    `yaml:"max_example_lines" mapstructure:"max_example_lines"`
	CrossReferences bool   `yaml:"cross_references" mapstructure:"cross_references"`
}

// DefaultVersionPattern matches version-suffixed directory names such as
// "mypkg-2.3.1". The first group is the name, the second the version.
const DefaultVersionPattern = `^(.+?)-(\d+(?:\.\d+)*)$`

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Exclude: []string{
				"**/__pycache__/**",
				"**/.git/**",
				"**/.tox/**",
				"**/.venv/**",
				"**/venv/**",
				"**/build/**",
				"**/dist/**",
				"**/*.egg-info/**",
				"**/test_*.py",
				"**/conftest.py",
			},
			IncludePrivate:    false,
			NamespacePackages: []string{},
			VersionPattern:    DefaultVersionPattern,
			SearchPaths:       []string{},
		},
		Sandbox: SandboxConfig{
			Enabled:        false,
			TimeoutSeconds: 10,
		},
		Output: OutputConfig{
			Dir:             "docs",
			MaxExampleLines: 15,
			CrossReferences: true,
		},
	}
}
