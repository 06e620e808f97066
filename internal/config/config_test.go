package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns a valid configuration
// - LoadConfigFromDir() uses defaults when no config file exists
// - LoadConfigFromDir() merges .pkgchew/config.yml with defaults
// - Environment variables override config file values
// - LoadConfigFromDir() returns error for malformed YAML
// - Validate() rejects bad exclude globs, bad version patterns,
//   non-positive sandbox timeouts, empty output dirs, and
//   non-positive example line limits; errors are joined

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Contains(t, cfg.Analysis.Exclude, "**/__pycache__/**")
	assert.False(t, cfg.Analysis.IncludePrivate)
	assert.Equal(t, DefaultVersionPattern, cfg.Analysis.VersionPattern)
	assert.False(t, cfg.Sandbox.Enabled)
	assert.Equal(t, 10, cfg.Sandbox.TimeoutSeconds)
	assert.Equal(t, "docs", cfg.Output.Dir)
	assert.True(t, cfg.Output.CrossReferences)
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default().Output.Dir, cfg.Output.Dir)
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfigFile(t, dir, `
analysis:
  include_private: true
  exclude:
    - "**/skip_me/**"
sandbox:
  enabled: true
  timeout_seconds: 3
output:
  dir: build/docs
`)

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)

	assert.True(t, cfg.Analysis.IncludePrivate)
	assert.Equal(t, []string{"**/skip_me/**"}, cfg.Analysis.Exclude)
	assert.True(t, cfg.Sandbox.Enabled)
	assert.Equal(t, 3, cfg.Sandbox.TimeoutSeconds)
	assert.Equal(t, "build/docs", cfg.Output.Dir)
	// Untouched sections keep their defaults.
	assert.Equal(t, Default().Output.MaxExampleLines, cfg.Output.MaxExampleLines)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "output:\n  dir: from-file\n")

	t.Setenv("PKGCHEW_OUTPUT_DIR", "from-env")
	t.Setenv("PKGCHEW_SANDBOX_TIMEOUT_SECONDS", "42")

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Output.Dir)
	assert.Equal(t, 42, cfg.Sandbox.TimeoutSeconds)
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfigFile(t, dir, "output: [\n")

	_, err := LoadConfigFromDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate_BadExcludeGlob(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Analysis.Exclude = []string{"[unclosed"}

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestValidate_BadVersionPattern(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Analysis.VersionPattern = "(("
	assert.ErrorIs(t, Validate(cfg), ErrInvalidVersionPattern)

	cfg = Default()
	cfg.Analysis.VersionPattern = `^nogroups$`
	assert.ErrorIs(t, Validate(cfg), ErrInvalidVersionPattern,
		"pattern must capture name and version")
}

func TestValidate_EmptyVersionPatternDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Analysis.VersionPattern = ""
	require.NoError(t, Validate(cfg))
	assert.Equal(t, DefaultVersionPattern, cfg.Analysis.VersionPattern)
}

func TestValidate_SandboxTimeout(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Sandbox.Enabled = true
	cfg.Sandbox.TimeoutSeconds = 0
	assert.ErrorIs(t, Validate(cfg), ErrInvalidTimeout)

	// A disabled sandbox never checks the timeout.
	cfg.Sandbox.Enabled = false
	assert.NoError(t, Validate(cfg))
}

func TestValidate_Output(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Output.Dir = "  "
	assert.ErrorIs(t, Validate(cfg), ErrEmptyOutputDir)

	cfg = Default()
	cfg.Output.MaxExampleLines = 0
	assert.ErrorIs(t, Validate(cfg), ErrInvalidExampleLines)
}

func TestValidate_JoinsErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Output.Dir = ""
	cfg.Output.MaxExampleLines = -1

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, err.Error(), "output.dir")
	assert.Contains(t, err.Error(), "max_example_lines")
}

func writeConfigFile(t *testing.T, rootDir, content string) {
	t.Helper()
	configDir := filepath.Join(rootDir, ".pkgchew")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(content), 0o644))
}
