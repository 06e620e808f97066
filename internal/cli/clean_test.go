package cli

// Test Plan for Clean Command:
// - runClean deletes the configured output directory
// - runClean handles a missing output directory gracefully
// - runClean preserves .pkgchew/config.yml
// - runClean respects a custom output.dir from project config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupProject creates a project directory with generated docs under
// the given output dir and returns the project path.
func setupProject(t *testing.T, outputDir string) string {
	t.Helper()

	projectPath := t.TempDir()

	configDir := filepath.Join(projectPath, ".pkgchew")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	content := "output:\n  dir: " + outputDir + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(content), 0o644))

	docsDir := filepath.Join(projectPath, outputDir)
	require.NoError(t, os.MkdirAll(docsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "index.md"), []byte("# docs\n"), 0o644))

	return projectPath
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(originalWd) })
	require.NoError(t, os.Chdir(dir))
}

func TestRunClean_RemovesOutputDir(t *testing.T) {
	projectPath := setupProject(t, "docs")
	chdir(t, projectPath)

	cleanQuietFlag = true
	require.NoError(t, runClean(cleanCmd, nil))

	assert.NoDirExists(t, filepath.Join(projectPath, "docs"))
	assert.FileExists(t, filepath.Join(projectPath, ".pkgchew", "config.yml"),
		"configuration is preserved")
}

func TestRunClean_MissingOutputDir(t *testing.T) {
	projectPath := setupProject(t, "docs")
	require.NoError(t, os.RemoveAll(filepath.Join(projectPath, "docs")))
	chdir(t, projectPath)

	cleanQuietFlag = true
	assert.NoError(t, runClean(cleanCmd, nil))
}

func TestRunClean_CustomOutputDir(t *testing.T) {
	projectPath := setupProject(t, "build/docs")
	chdir(t, projectPath)

	cleanQuietFlag = true
	require.NoError(t, runClean(cleanCmd, nil))

	assert.NoDirExists(t, filepath.Join(projectPath, "build/docs"))
}
