// Package metadata reads distribution metadata for a documented
// package from its pyproject.toml, without importing or executing
// anything from the package.
package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/pkgchew/pkgchew/internal/model"
)

// pyproject mirrors the [project] table of PEP 621 pyproject files.
type pyproject struct {
	Project struct {
		Name           string   `toml:"name"`
		Version        string   `toml:"version"`
		Description    string   `toml:"description"`
		RequiresPython string   `toml:"requires-python"`
		Dependencies   []string `toml:"dependencies"`
		License        any      `toml:"license"`
		Authors        []struct {
			Name  string `toml:"name"`
			Email string `toml:"email"`
		} `toml:"authors"`
	} `toml:"project"`
}

// Read loads metadata for the package root, walking up a few levels to
// find pyproject.toml (the root itself often sits under src/). Missing
// files fall back to defaults derived from the root; a malformed file
// is a warning, never a failure.
func Read(root *model.PackageRoot) (model.PackageMetadata, []model.Diagnostic) {
	meta := model.PackageMetadata{
		Name:    root.Name,
		Version: root.Version,
	}

	path := findPyproject(root.Path)
	if path == "" {
		return meta, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return meta, []model.Diagnostic{model.Warningf(path, "failed to read pyproject.toml: %v", err)}
	}

	var pp pyproject
	if err := toml.Unmarshal(data, &pp); err != nil {
		return meta, []model.Diagnostic{model.Warningf(path, "failed to parse pyproject.toml: %v", err)}
	}

	var diags []model.Diagnostic
	if pp.Project.Name != "" {
		meta.Name = pp.Project.Name
	}
	if pp.Project.Version != "" {
		// pyproject wins over a version-suffixed directory, but a
		// disagreement between the two is worth surfacing.
		if meta.Version != "" && meta.Version != pp.Project.Version {
			diags = append(diags, model.Warningf(path,
				"pyproject.toml declares version %s but the install directory says %s; using pyproject.toml",
				pp.Project.Version, meta.Version))
		}
		meta.Version = pp.Project.Version
	}
	meta.Description = pp.Project.Description
	meta.RequiresPython = pp.Project.RequiresPython
	meta.Dependencies = pp.Project.Dependencies
	meta.License = licenseString(pp.Project.License)
	for _, author := range pp.Project.Authors {
		switch {
		case author.Name != "" && author.Email != "":
			meta.Authors = append(meta.Authors, fmt.Sprintf("%s <%s>", author.Name, author.Email))
		case author.Name != "":
			meta.Authors = append(meta.Authors, author.Name)
		case author.Email != "":
			meta.Authors = append(meta.Authors, author.Email)
		}
	}

	return meta, diags
}

// findPyproject looks for pyproject.toml beside the package root or up
// to three directories above it.
func findPyproject(dir string) string {
	for i := 0; i < 4; i++ {
		candidate := filepath.Join(dir, "pyproject.toml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// licenseString handles both PEP 621 license forms: a plain SPDX
// string or a table with a text key.
func licenseString(license any) string {
	switch v := license.(type) {
	case string:
		return v
	case map[string]any:
		if text, ok := v["text"].(string); ok {
			return text
		}
		if file, ok := v["file"].(string); ok {
			return file
		}
	}
	return ""
}
