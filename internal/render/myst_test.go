package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgchew/pkgchew/internal/config"
	"github.com/pkgchew/pkgchew/internal/model"
)

// Test Plan for MystWriter:
// - One page per parseable module plus index.md; broken modules get
//   no page but show up under Diagnostics
// - Index carries metadata, module list, and a Mermaid dependency graph
// - Entity rendering: class/function/attribute forms, nesting depth,
//   cross-reference links, failed examples annotated
// - Private entities hidden by default, shown when configured
// - Long examples truncated to max_example_lines

func testModel() *model.DocumentationModel {
	engine := &model.Entity{
		Kind:          model.KindClass,
		Name:          "Engine",
		QualifiedName: "pkg.core.Engine",
		Docstring:     "A tiny rule engine.",
		References:    []string{"pkg.core.make_engine"},
	}
	engine.Children = []*model.Entity{
		{
			Kind:          model.KindFunction,
			Name:          "run",
			QualifiedName: "pkg.core.Engine.run",
			Signature:     "(self, steps: list) -> int",
			Docstring:     "Run all steps.",
		},
		{
			Kind:          model.KindFunction,
			Name:          "_reset",
			QualifiedName: "pkg.core.Engine._reset",
			Signature:     "(self)",
			Private:       true,
		},
	}

	makeEngine := &model.Entity{
		Kind:          model.KindFunction,
		Name:          "make_engine",
		QualifiedName: "pkg.core.make_engine",
		Signature:     `(name: str = "default") -> "Engine"`,
		Examples: []*model.Example{
			{
				Text:   ">>> make_engine().name\n'default'",
				Code:   "make_engine().name",
				Status: model.ExampleValid,
				Output: "'default'\n",
			},
			{
				Text:   ">>> 1 +",
				Code:   "1 +",
				Status: model.ExampleSyntaxInvalid,
				Cause:  "fragment does not parse",
			},
		},
	}

	retries := &model.Entity{
		Kind:          model.KindAttribute,
		Name:          "MAX_RETRIES",
		QualifiedName: "pkg.core.MAX_RETRIES",
		Value:         "3",
		Docstring:     "Retry budget.",
	}

	return &model.DocumentationModel{
		Package: &model.PackageRoot{Path: "/p/pkg", Name: "pkg"},
		Metadata: model.PackageMetadata{
			Name:        "pkg",
			Version:     "1.0.0",
			Description: "Demo package",
			License:     "MIT",
			Authors:     []string{"Ada Example <ada@example.org>"},
		},
		Modules: []*model.ModuleNode{
			{
				Path:      "/p/pkg/__init__.py",
				Name:      "pkg",
				Status:    model.ParseOK,
				Docstring: "Top-level package.\n\nMore prose.",
			},
			{
				Path:     "/p/pkg/core.py",
				Name:     "pkg.core",
				Status:   model.ParseOK,
				Entities: []*model.Entity{retries, engine, makeEngine},
				Imports: []model.Import{
					{Path: "os", Kind: model.ImportStdlib},
					{Path: ".sub", Kind: model.ImportInternal},
					{Path: "requests", Kind: model.ImportExternal},
				},
			},
			{
				Path:   "/p/pkg/broken.py",
				Name:   "pkg.broken",
				Status: model.ParseSyntaxError,
			},
		},
		Relationships: map[string][]string{"pkg.core": {"pkg.sub"}},
		Diagnostics: []model.Diagnostic{
			model.Warningf("/p/pkg/broken.py", "syntax error"),
		},
	}
}

func writeModel(t *testing.T, cfg config.OutputConfig, includePrivate bool) string {
	t.Helper()
	dir := t.TempDir()
	w := NewMystWriter(cfg, includePrivate)
	require.NoError(t, w.Write(testModel(), dir))
	return dir
}

func readPage(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func defaultOutput() config.OutputConfig {
	return config.Default().Output
}

func TestWrite_Pages(t *testing.T) {
	t.Parallel()

	dir := writeModel(t, defaultOutput(), false)

	assert.FileExists(t, filepath.Join(dir, "index.md"))
	assert.FileExists(t, filepath.Join(dir, "pkg.md"))
	assert.FileExists(t, filepath.Join(dir, "pkg.core.md"))
	assert.NoFileExists(t, filepath.Join(dir, "pkg.broken.md"), "broken modules get no page")
}

func TestWrite_Index(t *testing.T) {
	t.Parallel()

	dir := writeModel(t, defaultOutput(), false)
	index := readPage(t, dir, "index.md")

	assert.Contains(t, index, "# pkg Documentation")
	assert.Contains(t, index, "- **Version**: 1.0.0")
	assert.Contains(t, index, "- **License**: MIT")
	assert.Contains(t, index, "- [[pkg]] — Top-level package.")
	assert.Contains(t, index, "- [[pkg.core]]")
	assert.NotContains(t, index, "[[pkg.broken]]")
	assert.Contains(t, index, "pkg_core --> pkg_sub", "mermaid nodes use underscores")
	assert.Contains(t, index, "- **warning**: syntax error")
}

func TestWrite_ModulePage(t *testing.T) {
	t.Parallel()

	dir := writeModel(t, defaultOutput(), false)
	page := readPage(t, dir, "pkg.core.md")

	assert.Contains(t, page, "# pkg.core")
	assert.Contains(t, page, "### `MAX_RETRIES = 3`")
	assert.Contains(t, page, "### class `Engine`")
	assert.Contains(t, page, "#### `run(self, steps: list) -> int`")
	assert.Contains(t, page, "### `make_engine(name: str = \"default\") -> \"Engine\"`")
	assert.Contains(t, page, "See also: [[pkg.core.make_engine]]")

	assert.Contains(t, page, "### Standard Library")
	assert.Contains(t, page, "- `os`")
	assert.Contains(t, page, "### Internal")
	assert.Contains(t, page, "### External")
}

func TestWrite_Examples(t *testing.T) {
	t.Parallel()

	dir := writeModel(t, defaultOutput(), false)
	page := readPage(t, dir, "pkg.core.md")

	assert.Contains(t, page, ">>> make_engine().name")
	assert.Contains(t, page, "Output:\n\n```\n'default'\n```")
	assert.Contains(t, page, ">>> 1 +", "broken example text stays verbatim")
	assert.Contains(t, page, "*Example does not parse: fragment does not parse*")
}

func TestWrite_PrivateEntities(t *testing.T) {
	t.Parallel()

	hidden := readPage(t, writeModel(t, defaultOutput(), false), "pkg.core.md")
	assert.NotContains(t, hidden, "_reset")

	shown := readPage(t, writeModel(t, defaultOutput(), true), "pkg.core.md")
	assert.Contains(t, shown, "_reset")
}

func TestWrite_TruncatesExamples(t *testing.T) {
	t.Parallel()

	cfg := defaultOutput()
	cfg.MaxExampleLines = 1

	page := readPage(t, writeModel(t, cfg, false), "pkg.core.md")
	assert.Contains(t, page, ">>> make_engine().name\n# …")
	assert.NotContains(t, page, ">>> make_engine().name\n'default'")
}

func TestTruncateLines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a\nb", truncateLines("a\nb", 5))
	assert.Equal(t, "a\nb\n# …", truncateLines("a\nb\nc\nd", 2))
}
