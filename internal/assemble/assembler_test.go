package assemble

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgchew/pkgchew/internal/model"
)

// Test Plan for Assembler:
// - Modules sorted into walk order whatever order results arrive in
// - Entity index covers nested entities; collisions keep the first
//   and record an error diagnostic
// - Backticked dotted names resolve against the index; unresolved
//   names under the package prefix become warnings, foreign ones
//   are ignored
// - Imports classified stdlib/internal/external, relative included
// - Relationship edges derived from internal imports only
// - Two runs over the same input marshal byte-identically

func testModules() []*model.ModuleNode {
	engine := &model.Entity{
		Kind:          model.KindClass,
		Name:          "Engine",
		QualifiedName: "pkg.core.Engine",
		StartLine:     10,
	}
	engine.Children = []*model.Entity{{
		Kind:          model.KindFunction,
		Name:          "run",
		QualifiedName: "pkg.core.Engine.run",
		StartLine:     14,
	}}

	return []*model.ModuleNode{
		{
			Path:   "/p/pkg/sub/helpers.py",
			Name:   "pkg.sub.helpers",
			Status: model.ParseOK,
			Entities: []*model.Entity{{
				Kind:          model.KindFunction,
				Name:          "double",
				QualifiedName: "pkg.sub.helpers.double",
				Docstring: "Uses `pkg.core.Engine.run` internally, " +
					"mentions the never-written `pkg.gone.Thing`, " +
					"and `somewhere.else.Entirely` is not ours.",
			}},
			Imports: []model.Import{{Path: "pkg.core"}},
		},
		{
			Path:     "/p/pkg/core.py",
			Name:     "pkg.core",
			Status:   model.ParseOK,
			Entities: []*model.Entity{engine},
			Imports: []model.Import{
				{Path: "os"},
				{Path: "requests"},
				{Path: ".sub"},
			},
		},
		{
			Path:   "/p/pkg/sub/__init__.py",
			Name:   "pkg.sub",
			Status: model.ParseOK,
		},
		{
			Path:      "/p/pkg/__init__.py",
			Name:      "pkg",
			Status:    model.ParseOK,
			Docstring: "Top-level package.",
			Imports:   []model.Import{{Path: "pkg.core.Engine"}},
		},
	}
}

func assembleTest(t *testing.T, crossRefs bool) *model.DocumentationModel {
	t.Helper()
	root := &model.PackageRoot{Path: "/p/pkg", Name: "pkg"}
	return NewAssembler(crossRefs).Assemble(root, model.PackageMetadata{}, testModules(), nil)
}

func TestAssemble_ModuleOrder(t *testing.T) {
	t.Parallel()

	doc := assembleTest(t, true)

	var names []string
	for _, mod := range doc.Modules {
		names = append(names, mod.Name)
	}
	assert.Equal(t, []string{"pkg", "pkg.core", "pkg.sub", "pkg.sub.helpers"}, names)
}

func TestAssemble_Index(t *testing.T) {
	t.Parallel()

	doc := assembleTest(t, true)

	require.NotNil(t, doc.Lookup("pkg.core.Engine"))
	require.NotNil(t, doc.Lookup("pkg.core.Engine.run"), "nested entities are indexed")
	assert.Nil(t, doc.Lookup("pkg.core.Missing"))
}

func TestAssemble_DuplicateQualifiedName(t *testing.T) {
	t.Parallel()

	root := &model.PackageRoot{Path: "/p/pkg", Name: "pkg"}
	first := &model.Entity{Kind: model.KindFunction, Name: "f", QualifiedName: "pkg.m.f", StartLine: 1}
	second := &model.Entity{Kind: model.KindFunction, Name: "f", QualifiedName: "pkg.m.f", StartLine: 9}
	modules := []*model.ModuleNode{{
		Path:     "/p/pkg/m.py",
		Name:     "pkg.m",
		Status:   model.ParseOK,
		Entities: []*model.Entity{first, second},
	}}

	doc := NewAssembler(false).Assemble(root, model.PackageMetadata{}, modules, nil)

	assert.Same(t, first, doc.Lookup("pkg.m.f"), "first definition wins")
	require.Len(t, doc.Diagnostics, 1)
	assert.Equal(t, model.SeverityError, doc.Diagnostics[0].Severity)
	assert.Contains(t, doc.Diagnostics[0].Message, "pkg.m.f")
}

func TestAssemble_CrossReferences(t *testing.T) {
	t.Parallel()

	doc := assembleTest(t, true)

	double := doc.Lookup("pkg.sub.helpers.double")
	require.NotNil(t, double)
	assert.Equal(t, []string{"pkg.core.Engine.run"}, double.References)

	// One warning for the package-local miss, nothing for the
	// foreign name.
	var warnings []string
	for _, d := range doc.Diagnostics {
		warnings = append(warnings, d.Message)
	}
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "pkg.gone.Thing")
	assert.NotContains(t, warnings[0], "somewhere.else")
}

func TestAssemble_CrossReferencesDisabled(t *testing.T) {
	t.Parallel()

	doc := assembleTest(t, false)

	double := doc.Lookup("pkg.sub.helpers.double")
	require.NotNil(t, double)
	assert.Empty(t, double.References)
	assert.Empty(t, doc.Diagnostics)
}

func TestAssemble_ImportClassification(t *testing.T) {
	t.Parallel()

	doc := assembleTest(t, true)

	core := doc.Modules[1]
	require.Equal(t, "pkg.core", core.Name)
	assert.Equal(t, model.ImportStdlib, core.Imports[0].Kind)
	assert.Equal(t, model.ImportExternal, core.Imports[1].Kind)
	assert.Equal(t, model.ImportInternal, core.Imports[2].Kind)

	init := doc.Modules[0]
	assert.Equal(t, model.ImportInternal, init.Imports[0].Kind)
}

func TestAssemble_Relationships(t *testing.T) {
	t.Parallel()

	doc := assembleTest(t, true)

	assert.Equal(t, map[string][]string{
		"pkg":             {"pkg.core"},
		"pkg.core":        {"pkg.sub"},
		"pkg.sub.helpers": {"pkg.core"},
	}, doc.Relationships)
}

func TestAssemble_Deterministic(t *testing.T) {
	t.Parallel()

	root := &model.PackageRoot{Path: "/p/pkg", Name: "pkg"}

	first, err := json.Marshal(NewAssembler(true).Assemble(root, model.PackageMetadata{}, testModules(), nil))
	require.NoError(t, err)
	second, err := json.Marshal(NewAssembler(true).Assemble(root, model.PackageMetadata{}, testModules(), nil))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestPathLess(t *testing.T) {
	t.Parallel()

	assert.True(t, pathLess("/p/pkg/util.py", "/p/pkg/sub/__init__.py"),
		"files sort before subdirectories of the same parent")
	assert.True(t, pathLess("/p/pkg/__init__.py", "/p/pkg/core.py"))
	assert.True(t, pathLess("/p/pkg/sub/a.py", "/p/pkg/sub/b.py"))
	assert.False(t, pathLess("/p/pkg/sub/a.py", "/p/pkg/core.py"))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.ImportStdlib, classify("pkg", "collections.abc"))
	assert.Equal(t, model.ImportInternal, classify("pkg", "pkg.core"))
	assert.Equal(t, model.ImportInternal, classify("pkg", "..util"))
	assert.Equal(t, model.ImportExternal, classify("pkg", "numpy"))
	assert.Equal(t, model.ImportExternal, classify("pkg", "pkgother.core"))
}
