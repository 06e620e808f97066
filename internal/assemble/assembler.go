package assemble

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pkgchew/pkgchew/internal/model"
)

// Assembler merges per-file module nodes into one cross-referenced
// DocumentationModel. Assembly is the only step that sees all files at
// once; it runs after every per-file result has been collected, so it
// needs no locking. The same inputs always produce a byte-identical
// model.
type Assembler struct {
	crossRefs bool
}

// NewAssembler creates an assembler. crossRefs controls docstring
// reference resolution.
func NewAssembler(crossRefs bool) *Assembler {
	return &Assembler{crossRefs: crossRefs}
}

// Assemble merges modules under one package root. Incoming diagnostics
// from earlier stages are carried through; assembly appends its own.
func (a *Assembler) Assemble(root *model.PackageRoot, meta model.PackageMetadata, modules []*model.ModuleNode, diags []model.Diagnostic) *model.DocumentationModel {
	// Re-impose walker order regardless of the order results arrived
	// in: files of a directory before its subdirectories, names
	// alphabetical within.
	sorted := make([]*model.ModuleNode, len(modules))
	copy(sorted, modules)
	sort.SliceStable(sorted, func(i, j int) bool { return pathLess(sorted[i].Path, sorted[j].Path) })

	doc := &model.DocumentationModel{
		Package:     root,
		Metadata:    meta,
		Modules:     sorted,
		Index:       make(map[string]*model.Entity),
		Diagnostics: diags,
	}

	for _, mod := range sorted {
		for _, entity := range mod.Entities {
			a.index(doc, mod, entity)
		}
	}

	if a.crossRefs {
		for _, mod := range sorted {
			for _, entity := range mod.Entities {
				a.resolveReferences(doc, entity)
			}
		}
	}

	classifyImports(root.Name, sorted)
	doc.Relationships = buildRelationships(sorted, doc)

	return doc
}

// index registers an entity and its descendants in the FQN index.
// Every fully-qualified name must be unique; a collision keeps the
// first entity and records an error diagnostic.
func (a *Assembler) index(doc *model.DocumentationModel, mod *model.ModuleNode, entity *model.Entity) {
	if existing, ok := doc.Index[entity.QualifiedName]; ok {
		doc.Diagnostics = append(doc.Diagnostics, model.Errorf(mod.Path,
			"duplicate qualified name %s (lines %d and %d)",
			entity.QualifiedName, existing.StartLine, entity.StartLine))
	} else {
		doc.Index[entity.QualifiedName] = entity
	}
	for _, child := range entity.Children {
		a.index(doc, mod, child)
	}
}

// referenceRE matches backtick-quoted dotted names in docstrings.
var referenceRE = regexp.MustCompile("`([A-Za-z_][A-Za-z0-9_]*(?:\\.[A-Za-z_][A-Za-z0-9_]*)+)`")

// resolveReferences resolves docstring cross-references against the
// index. Only names under this package are expected to resolve; a
// missing one becomes a diagnostic, never a failure.
func (a *Assembler) resolveReferences(doc *model.DocumentationModel, entity *model.Entity) {
	seen := make(map[string]bool)
	for _, m := range referenceRE.FindAllStringSubmatch(entity.Docstring, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true

		if _, ok := doc.Index[name]; ok {
			entity.References = append(entity.References, name)
			continue
		}
		if strings.HasPrefix(name, doc.Package.Name+".") {
			doc.Diagnostics = append(doc.Diagnostics, model.Warningf("",
				"unresolved reference %s in docstring of %s", name, entity.QualifiedName))
		}
	}
	sort.Strings(entity.References)

	for _, child := range entity.Children {
		a.resolveReferences(doc, child)
	}
}

// pathLess orders file paths the way the walker visits them: within a
// directory, files come before subdirectories, both alphabetical.
func pathLess(a, b string) bool {
	pa := strings.Split(strings.ReplaceAll(a, "\\", "/"), "/")
	pb := strings.Split(strings.ReplaceAll(b, "\\", "/"), "/")

	for i := 0; i < len(pa) && i < len(pb); i++ {
		lastA := i == len(pa)-1
		lastB := i == len(pb)-1
		if lastA != lastB {
			if pa[i] == pb[i] {
				// Same name as file and as directory cannot happen on
				// a real filesystem; order files first regardless.
				return lastA
			}
			if lastA {
				// a is a file here, b descends into a subdirectory of
				// the same parent: the file is visited first.
				return true
			}
			return false
		}
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	return len(pa) < len(pb)
}
