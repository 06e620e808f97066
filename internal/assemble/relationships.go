package assemble

import (
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/pkgchew/pkgchew/internal/model"
)

// classifyImports tags every recorded import as stdlib, internal, or
// external. Relative imports are internal by definition.
func classifyImports(packageName string, modules []*model.ModuleNode) {
	for _, mod := range modules {
		for i := range mod.Imports {
			mod.Imports[i].Kind = classify(packageName, mod.Imports[i].Path)
		}
	}
}

func classify(packageName, path string) model.ImportKind {
	if strings.HasPrefix(path, ".") {
		return model.ImportInternal
	}
	first := path
	if idx := strings.Index(path, "."); idx >= 0 {
		first = path[:idx]
	}
	switch {
	case first == packageName:
		return model.ImportInternal
	case stdlibModules[first]:
		return model.ImportStdlib
	default:
		return model.ImportExternal
	}
}

// buildRelationships derives the internal module dependency graph:
// one directed edge per import of a sibling module. The adjacency map
// comes back with sorted keys and values so assembly stays
// deterministic.
func buildRelationships(modules []*model.ModuleNode, doc *model.DocumentationModel) map[string][]string {
	g := graph.New(graph.StringHash, graph.Directed())

	names := make(map[string]bool, len(modules))
	for _, mod := range modules {
		names[mod.Name] = true
		_ = g.AddVertex(mod.Name)
	}

	for _, mod := range modules {
		for _, imp := range mod.Imports {
			if imp.Kind != model.ImportInternal {
				continue
			}
			target := resolveModule(imp.Path, mod.Name, names)
			if target == "" || target == mod.Name {
				continue
			}
			// Duplicate edges are fine to ignore; the graph keeps one.
			_ = g.AddEdge(mod.Name, target)
		}
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		doc.Diagnostics = append(doc.Diagnostics, model.Warningf("",
			"failed to compute module relationships: %v", err))
		return nil
	}

	out := make(map[string][]string, len(adjacency))
	for from, edges := range adjacency {
		if len(edges) == 0 {
			continue
		}
		targets := make([]string, 0, len(edges))
		for to := range edges {
			targets = append(targets, to)
		}
		sort.Strings(targets)
		out[from] = targets
	}
	return out
}

// resolveModule maps an imported path onto a known module name, taking
// the longest module prefix so "pkg.core.Thing" lands on "pkg.core".
// Relative imports resolve against the importing module's package.
func resolveModule(path, importer string, names map[string]bool) string {
	if strings.HasPrefix(path, ".") {
		parent := importer
		rest := path
		for strings.HasPrefix(rest, ".") {
			rest = rest[1:]
			if idx := strings.LastIndex(parent, "."); idx >= 0 {
				parent = parent[:idx]
			}
		}
		if rest == "" {
			path = parent
		} else {
			path = parent + "." + rest
		}
	}

	for path != "" {
		if names[path] {
			return path
		}
		idx := strings.LastIndex(path, ".")
		if idx < 0 {
			return ""
		}
		path = path[:idx]
	}
	return ""
}
