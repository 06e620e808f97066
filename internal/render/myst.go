// Package render turns an assembled DocumentationModel into a tree of
// MyST-flavored markdown files. It only consumes the finished model;
// nothing here reaches back into the source being documented.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkgchew/pkgchew/internal/config"
	"github.com/pkgchew/pkgchew/internal/model"
)

// MystWriter writes one markdown file per module plus an index.
type MystWriter struct {
	cfg            config.OutputConfig
	includePrivate bool
}

// NewMystWriter creates a writer with the given output options.
func NewMystWriter(cfg config.OutputConfig, includePrivate bool) *MystWriter {
	return &MystWriter{cfg: cfg, includePrivate: includePrivate}
}

// Write renders the model into outputDir, creating it if needed.
func (w *MystWriter) Write(doc *model.DocumentationModel, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, mod := range doc.Modules {
		if mod.Status != model.ParseOK {
			continue
		}
		path := filepath.Join(outputDir, mod.Name+".md")
		if err := os.WriteFile(path, []byte(w.formatModule(doc, mod)), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	index := filepath.Join(outputDir, "index.md")
	if err := os.WriteFile(index, []byte(w.formatIndex(doc)), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", index, err)
	}
	return nil
}

// formatIndex renders the package overview page.
func (w *MystWriter) formatIndex(doc *model.DocumentationModel) string {
	var b strings.Builder

	title := doc.Metadata.Name
	if title == "" {
		title = doc.Package.Name
	}
	fmt.Fprintf(&b, "# %s Documentation\n\n", title)

	b.WriteString("## Package Overview\n\n")
	w.writeMetadata(&b, doc)

	b.WriteString("\n## Modules\n\n")
	for _, mod := range doc.Modules {
		if mod.Status != model.ParseOK {
			continue
		}
		synopsis := firstLine(mod.Docstring)
		if synopsis != "" {
			fmt.Fprintf(&b, "- [[%s]] — %s\n", mod.Name, synopsis)
		} else {
			fmt.Fprintf(&b, "- [[%s]]\n", mod.Name)
		}
	}

	if graph := w.formatRelationships(doc); graph != "" {
		b.WriteString("\n## Module Dependencies\n\n")
		b.WriteString(graph)
	}

	if len(doc.Diagnostics) > 0 {
		b.WriteString("\n## Diagnostics\n\n")
		for _, d := range doc.Diagnostics {
			fmt.Fprintf(&b, "- **%s**: %s\n", d.Severity, d.Message)
		}
	}

	return b.String()
}

func (w *MystWriter) writeMetadata(b *strings.Builder, doc *model.DocumentationModel) {
	meta := doc.Metadata
	fmt.Fprintf(b, "- **Package**: %s\n", doc.Package.Name)
	if meta.Version != "" {
		fmt.Fprintf(b, "- **Version**: %s\n", meta.Version)
	}
	if meta.Description != "" {
		fmt.Fprintf(b, "- **Description**: %s\n", meta.Description)
	}
	if len(meta.Authors) > 0 {
		fmt.Fprintf(b, "- **Authors**: %s\n", strings.Join(meta.Authors, ", "))
	}
	if meta.License != "" {
		fmt.Fprintf(b, "- **License**: %s\n", meta.License)
	}
	if meta.RequiresPython != "" {
		fmt.Fprintf(b, "- **Requires Python**: %s\n", meta.RequiresPython)
	}
	if len(meta.Dependencies) > 0 {
		fmt.Fprintf(b, "- **Dependencies**: %s\n", strings.Join(meta.Dependencies, ", "))
	}
	if doc.Package.Namespace {
		fmt.Fprintf(b, "- **Namespace package**: %d portions\n", len(doc.Package.Portions))
	}
}

// formatRelationships renders the internal dependency graph as a
// Mermaid diagram.
func (w *MystWriter) formatRelationships(doc *model.DocumentationModel) string {
	if len(doc.Relationships) == 0 {
		return ""
	}

	froms := make([]string, 0, len(doc.Relationships))
	for from := range doc.Relationships {
		froms = append(froms, from)
	}
	sort.Strings(froms)

	var b strings.Builder
	b.WriteString("```{mermaid}\ngraph TD\n")
	for _, from := range froms {
		for _, to := range doc.Relationships[from] {
			fmt.Fprintf(&b, "    %s --> %s\n", mermaidNode(from), mermaidNode(to))
		}
	}
	b.WriteString("```\n")
	return b.String()
}

// mermaidNode sanitizes module names for Mermaid compatibility.
func mermaidNode(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}

// formatModule renders one module page.
func (w *MystWriter) formatModule(doc *model.DocumentationModel, mod *model.ModuleNode) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", mod.Name)
	if mod.Docstring != "" {
		b.WriteString(mod.Docstring)
		b.WriteString("\n\n")
	}

	w.writeImports(&b, mod)

	b.WriteString("## API Reference\n\n")
	for _, entity := range mod.Entities {
		w.writeEntity(&b, entity, 0)
	}

	return b.String()
}

func (w *MystWriter) writeImports(b *strings.Builder, mod *model.ModuleNode) {
	if len(mod.Imports) == 0 {
		return
	}

	groups := map[model.ImportKind][]string{}
	for _, imp := range mod.Imports {
		groups[imp.Kind] = append(groups[imp.Kind], imp.Path)
	}

	b.WriteString("## Imports\n\n")
	for _, section := range []struct {
		kind  model.ImportKind
		title string
	}{
		{model.ImportStdlib, "Standard Library"},
		{model.ImportInternal, "Internal"},
		{model.ImportExternal, "External"},
	} {
		paths := groups[section.kind]
		if len(paths) == 0 {
			continue
		}
		sort.Strings(paths)
		fmt.Fprintf(b, "### %s\n\n", section.title)
		for _, path := range paths {
			fmt.Fprintf(b, "- `%s`\n", path)
		}
		b.WriteString("\n")
	}
}

// writeEntity renders one entity and its children. Private entities
// are skipped unless configured otherwise.
func (w *MystWriter) writeEntity(b *strings.Builder, entity *model.Entity, depth int) {
	if entity.Private && !w.includePrivate {
		return
	}

	heading := strings.Repeat("#", min(depth+3, 6))
	switch entity.Kind {
	case model.KindClass:
		fmt.Fprintf(b, "%s class `%s`\n\n", heading, entity.Name)
	case model.KindFunction:
		fmt.Fprintf(b, "%s `%s%s`\n\n", heading, entity.Name, entity.Signature)
	case model.KindAttribute:
		fmt.Fprintf(b, "%s `%s = %s`\n\n", heading, entity.Name, entity.Value)
	}

	if entity.Docstring != "" {
		b.WriteString(entity.Docstring)
		b.WriteString("\n\n")
	}

	if len(entity.References) > 0 {
		refs := make([]string, 0, len(entity.References))
		for _, ref := range entity.References {
			refs = append(refs, fmt.Sprintf("[[%s]]", ref))
		}
		fmt.Fprintf(b, "See also: %s\n\n", strings.Join(refs, ", "))
	}

	w.writeExamples(b, entity)

	for _, child := range entity.Children {
		w.writeEntity(b, child, depth+1)
	}
}

func (w *MystWriter) writeExamples(b *strings.Builder, entity *model.Entity) {
	for _, example := range entity.Examples {
		text := truncateLines(example.Text, w.cfg.MaxExampleLines)
		fmt.Fprintf(b, "```python\n%s\n```\n\n", text)
		switch example.Status {
		case model.ExampleSyntaxInvalid:
			fmt.Fprintf(b, "*Example does not parse: %s*\n\n", example.Cause)
		case model.ExampleExecutionFailed:
			fmt.Fprintf(b, "*Example failed to run: %s*\n\n", example.Cause)
		}
		if example.Output != "" {
			fmt.Fprintf(b, "Output:\n\n```\n%s\n```\n\n", strings.TrimRight(example.Output, "\n"))
		}
	}
}

func truncateLines(text string, max int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= max {
		return text
	}
	return strings.Join(lines[:max], "\n") + "\n# …"
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return strings.TrimSpace(text)
}
