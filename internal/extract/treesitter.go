package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// pythonLanguage is shared by every parser instance; the grammar itself
// is immutable.
var pythonLanguage = sitter.NewLanguage(python.Language())

// parseSource parses Python source into a tree without evaluating any
// of it. Callers own the returned tree and must Close it.
func parseSource(source []byte) *sitter.Tree {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(pythonLanguage)
	return parser.Parse(source, nil)
}

// HasSyntaxError reports whether a source fragment fails to parse as
// Python. Used both for whole modules and for docstring examples.
func HasSyntaxError(source []byte) bool {
	tree := parseSource(source)
	if tree == nil {
		return true
	}
	defer tree.Close()
	return tree.RootNode().HasError()
}

// nodeText extracts the text content of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// namedChildren returns the named children of a node in source order.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	count := int(node.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		children = append(children, node.NamedChild(uint(i)))
	}
	return children
}

// startLine and endLine convert tree-sitter's 0-based rows to 1-based
// line numbers.
func startLine(node *sitter.Node) int { return int(node.StartPosition().Row) + 1 }
func endLine(node *sitter.Node) int   { return int(node.EndPosition().Row) + 1 }

// stringLiteralValue strips quotes and prefixes from a Python string
// literal, returning its inner text. The literal itself is never
// evaluated; escape sequences are left as written.
func stringLiteralValue(text string) string {
	// Drop string prefixes such as r, b, u, f in either case.
	trimmed := strings.TrimLeft(text, "rRbBuUfF")

	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(trimmed, q) && strings.HasSuffix(trimmed, q) && len(trimmed) >= 2*len(q) {
			return trimmed[len(q) : len(trimmed)-len(q)]
		}
	}
	return trimmed
}

// docstringOf returns the cleaned docstring if the first statement of
// body is a bare string literal, in the style of ast.get_docstring.
func docstringOf(body *sitter.Node, source []byte) string {
	for _, child := range namedChildren(body) {
		if child.Kind() == "comment" {
			continue
		}
		if child.Kind() != "expression_statement" {
			return ""
		}
		expr := child.NamedChild(0)
		if expr == nil || expr.Kind() != "string" {
			return ""
		}
		return cleanDocstring(stringLiteralValue(nodeText(expr, source)))
	}
	return ""
}

// cleanDocstring trims uniform leading indentation from every line
// after the first, then trims surrounding blank lines.
func cleanDocstring(doc string) string {
	lines := strings.Split(doc, "\n")
	if len(lines) == 1 {
		return strings.TrimSpace(doc)
	}

	margin := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	out := []string{strings.TrimSpace(lines[0])}
	for _, line := range lines[1:] {
		if margin > 0 && len(line) >= margin {
			line = line[margin:]
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}

	return strings.Trim(strings.Join(out, "\n"), "\n")
}
