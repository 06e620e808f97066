package extract

import (
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/pkgchew/pkgchew/internal/model"
)

// Extractor converts one Python source file into a ModuleNode. It
// never imports or evaluates the code it reads: everything comes from
// the syntax tree, and default values and annotations are captured as
// verbatim text.
type Extractor struct{}

// NewExtractor creates a new extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFile reads and extracts a single source file. I/O and syntax
// failures are captured in the node status, never returned as errors,
// so one bad file cannot abort a package run.
func (e *Extractor) ExtractFile(path, moduleName string) *model.ModuleNode {
	source, err := os.ReadFile(path)
	if err != nil {
		return &model.ModuleNode{
			Path:   path,
			Name:   moduleName,
			Status: model.ParseUnreadable,
		}
	}
	return e.Extract(source, path, moduleName)
}

// Extract parses source and builds the module's entity tree.
func (e *Extractor) Extract(source []byte, path, moduleName string) *model.ModuleNode {
	node := &model.ModuleNode{
		Path: path,
		Name: moduleName,
	}

	tree := parseSource(source)
	if tree == nil {
		node.Status = model.ParseSyntaxError
		return node
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		node.Status = model.ParseSyntaxError
		return node
	}

	node.Status = model.ParseOK
	node.Docstring = docstringOf(root, source)
	node.Entities = e.extractBody(root, source, moduleName, true)
	node.Imports = extractImports(root, source)
	return node
}

// extractBody extracts the entities of a module or class body in
// source order. Nested scopes are linked to their parent here, by
// construction, so the hierarchy can never contain a cycle.
func (e *Extractor) extractBody(body *sitter.Node, source []byte, qualifier string, skipDocstring bool) []*model.Entity {
	var entities []*model.Entity
	children := namedChildren(body)

	for i, child := range children {
		def := child
		if def.Kind() == "decorated_definition" {
			if inner := def.ChildByFieldName("definition"); inner != nil {
				def = inner
			}
		}

		switch def.Kind() {
		case "class_definition":
			if entity := e.extractClass(def, source, qualifier); entity != nil {
				entities = append(entities, entity)
			}
		case "function_definition":
			if entity := e.extractFunction(def, source, qualifier); entity != nil {
				entities = append(entities, entity)
			}
		case "expression_statement":
			// The leading docstring is module/class documentation,
			// not an attribute.
			if skipDocstring && i == 0 && isStringStatement(def) {
				continue
			}
			if entity := e.extractAttribute(def, source, qualifier, following(children, i)); entity != nil {
				entities = append(entities, entity)
			}
		}
	}
	return entities
}

// extractClass builds a Class entity with its nested entities.
func (e *Extractor) extractClass(node *sitter.Node, source []byte, qualifier string) *model.Entity {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	name := nodeText(nameNode, source)
	entity := &model.Entity{
		Kind:          model.KindClass,
		Name:          name,
		QualifiedName: qualifier + "." + name,
		StartLine:     startLine(node),
		EndLine:       endLine(node),
		Private:       isPrivateName(name),
	}

	if body := node.ChildByFieldName("body"); body != nil {
		entity.Docstring = docstringOf(body, source)
		entity.Children = e.extractBody(body, source, entity.QualifiedName, true)
	}
	return entity
}

// extractFunction builds a Function entity. The signature is the
// verbatim parameter list plus return annotation; evaluating default
// expressions could run arbitrary code and is off the table.
func (e *Extractor) extractFunction(node *sitter.Node, source []byte, qualifier string) *model.Entity {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	name := nodeText(nameNode, source)
	entity := &model.Entity{
		Kind:          model.KindFunction,
		Name:          name,
		QualifiedName: qualifier + "." + name,
		StartLine:     startLine(node),
		EndLine:       endLine(node),
		Private:       isPrivateName(name),
		Signature:     functionSignature(node, source),
	}

	if body := node.ChildByFieldName("body"); body != nil {
		entity.Docstring = docstringOf(body, source)
	}
	return entity
}

// extractAttribute builds an Attribute entity from an assignment
// statement. Only simple single-name targets are documented.
func (e *Extractor) extractAttribute(stmt *sitter.Node, source []byte, qualifier string, next *sitter.Node) *model.Entity {
	assign := stmt.NamedChild(0)
	if assign == nil || assign.Kind() != "assignment" {
		return nil
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return nil
	}

	name := nodeText(left, source)
	entity := &model.Entity{
		Kind:          model.KindAttribute,
		Name:          name,
		QualifiedName: qualifier + "." + name,
		StartLine:     startLine(stmt),
		EndLine:       endLine(stmt),
		Private:       isPrivateName(name),
		Value:         nodeText(assign.ChildByFieldName("right"), source),
	}

	// A bare string statement directly after an assignment documents
	// the attribute.
	if next != nil && isStringStatement(next) {
		entity.Docstring = cleanDocstring(stringLiteralValue(nodeText(next.NamedChild(0), source)))
	}
	return entity
}

// functionSignature captures the parameter list and return annotation
// exactly as written.
func functionSignature(node *sitter.Node, source []byte) string {
	sig := "()"
	if params := node.ChildByFieldName("parameters"); params != nil {
		sig = nodeText(params, source)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sig += " -> " + nodeText(ret, source)
	}
	return sig
}

// extractImports records every imported path in source order.
func extractImports(root *sitter.Node, source []byte) []model.Import {
	var imports []model.Import
	var visit func(node *sitter.Node)

	visit = func(node *sitter.Node) {
		switch node.Kind() {
		case "import_statement":
			for _, child := range namedChildren(node) {
				switch child.Kind() {
				case "dotted_name":
					imports = append(imports, model.Import{Path: nodeText(child, source)})
				case "aliased_import":
					if name := child.ChildByFieldName("name"); name != nil {
						imports = append(imports, model.Import{Path: nodeText(name, source)})
					}
				}
			}
			return
		case "import_from_statement":
			module := ""
			moduleNode := node.ChildByFieldName("module_name")
			if moduleNode != nil {
				module = nodeText(moduleNode, source)
			}
			for _, child := range namedChildren(node) {
				if moduleNode != nil && child.StartByte() == moduleNode.StartByte() {
					continue
				}
				name := child
				if child.Kind() == "aliased_import" {
					name = child.ChildByFieldName("name")
				}
				if name == nil || name.Kind() != "dotted_name" {
					continue
				}
				imports = append(imports, model.Import{Path: joinImport(module, nodeText(name, source))})
			}
			return
		}
		for _, child := range namedChildren(node) {
			visit(child)
		}
	}

	visit(root)
	return imports
}

// joinImport combines a from-module with an imported name, keeping
// relative-import dots intact.
func joinImport(module, name string) string {
	if module == "" {
		return name
	}
	if strings.HasSuffix(module, ".") {
		return module + name
	}
	return module + "." + name
}

// isStringStatement reports whether a node is a bare string-literal
// expression statement.
func isStringStatement(node *sitter.Node) bool {
	if node.Kind() != "expression_statement" {
		return false
	}
	expr := node.NamedChild(0)
	return expr != nil && expr.Kind() == "string"
}

// following returns the element after index i, if any.
func following(nodes []*sitter.Node, i int) *sitter.Node {
	if i+1 < len(nodes) {
		return nodes[i+1]
	}
	return nil
}

// isPrivateName implements the underscore convention: a single leading
// underscore marks an entity private, while dunder names stay public.
func isPrivateName(name string) bool {
	if !strings.HasPrefix(name, "_") {
		return false
	}
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") && len(name) > 4 {
		return false
	}
	return true
}

// DottedName computes the fully-qualified dotted module name of a file
// under a package root. The package's own __init__.py maps to the
// package name itself.
func DottedName(root *model.PackageRoot, file string) string {
	base := root.Path
	for _, portion := range root.Portions {
		if rel, err := filepath.Rel(portion, file); err == nil && !strings.HasPrefix(rel, "..") {
			base = portion
			break
		}
	}

	rel, err := filepath.Rel(base, file)
	if err != nil {
		rel = filepath.Base(file)
	}
	rel = strings.TrimSuffix(filepath.ToSlash(rel), ".py")

	parts := []string{root.Name}
	for _, part := range strings.Split(rel, "/") {
		if part == "" || part == "__init__" {
			continue
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ".")
}
