package model

// ParseStatus describes the outcome of parsing one source file.
type ParseStatus string

const (
	ParseOK          ParseStatus = "ok"
	ParseSyntaxError ParseStatus = "syntax-error"
	ParseUnreadable  ParseStatus = "unreadable"
)

// EntityKind is the closed set of documentable entity variants.
type EntityKind string

const (
	KindClass     EntityKind = "class"
	KindFunction  EntityKind = "function"
	KindAttribute EntityKind = "attribute"
)

// ExampleStatus describes the validation outcome of one usage example.
type ExampleStatus string

const (
	ExampleValid           ExampleStatus = "valid"
	ExampleSyntaxInvalid   ExampleStatus = "syntax-invalid"
	ExampleExecutionFailed ExampleStatus = "execution-failed"
	ExampleUnvalidated     ExampleStatus = "unvalidated"
)

// PackageRoot identifies one resolved package location on disk.
// It is created by the resolver and never mutated afterwards.
type PackageRoot struct {
	// Path is the absolute filesystem path of the package directory.
	Path string `json:"path"`

	// Name is the canonical package name (see CanonicalName).
	Name string `json:"name"`

	// Namespace is true for marker-less namespace packages.
	Namespace bool `json:"namespace,omitempty"`

	// Portions lists every directory contributing to a namespace
	// package, Path included. Empty for regular packages.
	Portions []string `json:"portions,omitempty"`

	// Version holds a version captured from a version-suffixed parent
	// directory, e.g. ".../mypkg-2.3.1/mypkg" yields "2.3.1".
	Version string `json:"version,omitempty"`
}

// ModuleNode is the extraction result for a single source file.
type ModuleNode struct {
	// Path is the file's absolute path.
	Path string `json:"path"`

	// Name is the fully-qualified dotted module name.
	Name string `json:"name"`

	Status    ParseStatus `json:"status"`
	Docstring string      `json:"docstring,omitempty"`

	// Entities holds top-level entities in source order.
	Entities []*Entity `json:"entities,omitempty"`

	// Imports lists the module's import statements in source order.
	Imports []Import `json:"imports,omitempty"`
}

// Entity is a documentable unit: a class, function, or attribute.
// Classes own their nested entities; the hierarchy is acyclic by
// construction because nesting follows the syntax tree.
type Entity struct {
	Kind          EntityKind `json:"kind"`
	Name          string     `json:"name"`
	QualifiedName string     `json:"qualified_name"`
	Docstring     string     `json:"docstring,omitempty"`
	StartLine     int        `json:"start_line"`
	EndLine       int        `json:"end_line"`

	// Private marks entities whose simple name starts with a single
	// underscore (dunder names stay public). They remain in the model
	// so the writer can decide whether to render them.
	Private bool `json:"private,omitempty"`

	// Signature is the verbatim parameter list and return annotation
	// text for functions. Never evaluated.
	Signature string `json:"signature,omitempty"`

	// Value is the verbatim right-hand side text for attributes.
	Value string `json:"value,omitempty"`

	// Children holds nested entities in source order (classes only).
	Children []*Entity `json:"children,omitempty"`

	// Examples holds usage examples harvested from the docstring,
	// in source order.
	Examples []*Example `json:"examples,omitempty"`

	// References lists fully-qualified names this entity's docstring
	// refers to and that resolved against the model index.
	References []string `json:"references,omitempty"`
}

// Example is one usage fragment harvested from a docstring. Owner is a
// back-reference only; the owning entity holds the example.
type Example struct {
	Owner *Entity `json:"-"`

	// Text is the fragment exactly as it appeared in the docstring.
	Text string `json:"text"`

	// Code is the runnable form of the fragment (doctest prompts
	// stripped). Identical to Text for fenced blocks.
	Code string `json:"code"`

	Status ExampleStatus `json:"status"`

	// Cause explains a syntax-invalid or execution-failed status.
	Cause string `json:"cause,omitempty"`

	// Output is captured stdout from sandboxed execution.
	Output string `json:"output,omitempty"`
}

// ImportKind classifies where an imported module comes from.
type ImportKind string

const (
	ImportStdlib   ImportKind = "stdlib"
	ImportInternal ImportKind = "internal"
	ImportExternal ImportKind = "external"
)

// Import is a single imported path recorded from a module.
type Import struct {
	Path string     `json:"path"`
	Kind ImportKind `json:"kind"`
}

// PackageMetadata carries distribution metadata read from pyproject.toml.
type PackageMetadata struct {
	Name           string   `json:"name,omitempty"`
	Version        string   `json:"version,omitempty"`
	Description    string   `json:"description,omitempty"`
	License        string   `json:"license,omitempty"`
	RequiresPython string   `json:"requires_python,omitempty"`
	Dependencies   []string `json:"dependencies,omitempty"`
	Authors        []string `json:"authors,omitempty"`
}

// DocumentationModel is the terminal artifact of the pipeline: every
// module under one package root, merged and cross-referenced. It is
// immutable once assembly completes.
type DocumentationModel struct {
	Package  *PackageRoot    `json:"package"`
	Metadata PackageMetadata `json:"metadata"`

	// Modules appear exactly once each, in walker order.
	Modules []*ModuleNode `json:"modules"`

	// Index maps every fully-qualified entity name to its entity.
	Index map[string]*Entity `json:"-"`

	// Relationships holds the internal-dependency adjacency between
	// modules, keyed by module name, values sorted.
	Relationships map[string][]string `json:"relationships,omitempty"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Lookup resolves a fully-qualified name against the model index.
// Returns nil when the name is not indexed.
func (m *DocumentationModel) Lookup(qualified string) *Entity {
	return m.Index[qualified]
}
