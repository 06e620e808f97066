package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/pkgchew/pkgchew/internal/model"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Walker enumerates Python source files under a package root in a
// deterministic directory-then-alphabetical order. Each call to Walk
// recomputes the sequence from the filesystem, so it is restartable.
type Walker struct {
	root     *model.PackageRoot
	excludes []compiledPattern
}

// NewWalker creates a walker for the given root with glob-style
// exclusion patterns.
func NewWalker(root *model.PackageRoot, excludePatterns []string) (*Walker, error) {
	w := &Walker{root: root}

	for _, pattern := range excludePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("failed to compile exclude pattern %q: %w", pattern, err)
		}
		w.excludes = append(w.excludes, compiledPattern{pattern: pattern, glob: g})
	}

	return w, nil
}

// Walk yields every source file in order, invoking fn per file. A
// non-nil error from fn stops the walk.
func (w *Walker) Walk(fn func(path string) error) ([]model.Diagnostic, error) {
	var diags []model.Diagnostic

	for _, base := range w.portions() {
		if err := w.walkDir(base, base, fn, &diags); err != nil {
			return diags, err
		}
	}
	return diags, nil
}

// List returns the full ordered sequence of source files.
func (w *Walker) List() ([]string, []model.Diagnostic, error) {
	var files []string
	diags, err := w.Walk(func(path string) error {
		files = append(files, path)
		return nil
	})
	return files, diags, err
}

// portions returns the directories that make up the package: one for a
// regular package, several for a namespace package.
func (w *Walker) portions() []string {
	if len(w.root.Portions) > 0 {
		return w.root.Portions
	}
	return []string{w.root.Path}
}

// walkDir visits files of dir sorted by name, then recurses into
// subdirectories sorted by name.
func (w *Walker) walkDir(base, dir string, fn func(string) error, diags *[]model.Diagnostic) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		*diags = append(*diags, model.Warningf(dir, "skipping unreadable directory: %v", err))
		return nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var subdirs []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if !w.excluded(base, path+"/") {
				subdirs = append(subdirs, path)
			}
			continue
		}
		if !strings.HasSuffix(entry.Name(), ".py") {
			continue
		}
		if w.excluded(base, path) {
			continue
		}
		if f, err := os.Open(path); err != nil {
			*diags = append(*diags, model.Warningf(path, "skipping unreadable file: %v", err))
			continue
		} else {
			f.Close()
		}
		if err := fn(path); err != nil {
			return err
		}
	}

	for _, sub := range subdirs {
		if err := w.walkDir(base, sub, fn, diags); err != nil {
			return err
		}
	}
	return nil
}

// excluded checks a path (made relative to the walk base) against the
// exclusion patterns.
func (w *Walker) excluded(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasSuffix(path, "/") {
		rel += "/"
	}

	for _, cp := range w.excludes {
		if cp.glob.Match(rel) {
			return true
		}
		// Directory paths also match with a trailing wildcard, so a
		// pattern like "build/**" prunes the whole subtree.
		if strings.HasSuffix(rel, "/") && cp.glob.Match(rel+"**") {
			return true
		}
		// A bare-name path in the base directory should still match
		// patterns written with a leading **/ component.
		if !strings.Contains(rel, "/") && strings.HasPrefix(cp.pattern, "**/") {
			if g, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/'); err == nil && g.Match(rel) {
				return true
			}
		}
	}
	return false
}
