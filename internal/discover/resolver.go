package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkgchew/pkgchew/internal/config"
	"github.com/pkgchew/pkgchew/internal/model"
)

// MarkerFile is the file that marks a directory as a regular package.
const MarkerFile = "__init__.py"

// PackageNotFoundError is returned when no candidate root qualifies for
// the requested identifier.
type PackageNotFoundError struct {
	Identifier string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package not found: %s", e.Identifier)
}

// AmbiguousPackageError is returned when two unrelated roots normalize
// to the same canonical name and neither is explicitly preferred.
type AmbiguousPackageError struct {
	Name  string
	Paths []string
}

func (e *AmbiguousPackageError) Error() string {
	return fmt.Sprintf("ambiguous package %q: found at %s", e.Name, strings.Join(e.Paths, ", "))
}

// CanonicalName normalizes a package name so the same logical package
// never yields two different names: lower-cased, separators unified.
func CanonicalName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, ".", "_")
	return name
}

// Resolver turns a package identifier (installed name or filesystem
// path) into one or more candidate package roots.
type Resolver struct {
	searchPaths []string
	namespace   map[string]bool
	versionRE   *regexp.Regexp
}

// NewResolver creates a resolver from the analysis configuration.
func NewResolver(cfg config.AnalysisConfig) (*Resolver, error) {
	pattern := cfg.VersionPattern
	if pattern == "" {
		pattern = config.DefaultVersionPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile version pattern: %w", err)
	}

	namespace := make(map[string]bool, len(cfg.NamespacePackages))
	for _, name := range cfg.NamespacePackages {
		namespace[CanonicalName(name)] = true
	}

	return &Resolver{
		searchPaths: cfg.SearchPaths,
		namespace:   namespace,
		versionRE:   re,
	}, nil
}

// Resolve returns candidate package roots for the identifier, ordered
// by specificity: a local source path always wins over anything found
// on the search paths. It returns *PackageNotFoundError when nothing
// qualifies and *AmbiguousPackageError when two unrelated roots share a
// canonical name.
func (r *Resolver) Resolve(identifier string) ([]*model.PackageRoot, []model.Diagnostic, error) {
	if looksLikePath(identifier) {
		if info, err := os.Stat(identifier); err == nil && info.IsDir() {
			root, diags, err := r.resolveLocal(identifier)
			if err != nil {
				return nil, diags, err
			}
			return []*model.PackageRoot{root}, diags, nil
		}
		return nil, nil, &PackageNotFoundError{Identifier: identifier}
	}

	// Prefer a local directory of the same name over installed copies.
	if info, err := os.Stat(identifier); err == nil && info.IsDir() {
		if root, diags, err := r.resolveLocal(identifier); err == nil {
			return []*model.PackageRoot{root}, diags, nil
		}
	}

	return r.resolveInstalled(identifier)
}

// resolveLocal resolves a filesystem directory into a package root.
func (r *Resolver) resolveLocal(dir string) (*model.PackageRoot, []model.Diagnostic, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve path %s: %w", dir, err)
	}

	var diags []model.Diagnostic

	// A version-suffixed directory one level above a valid root is a
	// version segment, not part of the name: descend into the child.
	if m := r.versionRE.FindStringSubmatch(filepath.Base(abs)); m != nil {
		child := filepath.Join(abs, m[1])
		if isPackageDir(child) {
			return &model.PackageRoot{
				Path:    child,
				Name:    CanonicalName(m[1]),
				Version: m[2],
			}, diags, nil
		}
	}

	name := filepath.Base(abs)
	version := ""
	if m := r.versionRE.FindStringSubmatch(filepath.Base(filepath.Dir(abs))); m != nil {
		if CanonicalName(m[1]) == CanonicalName(name) {
			version = m[2]
		} else {
			diags = append(diags, model.Warningf(abs,
				"parent directory %q looks version-suffixed but does not match package %q; ignoring",
				filepath.Base(filepath.Dir(abs)), name))
		}
	}

	canonical := CanonicalName(name)
	switch {
	case hasMarker(abs):
		return &model.PackageRoot{Path: abs, Name: canonical, Version: version}, diags, nil
	case r.namespace[canonical] && containsSource(abs):
		return &model.PackageRoot{
			Path:      abs,
			Name:      canonical,
			Namespace: true,
			Portions:  []string{abs},
			Version:   version,
		}, diags, nil
	default:
		return nil, diags, &PackageNotFoundError{Identifier: dir}
	}
}

// resolveInstalled scans the configured search paths for a package of
// the given name.
func (r *Resolver) resolveInstalled(name string) ([]*model.PackageRoot, []model.Diagnostic, error) {
	canonical := CanonicalName(name)
	var diags []model.Diagnostic
	var regular []*model.PackageRoot
	var portions []string

	for _, sp := range r.searchPaths {
		entries, err := os.ReadDir(sp)
		if err != nil {
			diags = append(diags, model.Warningf(sp, "skipping unreadable search path: %v", err))
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			path := filepath.Join(sp, entry.Name())

			// Direct match with a package marker.
			if CanonicalName(entry.Name()) == canonical {
				if hasMarker(path) {
					regular = append(regular, &model.PackageRoot{Path: path, Name: canonical})
					continue
				}
				if r.namespace[canonical] && containsSource(path) {
					portions = append(portions, path)
					continue
				}
			}

			// Version-suffixed parent: mypkg-2.3.1/mypkg.
			if m := r.versionRE.FindStringSubmatch(entry.Name()); m != nil && CanonicalName(m[1]) == canonical {
				child := filepath.Join(path, m[1])
				if isPackageDir(child) {
					regular = append(regular, &model.PackageRoot{
						Path:    child,
						Name:    canonical,
						Version: m[2],
					})
				}
			}
		}
	}

	// Namespace portions spanning several directories form one root.
	if len(portions) > 0 {
		sort.Strings(portions)
		root := &model.PackageRoot{
			Path:      portions[0],
			Name:      canonical,
			Namespace: true,
			Portions:  portions,
		}
		if len(regular) > 0 {
			paths := []string{regular[0].Path, portions[0]}
			return nil, diags, &AmbiguousPackageError{Name: canonical, Paths: paths}
		}
		return []*model.PackageRoot{root}, diags, nil
	}

	if len(regular) == 0 {
		return nil, diags, &PackageNotFoundError{Identifier: name}
	}

	// Two unrelated installations of the same name cannot be ordered.
	if len(distinctPaths(regular)) > 1 && !versionsDiffer(regular) {
		return nil, diags, &AmbiguousPackageError{Name: canonical, Paths: distinctPaths(regular)}
	}

	// Most specific first: versioned roots carry more information,
	// and newer installs of the same package win over older ones.
	sort.SliceStable(regular, func(i, j int) bool {
		return versionGreater(regular[i].Version, regular[j].Version)
	})
	if len(regular) > 1 {
		diags = append(diags, model.Warningf(regular[0].Path,
			"multiple installations of %s found; documenting version %s", canonical, regular[0].Version))
	}
	return regular, diags, nil
}

// versionGreater orders dotted numeric versions so that 10.0 outranks
// 9.0. Segments are compared as integers; the longer version wins on
// an equal prefix, and an empty version never outranks a real one.
func versionGreater(a, b string) bool {
	if a == "" || b == "" {
		return a != ""
	}
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		ai, _ := strconv.Atoi(as[i])
		bi, _ := strconv.Atoi(bs[i])
		if ai != bi {
			return ai > bi
		}
	}
	return len(as) > len(bs)
}

// looksLikePath reports whether the identifier is addressed as a
// filesystem path rather than a bare package name.
func looksLikePath(identifier string) bool {
	return strings.ContainsRune(identifier, os.PathSeparator) ||
		strings.HasPrefix(identifier, ".") ||
		filepath.IsAbs(identifier)
}

func hasMarker(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, MarkerFile))
	return err == nil && !info.IsDir()
}

func isPackageDir(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir() && hasMarker(dir)
}

// containsSource reports whether the directory holds at least one
// Python source file or package subdirectory.
func containsSource(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() && hasMarker(filepath.Join(dir, entry.Name())) {
			return true
		}
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".py") {
			return true
		}
	}
	return false
}

func distinctPaths(roots []*model.PackageRoot) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, root := range roots {
		if !seen[root.Path] {
			seen[root.Path] = true
			paths = append(paths, root.Path)
		}
	}
	sort.Strings(paths)
	return paths
}

// versionsDiffer reports whether every root carries a distinct version,
// in which case multiple candidates are expected rather than ambiguous.
func versionsDiffer(roots []*model.PackageRoot) bool {
	seen := make(map[string]bool)
	for _, root := range roots {
		if root.Version == "" || seen[root.Version] {
			return false
		}
		seen[root.Version] = true
	}
	return true
}
