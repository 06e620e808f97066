package model

import "fmt"

// Severity grades a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic records one non-fatal problem encountered by the pipeline:
// a skipped file, a syntax error, an unresolved reference, or a failed
// example validation. The core never prints; callers decide how to
// surface these.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`

	// Path is the file the diagnostic refers to, when there is one.
	Path string `json:"path,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Path != "" {
		return fmt.Sprintf("%s: %s: %s", d.Severity, d.Path, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Warningf builds a warning diagnostic.
func Warningf(path, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Errorf builds an error diagnostic.
func Errorf(path, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, args...)}
}
