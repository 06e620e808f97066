package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidPattern indicates an exclusion glob that does not compile
	ErrInvalidPattern = errors.New("invalid exclude pattern")

	// ErrInvalidVersionPattern indicates a version regexp that does not compile
	ErrInvalidVersionPattern = errors.New("invalid version pattern")

	// ErrInvalidTimeout indicates an unusable sandbox timeout
	ErrInvalidTimeout = errors.New("invalid sandbox timeout")

	// ErrEmptyOutputDir indicates a missing output directory
	ErrEmptyOutputDir = errors.New("empty output directory")

	// ErrInvalidExampleLines indicates an invalid example line limit
	ErrInvalidExampleLines = errors.New("invalid max example lines")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateAnalysis(&cfg.Analysis); err != nil {
		errs = append(errs, err)
	}
	if err := validateSandbox(&cfg.Sandbox); err != nil {
		errs = append(errs, err)
	}
	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateAnalysis(cfg *AnalysisConfig) error {
	var errs []error

	for _, pattern := range cfg.Exclude {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	if cfg.VersionPattern == "" {
		cfg.VersionPattern = DefaultVersionPattern
	}
	if re, err := regexp.Compile(cfg.VersionPattern); err != nil {
		errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidVersionPattern, cfg.VersionPattern, err))
	} else if re.NumSubexp() < 2 {
		errs = append(errs, fmt.Errorf("%w: %q must capture name and version groups", ErrInvalidVersionPattern, cfg.VersionPattern))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateSandbox(cfg *SandboxConfig) error {
	if cfg.Enabled && cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: timeout_seconds must be positive when the sandbox is enabled, got %d", ErrInvalidTimeout, cfg.TimeoutSeconds)
	}
	return nil
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Dir) == "" {
		errs = append(errs, fmt.Errorf("%w: output.dir is required", ErrEmptyOutputDir))
	}
	if cfg.MaxExampleLines <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_example_lines must be positive, got %d", ErrInvalidExampleLines, cfg.MaxExampleLines))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
