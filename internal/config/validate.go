package config

import (
	"path/filepath"
	"strings"

	"github.com/thoreinstein/mimeo/internal/backup"
	"github.com/thoreinstein/mimeo/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates a version other than CurrentVersion.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrNegativeSpacing indicates a rule_spacing below zero.
	ErrNegativeSpacing = errors.New("rule_spacing must not be negative")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != CurrentVersion {
		errs = append(errs, errors.Wrapf(ErrUnsupportedVersion, "version %d", cfg.Version))
	}

	if cfg.RuleSpacing < 0 {
		errs = append(errs, ErrNegativeSpacing)
	}

	if _, err := backup.ParseAlgorithm(cfg.HashAlgorithm); err != nil {
		errs = append(errs, err)
	}

	if err := validatePath(cfg.RulesFile); err != nil {
		errs = append(errs, &PathError{Field: "rules_file", Path: cfg.RulesFile, Err: err})
	}

	if err := validatePath(cfg.LogDir); err != nil {
		errs = append(errs, &PathError{Field: "log_dir", Path: cfg.LogDir, Err: err})
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default" or "disabled")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
