package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateVariableName validates a dataset variable name.
//
// Names end up as map keys, DOT identifiers and cache-key components, so the
// rules are conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateVariableName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDataset, "variable name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidDataset, "variable name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDataset, "variable name %q contains control characters", name)
		}
	}

	return nil
}

// ValidatePath validates a dataset or configuration file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}

	return nil
}

// hyperparameterKeyRegex matches hyperparameter keys such as "maxK" or "scoreFunction".
var hyperparameterKeyRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*$`)

// ValidateHyperparameterKey validates a key of a flat hyperparameter map.
func ValidateHyperparameterKey(key string) error {
	if !hyperparameterKeyRegex.MatchString(strings.TrimSpace(key)) {
		return New(ErrCodeInvalidConfig, "invalid hyperparameter key: %q", key)
	}
	return nil
}
