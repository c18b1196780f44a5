package errors

import (
	"strconv"
	"strings"
	"unicode"
)

// ValidatePath validates a local file path given on the command line or in
// the configuration file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateDocumentSize rejects import documents larger than limit bytes.
// A limit of zero or less disables the check.
func ValidateDocumentSize(size, limit int64) error {
	if limit > 0 && size > limit {
		return New(ErrCodeTooLarge, "document is %d bytes (max %d)", size, limit)
	}
	return nil
}

// ParseID parses a persisted entity ID. IDs are positive integers.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, Wrap(ErrCodeInvalidInput, err, "invalid id %q", raw)
	}
	if id <= 0 {
		return 0, New(ErrCodeInvalidInput, "invalid id %q: must be positive", raw)
	}
	return id, nil
}
