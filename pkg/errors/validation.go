package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxWidth is the largest tree width the synthesis core supports.
// Leaf masks are stored in a uint64.
const MaxWidth = 64

// ValidateWidth checks that a requested adder width is in [1, MaxWidth].
func ValidateWidth(width int) error {
	if width < 1 {
		return New(ErrCodeInvalidInput, "width must be at least 1, got %d", width)
	}
	if width > MaxWidth {
		return New(ErrCodeInvalidInput, "width %d exceeds maximum of %d", width, MaxWidth)
	}
	return nil
}

// identifierRegex matches identifiers legal in both Verilog and VHDL.
var identifierRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidateIdentifier validates a generated HDL module or port name.
// VHDL forbids consecutive and trailing underscores, so those are rejected too.
func ValidateIdentifier(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "identifier cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "identifier too long (max 128 characters)")
	}
	if !identifierRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid identifier: %q", name)
	}
	if strings.Contains(name, "__") || strings.HasSuffix(name, "_") {
		return New(ErrCodeInvalidInput, "identifier %q has consecutive or trailing underscores", name)
	}
	return nil
}

// ValidatePath validates a catalog or output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
