package errors

import (
	"strings"
	"unicode"
)

// ValidateFilename checks that name can be created as a single file inside an
// output directory. Document numbers are used verbatim in export file names,
// so a number such as "BL/2025/001" produces a name no directory can hold as
// one entry; such names are rejected rather than rewritten.
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "file name cannot be empty")
	}
	if len(name) > 255 {
		return New(ErrCodeInvalidPath, "file name too long (max 255 bytes)")
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidPath, "file name cannot be %q", name)
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "file name cannot contain path separators: %q", name)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "file name contains control characters")
		}
	}
	return nil
}
