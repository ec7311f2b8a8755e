package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// outputExtensions lists the 3D export formats OpenSCAD selects by file extension.
var outputExtensions = map[string]bool{
	".stl": true,
	".off": true,
	".amf": true,
	".3mf": true,
	".obj": true,
	".wrl": true,
}

// ValidatePath validates a file path supplied on the command line or in a
// config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
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

	return nil
}

// ValidateOutputPath validates the renderer output path.
// OpenSCAD picks the export format from the extension, so it must be a 3D format.
func ValidateOutputPath(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !outputExtensions[ext] {
		return New(ErrCodeInvalidPath, "unsupported output format %q (must be .stl, .off, .amf, .3mf, .obj, or .wrl)", ext)
	}
	return nil
}

// ValidateFontName validates a font family name passed to OpenSCAD.
// The name is embedded in a quoted OpenSCAD string, so quotes and
// backslashes are rejected.
func ValidateFontName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "font name cannot be empty")
	}
	if strings.ContainsAny(name, "\"\\") {
		return New(ErrCodeInvalidInput, "font name contains invalid characters: %q", name)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "font name contains invalid control characters")
		}
	}
	return nil
}

// ValidateFontSize validates a font size in OpenSCAD units.
// The size must be a finite positive number.
func ValidateFontSize(size float64) error {
	if math.IsNaN(size) || math.IsInf(size, 0) {
		return New(ErrCodeInvalidInput, "font size must be a finite number, got %g", size)
	}
	if size <= 0 {
		return New(ErrCodeInvalidInput, "font size must be positive, got %g", size)
	}
	return nil
}
