// Package fonts provides the default clock face font and looks up installed
// font files.
//
// OpenSCAD resolves fonts by family name through fontconfig and silently
// falls back to its default font when the family is missing. [Find] lets the
// CLI warn about that before a long render.
package fonts

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/flopp/go-findfont"
)

// DefaultFamily is the stencil font the clock body generator is designed for.
const DefaultFamily = "Secrets Stencil"

// DefaultSize is the default font size in OpenSCAD units.
const DefaultSize = 11

// ErrNotFound is returned when no installed font file matches a family.
var ErrNotFound = errors.New("font not found")

// fontExts are the font file types OpenSCAD can load.
var fontExts = map[string]bool{".ttf": true, ".otf": true, ".ttc": true}

// list is swapped in tests.
var list = findfont.List

// Find returns the path of an installed font file for family.
// Matching ignores case, spaces, dashes and underscores, so "Secrets Stencil"
// matches SecretsStencil.ttf and secrets-stencil-regular.otf.
// A style suffix after ':' (e.g. "Liberation Sans:style=Bold") is ignored.
func Find(family string) (string, error) {
	family, _, _ = strings.Cut(family, ":")
	want := normalize(family)
	if want == "" {
		return "", ErrNotFound
	}

	var best string
	for _, path := range list() {
		ext := strings.ToLower(filepath.Ext(path))
		if !fontExts[ext] {
			continue
		}
		name := normalize(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		if !strings.HasPrefix(name, want) {
			continue
		}
		// Prefer the exact family file over style variants.
		if name == want || name == want+"regular" {
			return path, nil
		}
		if best == "" {
			best = path
		}
	}
	if best == "" {
		return "", ErrNotFound
	}
	return best, nil
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
