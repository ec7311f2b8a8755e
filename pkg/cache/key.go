package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer derives cache keys from job inputs.
type Keyer interface {
	// RenderKey returns the key for a rendered model.
	RenderKey(opts RenderKeyOpts) string
}

// RenderKeyOpts lists everything that influences a render's output.
type RenderKeyOpts struct {
	Layout        string  // formatted layout literal
	Font          string  // font family
	FontSize      float64 // font size
	GeneratorHash string  // Hash of the .scad generator source
	Format        string  // output extension, e.g. ".stl"
}

// DefaultKeyer hashes the key options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RenderKey returns "render:" followed by the hex SHA-256 of the options.
func (DefaultKeyer) RenderKey(opts RenderKeyOpts) string {
	return hashKey("render", opts.Layout, opts.Font, opts.FontSize, opts.GeneratorHash, opts.Format)
}

// hashKey returns prefix + ":" + the SHA-256 of the JSON-encoded parts.
// JSON keeps part boundaries unambiguous ("ab","c" differs from "a","bc").
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
