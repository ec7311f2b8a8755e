// Package config loads clockbody job settings from a TOML file.
//
// A job file names the layout input, the OpenSCAD generator, the output
// model and the font:
//
//	input = "make_clock_body_characters.txt"
//	generator = "make_clock_body.scad"
//	output = "Custom_Body.stl"
//	openscad = "openscad"
//
//	[font]
//	name = "Secrets Stencil"
//	size = 11
//
// Missing keys keep their [Default] values. Relative paths are resolved
// against the directory containing the job file.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/clockbody/pkg/errors"
	"github.com/matzehuels/clockbody/pkg/fonts"
	"github.com/matzehuels/clockbody/pkg/openscad"
)

// FileName is the job file looked up in the working directory.
const FileName = "clockbody.toml"

// Default file names used when no job file or flag overrides them.
const (
	DefaultInput     = "make_clock_body_characters.txt"
	DefaultGenerator = "make_clock_body.scad"
	DefaultOutput    = "Custom_Body.stl"
)

// Config holds the settings for one render job.
type Config struct {
	Input     string `toml:"input"`
	Generator string `toml:"generator"`
	Output    string `toml:"output"`
	OpenSCAD  string `toml:"openscad"`
	Font      Font   `toml:"font"`
}

// Font selects the clock face font.
type Font struct {
	Name string  `toml:"name"`
	Size float64 `toml:"size"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Input:     DefaultInput,
		Generator: DefaultGenerator,
		Output:    DefaultOutput,
		OpenSCAD:  openscad.DefaultBinary,
		Font: Font{
			Name: fonts.DefaultFamily,
			Size: fonts.DefaultSize,
		},
	}
}

// Load reads the job file at path on top of [Default].
// Unknown keys are rejected so typos do not silently fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// LoadOptional loads path if it exists and returns [Default] otherwise.
// The boolean reports whether a file was read.
func LoadOptional(path string) (Config, bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), false, nil
	}
	cfg, err := Load(path)
	return cfg, err == nil, err
}

// resolve joins relative file paths onto dir.
func (c *Config) resolve(dir string) {
	if dir == "" || dir == "." {
		return
	}
	for _, p := range []*string{&c.Input, &c.Generator, &c.Output} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Validate checks that the configuration can drive a render.
func (c Config) Validate() error {
	if err := errors.ValidatePath(c.Input); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "input")
	}
	if err := errors.ValidatePath(c.Generator); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "generator")
	}
	if err := errors.ValidateOutputPath(c.Output); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "output")
	}
	if c.OpenSCAD == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "openscad binary cannot be empty")
	}
	if err := errors.ValidateFontName(c.Font.Name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "font name")
	}
	if err := errors.ValidateFontSize(c.Font.Size); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "font size")
	}
	return nil
}

// Encode writes c as TOML. Used by "clockbody init".
func (c Config) Encode(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
