// Package cli implements the clockbody command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/clockbody/pkg/buildinfo"
	"github.com/matzehuels/clockbody/pkg/cache"
	"github.com/matzehuels/clockbody/pkg/config"
	"github.com/matzehuels/clockbody/pkg/openscad"
	"github.com/matzehuels/clockbody/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "clockbody"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// newRenderer builds the OpenSCAD renderer; replaced in tests.
	newRenderer func(binary string) pipeline.Renderer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{Logger: newLogger(w, level)}
	c.newRenderer = c.systemRenderer
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// verbose reports whether debug logging is enabled.
func (c *CLI) verbose() bool {
	return c.Logger.GetLevel() <= log.DebugLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "clockbody renders custom clock bodies with OpenSCAD",
		Long: `clockbody reads a clock face layout file, formats the characters between
the <BEGIN> and <END> lines as an OpenSCAD array, and renders the clock body
model with the OpenSCAD command-line tool.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.initCommand())
	root.AddCommand(c.doctorCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool, binary string) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.newRenderer(binary), c.Logger), nil
}

// systemRenderer runs the real OpenSCAD binary. Its output is forwarded to
// the terminal only in verbose mode; otherwise the spinner owns stderr and
// the output tail is reported on failure.
func (c *CLI) systemRenderer(binary string) pipeline.Renderer {
	r := openscad.New(binary)
	if c.verbose() {
		r.Stdout = os.Stderr
		r.Stderr = os.Stderr
	}
	return r
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the job file at path, or ./clockbody.toml when path is
// empty. A missing default file yields the built-in defaults.
func (c *CLI) loadConfig(path string) (config.Config, error) {
	if path != "" {
		c.Logger.Debugf("Loading config %s", path)
		return config.Load(path)
	}
	cfg, found, err := config.LoadOptional(config.FileName)
	if found {
		c.Logger.Debugf("Loaded config %s", config.FileName)
	}
	return cfg, err
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/clockbody/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
