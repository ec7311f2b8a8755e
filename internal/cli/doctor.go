package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clockbody/pkg/config"
	"github.com/matzehuels/clockbody/pkg/fonts"
	"github.com/matzehuels/clockbody/pkg/openscad"
)

// versioner is the part of the renderer doctor needs.
type versioner interface {
	Version(ctx context.Context) (string, error)
}

// doctorCommand creates the doctor command that checks the render setup.
func (c *CLI) doctorCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the OpenSCAD installation, generator, and font",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(configPath)
			if err != nil {
				return err
			}
			return c.runDoctor(cmd.Context(), cfg, openscad.New(cfg.OpenSCAD))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "job file (default: ./clockbody.toml if present)")

	return cmd
}

// runDoctor reports each check. Only a missing OpenSCAD is an error.
func (c *CLI) runDoctor(ctx context.Context, cfg config.Config, r versioner) error {
	printKeyValue("input", cfg.Input)
	printKeyValue("generator", cfg.Generator)
	printKeyValue("output", cfg.Output)
	printKeyValue("font", fmt.Sprintf("%s (%g)", cfg.Font.Name, cfg.Font.Size))
	printNewline()

	var failed bool

	version, err := r.Version(ctx)
	if err != nil {
		printError("OpenSCAD: %v", err)
		failed = true
	} else {
		printSuccess("OpenSCAD: %s", version)
	}

	for _, f := range []struct{ label, path string }{
		{"Layout file", cfg.Input},
		{"Generator", cfg.Generator},
	} {
		if _, err := os.Stat(f.path); err != nil {
			printWarning("%s not found: %s", f.label, f.path)
		} else {
			printSuccess("%s: %s", f.label, f.path)
		}
	}

	if path, err := fonts.Find(cfg.Font.Name); err != nil {
		printWarning("Font %q not installed; OpenSCAD will use its default font", cfg.Font.Name)
	} else {
		printSuccess("Font: %s", cfg.Font.Name)
		printFile(path)
	}

	if failed {
		return fmt.Errorf("openscad is not usable")
	}
	return nil
}
