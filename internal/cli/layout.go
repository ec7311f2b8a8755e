package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clockbody/pkg/pipeline"
)

// layoutCommand creates the layout command for previewing the formatted array.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		configPath string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "layout [layout.txt]",
		Short: "Print the formatted layout array without rendering",
		Long: `Print the formatted layout array without rendering.

The output is exactly the value passed to OpenSCAD as ARG_clock_layout, so it
can be pasted into a .scad file for previewing in the OpenSCAD GUI.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(configPath)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Input = args[0]
			}
			return c.runLayout(cmd.Context(), cfg.Input, asJSON)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "job file (default: ./clockbody.toml if present)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rows as a JSON array")

	return cmd
}

// runLayout parses input and prints the layout.
func (c *CLI) runLayout(ctx context.Context, input string, asJSON bool) error {
	runner := pipeline.NewRunner(nil, nil, nil, loggerFromContext(ctx))
	l, text, err := runner.Parse(ctx, pipeline.Options{Input: input})
	if err != nil {
		return err
	}

	if !asJSON {
		printRaw(text)
		return nil
	}
	rows := make([][]string, len(l))
	for i, r := range l {
		rows[i] = append([]string{}, r...)
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	printRaw(string(data))
	return nil
}
