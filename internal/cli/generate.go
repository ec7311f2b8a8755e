package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clockbody/pkg/config"
	"github.com/matzehuels/clockbody/pkg/errors"
	"github.com/matzehuels/clockbody/pkg/fonts"
	"github.com/matzehuels/clockbody/pkg/openscad"
	"github.com/matzehuels/clockbody/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
// Empty values fall back to the job file, then to the built-in defaults.
type generateOpts struct {
	configPath string  // job file (default: ./clockbody.toml if present)
	output     string  // model output path
	generator  string  // OpenSCAD generator file
	font       string  // font family
	fontSize   float64 // font size
	binary     string  // OpenSCAD executable
	noCache    bool    // disable the render cache
	refresh    bool    // re-render even when cached
	strict     bool    // exit non-zero when OpenSCAD fails
	dryRun     bool    // print the OpenSCAD command instead of running it
}

// generateCommand creates the generate command, the main entry point.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [layout.txt]",
		Short: "Render a clock body from a layout file",
		Long: `Render a clock body from a layout file.

The layout block between the <BEGIN> and <END> lines is formatted as an
OpenSCAD array and passed to the generator as ARG_clock_layout, together with
ARG_font and ARG_font_size. The layout file defaults to the job file's
input, or make_clock_body_characters.txt.

Rendered models are cached, so re-running an unchanged job is instant.`,
		Example: `  clockbody generate
  clockbody generate roman.txt -o Roman_Body.stl --font "Liberation Sans"
  clockbody generate --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.generateConfig(cmd, args, opts)
			if err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "job file (default: ./"+config.FileName+" if present)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output model (default: "+config.DefaultOutput+")")
	cmd.Flags().StringVarP(&opts.generator, "generator", "g", "", "OpenSCAD generator (default: "+config.DefaultGenerator+")")
	cmd.Flags().StringVar(&opts.font, "font", "", "font family (default: "+fonts.DefaultFamily+")")
	cmd.Flags().Float64Var(&opts.fontSize, "font-size", 0, fmt.Sprintf("font size (default: %d)", fonts.DefaultSize))
	cmd.Flags().StringVar(&opts.binary, "openscad", "", "OpenSCAD executable (default: "+openscad.DefaultBinary+")")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if a cached model exists")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with an error when OpenSCAD fails")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the OpenSCAD command without running it")

	return cmd
}

// generateConfig merges the job file with positional args and changed flags.
func (c *CLI) generateConfig(cmd *cobra.Command, args []string, opts generateOpts) (config.Config, error) {
	cfg, err := c.loadConfig(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if len(args) == 1 {
		cfg.Input = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = opts.output
	}
	if flags.Changed("generator") {
		cfg.Generator = opts.generator
	}
	if flags.Changed("font") {
		cfg.Font.Name = opts.font
	}
	if flags.Changed("font-size") {
		cfg.Font.Size = opts.fontSize
	}
	if flags.Changed("openscad") {
		cfg.OpenSCAD = opts.binary
	}
	return cfg, cfg.Validate()
}

// runGenerate prints the formatted layout and renders the model.
//
// A failing OpenSCAD run is reported and swallowed unless opts.strict is set;
// every other error is returned.
func (c *CLI) runGenerate(ctx context.Context, cfg config.Config, opts generateOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(opts.noCache, cfg.OpenSCAD)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := pipeline.FromConfig(cfg)
	popts.Refresh = opts.refresh
	popts.Logger = logger

	result, err := runner.Prepare(ctx, &popts)
	if err != nil {
		return err
	}

	printInfo("Generating a clock with the following layout:")
	printNewline()
	printRaw(result.Text)
	printLayoutStats(result.Layout.Rows(), result.Layout.Width(), result.Layout.Tokens())
	printNewline()

	if result.Layout.Rows() == 0 {
		printWarning("Layout block in %s is empty", cfg.Input)
	}
	if _, err := fonts.Find(cfg.Font.Name); err != nil {
		logger.Warn("font not installed; OpenSCAD will fall back to its default font", "font", cfg.Font.Name)
	}

	if opts.dryRun {
		printInfo("OpenSCAD command:")
		printRaw(openscad.CommandLine(cfg.OpenSCAD, result.Job))
		return nil
	}

	prog := newProgress(logger)
	var spin *spinner
	if c.verbose() {
		printInfo("Calling OpenSCAD process...")
	} else {
		spin = startSpinner(ctx, "Calling OpenSCAD process...")
	}

	err = runner.Render(ctx, popts, result)
	spin.stop()
	if err != nil {
		return c.reportRenderError(err, opts.strict)
	}
	prog.done("Rendered " + result.Output)

	printSuccess("Exported custom clock body: %s", result.Output)
	printRenderStatus(result.CacheHit)
	return nil
}

// reportRenderError prints a failed render. Only RENDER_FAILED is recoverable.
func (c *CLI) reportRenderError(err error, strict bool) error {
	switch {
	case errors.Is(err, errors.ErrCodeRenderFailed):
		printError("Failed to generate clock body! Error: %s", renderFailure(err))
		var re *errors.RenderError
		if stderrors.As(err, &re) && re.Stderr != "" {
			for _, line := range lastLines(re.Stderr, 10) {
				printDetail("%s", line)
			}
		}
		if strict {
			return err
		}
		return nil
	case errors.Is(err, errors.ErrCodeRendererNotFound):
		printError("%s", errors.UserMessage(err))
		printNextStep("Install OpenSCAD or point to it with", "clockbody generate --openscad /path/to/openscad")
		return err
	default:
		return err
	}
}

// renderFailure summarizes a RENDER_FAILED error for display.
func renderFailure(err error) string {
	var re *errors.RenderError
	if stderrors.As(err, &re) {
		if re.ExitCode >= 0 || re.Err == nil {
			return fmt.Sprintf("OpenSCAD exited with status %d", re.ExitCode)
		}
		return re.Err.Error()
	}
	return errors.UserMessage(err)
}

// lastLines returns up to n trailing non-empty lines of s.
func lastLines(s string, n int) []string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimRight(l, "\r "); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
