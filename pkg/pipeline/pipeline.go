// Package pipeline runs a clock body job: parse the layout file, format it,
// and render the model with OpenSCAD.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Parse: read the layout file and format the block as an array literal
//  2. Render: run the generator with the layout and font defines
//
// Rendered models are cached by their inputs, so re-running an unchanged job
// copies the cached model instead of waiting for OpenSCAD.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, openscad.New(""), logger)
//	opts := pipeline.Options{
//	    Input:     "make_clock_body_characters.txt",
//	    Generator: "make_clock_body.scad",
//	    Output:    "Custom_Body.stl",
//	}
//	result, err := runner.Prepare(ctx, &opts)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Text)
//	err = runner.Render(ctx, opts, result)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clockbody/pkg/config"
	"github.com/matzehuels/clockbody/pkg/errors"
	"github.com/matzehuels/clockbody/pkg/layout"
	"github.com/matzehuels/clockbody/pkg/openscad"
)

// Parameter names read by the clock body generator.
const (
	DefineLayout   = "ARG_clock_layout"
	DefineFont     = "ARG_font"
	DefineFontSize = "ARG_font_size"
)

// Options configures a pipeline run.
type Options struct {
	Input     string  // layout text file
	Generator string  // OpenSCAD generator (.scad)
	Output    string  // model file to produce
	Font      string  // font family passed to the generator
	FontSize  float64 // font size passed to the generator

	Refresh bool // ignore cached renders

	Logger *log.Logger // optional; overrides the runner's logger
}

// FromConfig builds options from a job configuration.
func FromConfig(cfg config.Config) Options {
	return Options{
		Input:     cfg.Input,
		Generator: cfg.Generator,
		Output:    cfg.Output,
		Font:      cfg.Font.Name,
		FontSize:  cfg.Font.Size,
	}
}

// SetDefaults fills empty fields from [config.Default].
func (o *Options) SetDefaults() {
	d := config.Default()
	if o.Input == "" {
		o.Input = d.Input
	}
	if o.Generator == "" {
		o.Generator = d.Generator
	}
	if o.Output == "" {
		o.Output = d.Output
	}
	if o.Font == "" {
		o.Font = d.Font.Name
	}
	if o.FontSize == 0 {
		o.FontSize = d.Font.Size
	}
}

// ValidateForParse checks the options needed by the parse stage.
func (o Options) ValidateForParse() error {
	return errors.ValidatePath(o.Input)
}

// Validate checks all options.
func (o Options) Validate() error {
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := errors.ValidatePath(o.Generator); err != nil {
		return err
	}
	if err := errors.ValidateOutputPath(o.Output); err != nil {
		return err
	}
	if err := errors.ValidateFontName(o.Font); err != nil {
		return err
	}
	return errors.ValidateFontSize(o.FontSize)
}

// Job builds the OpenSCAD job for the formatted layout text.
func (o Options) Job(text string) openscad.Job {
	return openscad.Job{
		Output:    o.Output,
		Generator: o.Generator,
		Defines: []openscad.Define{
			openscad.Raw(DefineLayout, text),
			openscad.String(DefineFont, o.Font),
			openscad.Number(DefineFontSize, o.FontSize),
		},
	}
}

// Result holds the outcome of a pipeline run.
type Result struct {
	Layout   layout.Layout // parsed layout block
	Text     string        // formatted array literal
	Job      openscad.Job  // job as run (Output is the final path)
	Output   string        // written model path; empty until rendered
	CacheHit bool          // model copied from the render cache
	Stats    Stats
}

// Stats records stage durations.
type Stats struct {
	ParseTime  time.Duration
	RenderTime time.Duration
}
