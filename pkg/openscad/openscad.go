// Package openscad runs the OpenSCAD command-line renderer.
//
// A [Job] names the output file, the .scad generator that builds the model,
// and the -D defines that parameterize it. [Renderer.Render] runs the job as
// a subprocess and blocks until it exits:
//
//	r := openscad.New("openscad")
//	err := r.Render(ctx, openscad.Job{
//	    Output:    "Custom_Body.stl",
//	    Generator: "make_clock_body.scad",
//	    Defines: []openscad.Define{
//	        openscad.Raw("ARG_clock_layout", layout.Format(l)),
//	        openscad.String("ARG_font", "Secrets Stencil"),
//	        openscad.Number("ARG_font_size", 11),
//	    },
//	})
//
// A non-zero exit is reported as an [errors.ErrCodeRenderFailed] error whose
// cause is an [*errors.RenderError].
package openscad

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/clockbody/pkg/errors"
	"github.com/matzehuels/clockbody/pkg/observability"
)

// DefaultBinary is the renderer executable looked up on PATH.
const DefaultBinary = "openscad"

// stderrTail bounds how much renderer stderr is kept for error reports.
const stderrTail = 2048

// Define is a single -D name=value override passed to OpenSCAD.
// Value is an OpenSCAD expression and is passed through verbatim.
type Define struct {
	Name  string
	Value string
}

// Raw returns a define whose value is already an OpenSCAD expression.
func Raw(name, expr string) Define {
	return Define{Name: name, Value: expr}
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// String returns a define whose value is the OpenSCAD string literal s.
// Backslashes and double quotes in s are escaped.
func String(name, s string) Define {
	return Define{Name: name, Value: `"` + stringEscaper.Replace(s) + `"`}
}

// Number returns a define whose value is the number n.
func Number(name string, n float64) Define {
	return Define{Name: name, Value: strconv.FormatFloat(n, 'f', -1, 64)}
}

// Arg returns the command-line form -Dname=value.
func (d Define) Arg() string {
	return "-D" + d.Name + "=" + d.Value
}

// Job describes one render.
type Job struct {
	Output    string   // output model path; the extension selects the format
	Generator string   // .scad file
	Defines   []Define // applied in order
}

// Args returns the OpenSCAD arguments for j:
// -o <output> <generator> -D<name>=<value>...
func Args(j Job) []string {
	args := []string{"-o", j.Output, j.Generator}
	for _, d := range j.Defines {
		args = append(args, d.Arg())
	}
	return args
}

// CommandLine returns a shell-like rendering of the full command for display.
// Arguments containing spaces or quotes are single-quoted.
func CommandLine(binary string, j Job) string {
	parts := []string{quote(binary)}
	for _, a := range Args(j) {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n\"'\\$`") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Executor runs a process to completion.
type Executor interface {
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

// ExecFunc adapts a function to the Executor interface.
type ExecFunc func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error

// Run calls f.
func (f ExecFunc) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	return f(ctx, name, args, stdout, stderr)
}

// SystemExecutor runs processes with os/exec.
var SystemExecutor Executor = ExecFunc(func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
})

// Renderer invokes OpenSCAD.
type Renderer struct {
	Binary string    // executable name or path
	Exec   Executor  // process runner
	Stdout io.Writer // receives renderer stdout (optional)
	Stderr io.Writer // receives renderer stderr (optional)
}

// New creates a renderer for binary using the system executor.
// An empty binary selects DefaultBinary.
func New(binary string) *Renderer {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Renderer{Binary: binary, Exec: SystemExecutor}
}

// Render runs j and waits for OpenSCAD to exit.
//
// Errors:
//   - ctx cancellation: ctx.Err() is returned as-is
//   - binary not found: [errors.ErrCodeRendererNotFound]
//   - non-zero exit: [errors.ErrCodeRenderFailed] wrapping [*errors.RenderError]
func (r *Renderer) Render(ctx context.Context, j Job) error {
	_, err := r.run(ctx, Args(j))
	return err
}

// Version returns the first line OpenSCAD prints for --version.
func (r *Renderer) Version(ctx context.Context) (string, error) {
	out, err := r.run(ctx, []string{"--version"})
	if err != nil {
		return "", err
	}
	// Older releases print the version on stderr, newer ones on stdout.
	return strings.TrimSpace(strings.SplitN(strings.TrimSpace(out), "\n", 2)[0]), nil
}

// run executes the binary and returns the captured stdout and stderr tails.
func (r *Renderer) run(ctx context.Context, args []string) (string, error) {
	var outTail, tail tailBuffer
	stderr := io.Writer(&tail)
	if r.Stderr != nil {
		stderr = io.MultiWriter(r.Stderr, &tail)
	}
	stdout := io.Writer(&outTail)
	if r.Stdout != nil {
		stdout = io.MultiWriter(r.Stdout, &outTail)
	}

	exe := r.Exec
	if exe == nil {
		exe = SystemExecutor
	}

	hooks := observability.Process()
	hooks.OnStart(ctx, r.Binary, args)
	start := time.Now()
	err := exe.Run(ctx, r.Binary, args, stdout, stderr)
	code := exitCode(err)
	hooks.OnExit(ctx, r.Binary, code, time.Since(start))

	if err == nil {
		return outTail.String() + tail.String(), nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if stderrors.Is(err, exec.ErrNotFound) || stderrors.Is(err, fs.ErrNotExist) {
		return "", errors.Wrap(errors.ErrCodeRendererNotFound, err, "renderer %q not found", r.Binary)
	}

	re := &errors.RenderError{ExitCode: code, Stderr: strings.TrimSpace(tail.String()), Err: err}
	return "", errors.Wrap(errors.ErrCodeRenderFailed, re, "%s failed", r.Binary)
}

// exitCode maps a Run error to a process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// tailBuffer keeps the last stderrTail bytes written to it.
type tailBuffer struct {
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - stderrTail; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
