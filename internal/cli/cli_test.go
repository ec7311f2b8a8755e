package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clockbody/pkg/errors"
	"github.com/matzehuels/clockbody/pkg/openscad"
	"github.com/matzehuels/clockbody/pkg/pipeline"
)

const testLayout = "<BEGIN>\n12 . 3\n4 5 6\n<END>\n"

// fakeRenderer writes a stub model, or fails with err.
type fakeRenderer struct {
	binary string
	jobs   []openscad.Job
	err    error
}

func (f *fakeRenderer) Render(ctx context.Context, job openscad.Job) error {
	f.jobs = append(f.jobs, job)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(job.Output, []byte("solid clock\n"), 0644)
}

func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	c.newRenderer = func(string) pipeline.Renderer { return &fakeRenderer{} }
	return c
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig, origErr := stdout, stderr
	stdout, stderr = &buf, io.Discard
	t.Cleanup(func() { stdout, stderr = orig, origErr })
	return &buf
}

// jobDir writes a layout and generator into a temp dir.
func jobDir(t *testing.T) (dir, input, generator string) {
	t.Helper()
	dir = t.TempDir()
	input = filepath.Join(dir, "layout.txt")
	generator = filepath.Join(dir, "clock.scad")
	if err := os.WriteFile(input, []byte(testLayout), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(generator, []byte("clock();\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir, input, generator
}

func execute(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newTestCLI(t).RootCommand()
	want := []string{"generate", "layout", "init", "doctor", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("root command missing %q", name)
		}
	}
}

func TestGenerate(t *testing.T) {
	out := captureStdout(t)
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir, input, generator := jobDir(t)
	output := filepath.Join(dir, "Body.stl")

	fr := &fakeRenderer{}
	c := newTestCLI(t)
	c.newRenderer = func(binary string) pipeline.Renderer {
		fr.binary = binary
		return fr
	}

	err := execute(t, c, "generate", input, "-g", generator, "-o", output, "--font", "DejaVu Sans", "--font-size", "9")
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Generating a clock with the following layout:",
		"[\n  [\"12\", \".\", \"3\"],\n  [\"4\", \"5\", \"6\"]\n]",
		"Exported custom clock body: " + output,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("model not written: %v", err)
	}
	if fr.binary != "openscad" {
		t.Errorf("renderer binary = %q, want openscad", fr.binary)
	}
	if len(fr.jobs) != 1 {
		t.Fatalf("renderer called %d times", len(fr.jobs))
	}
	args := strings.Join(openscad.Args(fr.jobs[0]), " ")
	if !strings.Contains(args, `-DARG_font="DejaVu Sans"`) || !strings.Contains(args, "-DARG_font_size=9") {
		t.Errorf("renderer args = %s", args)
	}
}

func TestGenerateDryRun(t *testing.T) {
	out := captureStdout(t)
	_, input, generator := jobDir(t)

	fr := &fakeRenderer{}
	c := newTestCLI(t)
	c.newRenderer = func(string) pipeline.Renderer { return fr }

	if err := execute(t, c, "generate", input, "-g", generator, "--dry-run", "--no-cache"); err != nil {
		t.Fatalf("generate --dry-run error: %v", err)
	}
	if len(fr.jobs) != 0 {
		t.Error("dry run should not render")
	}
	if !strings.Contains(out.String(), "openscad -o Custom_Body.stl") {
		t.Errorf("dry run should print the command:\n%s", out.String())
	}
}

func TestGenerateRenderFailure(t *testing.T) {
	renderErr := errors.Wrap(errors.ErrCodeRenderFailed,
		&errors.RenderError{ExitCode: 1, Stderr: "WARNING: ok\nERROR: Parser error in line 3"},
		"openscad failed")

	for _, strict := range []bool{false, true} {
		name := "lenient"
		if strict {
			name = "strict"
		}
		t.Run(name, func(t *testing.T) {
			out := captureStdout(t)
			dir, input, generator := jobDir(t)
			output := filepath.Join(dir, "Body.stl")

			c := newTestCLI(t)
			c.newRenderer = func(string) pipeline.Renderer { return &fakeRenderer{err: renderErr} }

			args := []string{"generate", input, "-g", generator, "-o", output, "--no-cache"}
			if strict {
				args = append(args, "--strict")
			}
			err := execute(t, c, args...)
			if strict && !errors.Is(err, errors.ErrCodeRenderFailed) {
				t.Errorf("strict generate error = %v, want RENDER_FAILED", err)
			}
			if !strict && err != nil {
				t.Errorf("generate error = %v, want nil", err)
			}

			text := out.String()
			if !strings.Contains(text, "Failed to generate clock body! Error: OpenSCAD exited with status 1") {
				t.Errorf("output should report failure:\n%s", text)
			}
			if !strings.Contains(text, "Parser error in line 3") {
				t.Errorf("output should include renderer stderr:\n%s", text)
			}
			if _, err := os.Stat(output); !os.IsNotExist(err) {
				t.Error("failed render should not leave a model")
			}
		})
	}
}

func TestGenerateRendererNotFound(t *testing.T) {
	captureStdout(t)
	_, input, generator := jobDir(t)

	c := newTestCLI(t)
	c.newRenderer = func(string) pipeline.Renderer {
		return &fakeRenderer{err: errors.New(errors.ErrCodeRendererNotFound, "renderer %q not found", "openscad")}
	}

	err := execute(t, c, "generate", input, "-g", generator, "--no-cache")
	if !errors.Is(err, errors.ErrCodeRendererNotFound) {
		t.Errorf("generate error = %v, want RENDERER_NOT_FOUND", err)
	}
}

func TestGenerateSentinelError(t *testing.T) {
	captureStdout(t)
	dir, _, generator := jobDir(t)
	input := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(input, []byte("<END>\n1\n<BEGIN>\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := execute(t, newTestCLI(t), "generate", input, "-g", generator, "--no-cache")
	if !errors.Is(err, errors.ErrCodeSentinelOrder) {
		t.Errorf("generate error = %v, want SENTINEL_ORDER", err)
	}
}

func TestGenerateConfigFile(t *testing.T) {
	captureStdout(t)
	dir, _, _ := jobDir(t)
	cfgPath := filepath.Join(dir, "job.toml")
	content := "input = \"layout.txt\"\ngenerator = \"clock.scad\"\noutput = \"FromConfig.stl\"\n[font]\nsize = 14\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	fr := &fakeRenderer{}
	c := newTestCLI(t)
	c.newRenderer = func(string) pipeline.Renderer { return fr }

	if err := execute(t, c, "generate", "-c", cfgPath, "--no-cache", "--font-size", "12"); err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "FromConfig.stl")); err != nil {
		t.Errorf("output from config not written: %v", err)
	}
	args := strings.Join(openscad.Args(fr.jobs[0]), " ")
	if !strings.Contains(args, "-DARG_font_size=12") {
		t.Errorf("flag should override config font size: %s", args)
	}
}

func TestGenerateInvalidFlags(t *testing.T) {
	captureStdout(t)
	_, input, generator := jobDir(t)

	err := execute(t, newTestCLI(t), "generate", input, "-g", generator, "-o", "body.png")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("generate error = %v, want INVALID_CONFIG", err)
	}
}

func TestLayoutCommand(t *testing.T) {
	out := captureStdout(t)
	_, input, _ := jobDir(t)

	if err := execute(t, newTestCLI(t), "layout", input); err != nil {
		t.Fatal(err)
	}
	want := "[\n  [\"12\", \".\", \"3\"],\n  [\"4\", \"5\", \"6\"]\n]\n"
	if out.String() != want {
		t.Errorf("layout output = %q, want %q", out.String(), want)
	}

	out.Reset()
	if err := execute(t, newTestCLI(t), "layout", input, "--json"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"12",`) || !strings.HasPrefix(out.String(), "[") {
		t.Errorf("layout --json output = %q", out.String())
	}
}

func TestInitCommand(t *testing.T) {
	captureStdout(t)
	path := filepath.Join(t.TempDir(), "clockbody.toml")

	if err := execute(t, newTestCLI(t), "init", "-o", path); err != nil {
		t.Fatalf("init error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Secrets Stencil") {
		t.Errorf("job file = %s", data)
	}
	if err := execute(t, newTestCLI(t), "init", "-o", path); err == nil {
		t.Error("init should refuse to overwrite")
	}
}

type fakeVersioner struct {
	version string
	err     error
}

func (f fakeVersioner) Version(context.Context) (string, error) { return f.version, f.err }

func TestRunDoctor(t *testing.T) {
	out := captureStdout(t)
	_, input, generator := jobDir(t)
	c := newTestCLI(t)
	cfg, _ := c.loadConfig("")
	cfg.Input, cfg.Generator = input, generator

	if err := c.runDoctor(context.Background(), cfg, fakeVersioner{version: "OpenSCAD version 2021.01"}); err != nil {
		t.Fatalf("runDoctor error: %v", err)
	}
	if !strings.Contains(out.String(), "OpenSCAD version 2021.01") {
		t.Errorf("doctor output = %q", out.String())
	}

	out.Reset()
	err := c.runDoctor(context.Background(), cfg, fakeVersioner{err: errors.New(errors.ErrCodeRendererNotFound, "not found")})
	if err == nil {
		t.Error("runDoctor should fail without OpenSCAD")
	}
}

func TestLastLines(t *testing.T) {
	got := lastLines("a\n\nb\r\nc\n", 2)
	if strings.Join(got, ",") != "b,c" {
		t.Errorf("lastLines() = %q", got)
	}
	if got := lastLines("", 3); len(got) != 0 {
		t.Errorf("lastLines(\"\") = %q", got)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		root := newTestCLI(t).RootCommand()
		var buf bytes.Buffer
		root.SetOut(&buf)
		root.SetArgs([]string{"completion", shell})
		if err := root.Execute(); err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(buf.String(), appName) {
			t.Errorf("completion %s script does not mention %s", shell, appName)
		}
	}
}
