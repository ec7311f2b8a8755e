package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/clockbody/pkg/cache"
	"github.com/matzehuels/clockbody/pkg/errors"
	"github.com/matzehuels/clockbody/pkg/layout"
	"github.com/matzehuels/clockbody/pkg/observability"
	"github.com/matzehuels/clockbody/pkg/openscad"
)

// Renderer renders an OpenSCAD job. *openscad.Renderer implements it.
type Renderer interface {
	Render(ctx context.Context, job openscad.Job) error
}

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for its collaborators; it doesn't store
// pipeline results.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Renderer Renderer
	Logger   *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If renderer is nil, OpenSCAD is looked up on PATH.
func NewRunner(c cache.Cache, keyer cache.Keyer, renderer Renderer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if renderer == nil {
		renderer = openscad.New("")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Renderer: renderer,
		Logger:   logger,
	}
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// Parse reads opts.Input and returns the layout and its formatted text.
func (r *Runner) Parse(ctx context.Context, opts Options) (layout.Layout, string, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, "", err
	}
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, opts.Input)
	start := time.Now()

	l, err := layout.ReadFile(opts.Input)
	hooks.OnParseComplete(ctx, opts.Input, l.Rows(), time.Since(start), err)
	if err != nil {
		return nil, "", err
	}

	r.logger(opts).Debug("parsed layout",
		"input", opts.Input,
		"rows", l.Rows(),
		"width", l.Width(),
		"tokens", l.Tokens(),
		"duration", time.Since(start))
	return l, layout.Format(l), nil
}

// Prepare applies defaults to opts, validates them, and runs the parse
// stage. The returned result carries the layout, its text, and the job.
func (r *Runner) Prepare(ctx context.Context, opts *Options) (*Result, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	parseStart := time.Now()
	l, text, err := r.Parse(ctx, *opts)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Layout: l,
		Text:   text,
		Job:    opts.Job(text),
	}
	result.Stats.ParseTime = time.Since(parseStart)
	return result, nil
}

// Render runs the render stage for a prepared result and records the
// output path, cache status and duration on it.
func (r *Runner) Render(ctx context.Context, opts Options, result *Result) error {
	renderStart := time.Now()
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, result.Job.Output)
	hit, err := r.render(ctx, opts, result.Job)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, result.Job.Output, hit, result.Stats.RenderTime, err)
	if err != nil {
		return err
	}
	result.Output = result.Job.Output
	result.CacheHit = hit

	r.logger(opts).Info("rendered model",
		"output", result.Output,
		"cached", hit,
		"duration", result.Stats.RenderTime)
	return nil
}

// render produces job.Output, from the cache when possible.
func (r *Runner) render(ctx context.Context, opts Options, job openscad.Job) (bool, error) {
	logger := r.logger(opts)

	source, err := os.ReadFile(job.Generator)
	if os.IsNotExist(err) {
		return false, errors.Wrap(errors.ErrCodeFileNotFound, err, "generator %s not found", job.Generator)
	}
	if err != nil {
		return false, fmt.Errorf("read generator: %w", err)
	}

	key := r.Keyer.RenderKey(cache.RenderKeyOpts{
		Layout:        layoutValue(job),
		Font:          opts.Font,
		FontSize:      opts.FontSize,
		GeneratorHash: cache.Hash(source),
		Format:        strings.ToLower(filepath.Ext(job.Output)),
	})

	cacheHooks := observability.Cache()
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			cacheHooks.OnCacheHit(ctx, "render")
			logger.Debug("render cache hit", "output", job.Output, "bytes", len(data))
			if err := writeAtomic(job.Output, data); err != nil {
				return false, err
			}
			return true, nil
		}
		cacheHooks.OnCacheMiss(ctx, "render")
	}

	tmp := tempPath(job.Output)
	scratch := job
	scratch.Output = tmp
	logger.Debug("running renderer", "generator", job.Generator, "scratch", tmp)
	if err := r.Renderer.Render(ctx, scratch); err != nil {
		os.Remove(tmp)
		return false, err
	}

	data, err := os.ReadFile(tmp)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeRenderFailed, err, "renderer exited successfully but wrote no output")
	}
	if err := os.Rename(tmp, job.Output); err != nil {
		os.Remove(tmp)
		return false, fmt.Errorf("move output into place: %w", err)
	}

	if err := r.Cache.Set(ctx, key, data, cache.RenderTTL); err != nil {
		logger.Warn("failed to cache render", "error", err)
	} else {
		cacheHooks.OnCacheSet(ctx, "render", len(data))
	}
	return false, nil
}

// layoutValue returns the layout define's value from job.
func layoutValue(job openscad.Job) string {
	for _, d := range job.Defines {
		if d.Name == DefineLayout {
			return d.Value
		}
	}
	return ""
}

// tempPath returns a unique hidden path next to output with the same
// extension, so OpenSCAD picks the same export format.
func tempPath(output string) string {
	dir, base := filepath.Split(output)
	ext := filepath.Ext(base)
	name := "." + strings.TrimSuffix(base, ext) + "-" + uuid.NewString() + ext
	return filepath.Join(dir, name)
}

// writeAtomic writes data to a temp file next to path and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp := tempPath(path)
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
