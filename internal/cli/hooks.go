package cli

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clockbody/pkg/observability"
)

// debugHooks logs pipeline, cache and renderer process events at debug level,
// so --verbose shows stage timings, the exact OpenSCAD invocation and whether
// the cache was used.
type debugHooks struct {
	logger *log.Logger
}

// InstallHooks registers the CLI's debug logging hooks.
func (c *CLI) InstallHooks() {
	h := debugHooks{logger: c.Logger}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetProcessHooks(h)
}

func (h debugHooks) OnParseStart(_ context.Context, input string) {
	h.logger.Debug("parse start", "input", input)
}

func (h debugHooks) OnParseComplete(_ context.Context, input string, rows int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("parse failed", "input", input, "error", err)
		return
	}
	h.logger.Debug("parse done", "input", input, "rows", rows, "duration", d.Round(time.Microsecond))
}

func (h debugHooks) OnRenderStart(_ context.Context, output string) {
	h.logger.Debug("render start", "output", output)
}

func (h debugHooks) OnRenderComplete(_ context.Context, output string, cached bool, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "output", output, "error", err)
		return
	}
	h.logger.Debug("render done", "output", output, "cached", cached, "duration", d.Round(time.Millisecond))
}

func (h debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache store", "type", keyType, "size", formatBytes(int64(size)))
}

func (h debugHooks) OnStart(_ context.Context, binary string, args []string) {
	h.logger.Debug("exec", "cmd", binary+" "+strings.Join(args, " "))
}

func (h debugHooks) OnExit(_ context.Context, binary string, exitCode int, d time.Duration) {
	h.logger.Debug("exit", "cmd", binary, "status", exitCode, "duration", d.Round(time.Millisecond))
}
