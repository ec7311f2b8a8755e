package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func captureStderr(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := stderr
	stderr = &buf
	t.Cleanup(func() { stderr = orig })
	return &buf
}

func TestSpinnerShowsElapsed(t *testing.T) {
	buf := captureStderr(t)

	s := startSpinner(context.Background(), "Rendering")
	time.Sleep(3 * spinnerInterval)
	s.stop()

	out := buf.String()
	if !strings.Contains(out, "Rendering 0s") {
		t.Errorf("spinner output = %q, should show elapsed seconds", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("spinner should clear its line on stop, got %q", out)
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	buf := captureStderr(t)
	ctx, cancel := context.WithCancel(context.Background())

	s := startSpinner(ctx, "Rendering")
	cancel()
	s.wg.Wait()

	n := buf.Len()
	time.Sleep(3 * spinnerInterval)
	if buf.Len() != n {
		t.Error("spinner kept drawing after context cancellation")
	}
	s.stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	captureStderr(t)

	s := startSpinner(context.Background(), "Rendering")
	s.stop()
	s.stop()

	var nilSpinner *spinner
	nilSpinner.stop()
}

func TestSpinnerStopBeforeFirstFrame(t *testing.T) {
	buf := captureStderr(t)

	s := startSpinner(context.Background(), "Rendering")
	s.stop()

	if strings.Contains(buf.String(), "Rendering") && !strings.HasSuffix(buf.String(), "\r") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
