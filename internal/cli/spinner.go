package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// stderr receives spinner frames; swapped in tests.
var stderr io.Writer = os.Stderr

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line with the elapsed time while OpenSCAD runs.
// Renders can take minutes, so the seconds counter is the useful part.
type spinner struct {
	message string
	start   time.Time
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
	width   int
}

// startSpinner starts animating message until stop is called or ctx ends.
func startSpinner(ctx context.Context, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{message: message, start: time.Now(), cancel: cancel}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
	return s
}

// stop ends the animation and clears the line. Safe to call more than once
// and on a nil spinner.
func (s *spinner) stop() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
		if s.width > 0 {
			fmt.Fprintf(stderr, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

// elapsed returns the running time, truncated to seconds.
func (s *spinner) elapsed() time.Duration {
	return time.Since(s.start).Truncate(time.Second)
}

func (s *spinner) draw(frame string) {
	line := fmt.Sprintf("%s %ds", s.message, int(s.elapsed().Seconds()))
	if n := len(line) + 2; n > s.width {
		s.width = n
	}
	fmt.Fprintf(stderr, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(line))
}
