package layout

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/clockbody/pkg/errors"
)

// Sentinel lines delimiting the layout block.
const (
	Begin = "<BEGIN>"
	End   = "<END>"
)

// Row is one line of the layout block split into tokens.
type Row []string

// Layout is the ordered list of rows between the sentinels.
type Layout []Row

// Rows returns the number of rows.
func (l Layout) Rows() int { return len(l) }

// Width returns the length of the longest row.
func (l Layout) Width() int {
	w := 0
	for _, r := range l {
		w = max(w, len(r))
	}
	return w
}

// Tokens returns the total number of tokens across all rows.
func (l Layout) Tokens() int {
	n := 0
	for _, r := range l {
		n += len(r)
	}
	return n
}

// Parse extracts the layout block from lines.
//
// Lines may be given with or without their trailing "\n" or "\r\n"; a line
// matches a sentinel when it equals it exactly once the terminator is
// removed. The first occurrence of each sentinel is used.
//
// Parse returns an error with code [errors.ErrCodeSentinelNotFound] if either
// sentinel is missing, and [errors.ErrCodeSentinelOrder] if the first <END>
// does not come after the first <BEGIN>.
func Parse(lines []string) (Layout, error) {
	begin := indexOf(lines, Begin)
	if begin < 0 {
		return nil, errors.New(errors.ErrCodeSentinelNotFound, "sentinel %s not found", Begin)
	}
	end := indexOf(lines, End)
	if end < 0 {
		return nil, errors.New(errors.ErrCodeSentinelNotFound, "sentinel %s not found", End)
	}
	if end <= begin {
		return nil, errors.New(errors.ErrCodeSentinelOrder,
			"sentinel %s (line %d) must come after %s (line %d)", End, end+1, Begin, begin+1)
	}

	block := lines[begin+1 : end]
	l := make(Layout, 0, len(block))
	for _, line := range block {
		l = append(l, Row(strings.Fields(line)))
	}
	return l, nil
}

func indexOf(lines []string, sentinel string) int {
	for i, line := range lines {
		if trimEOL(line) == sentinel {
			return i
		}
	}
	return -1
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// Read reads all of r and parses the layout block.
// Read does not close r.
func Read(r io.Reader) (Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Parse(splitLines(data))
}

// ReadFile reads the file at path and parses its layout block. The file is
// closed before parsing begins. Errors reading the file are wrapped with the
// path.
func ReadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(splitLines(data))
}

// splitLines splits data into lines, keeping each line's terminator.
func splitLines(data []byte) []string {
	return strings.SplitAfter(string(data), "\n")
}
