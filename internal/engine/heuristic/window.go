package heuristic

import (
	"strings"

	"github.com/garagon/perfscan/internal/rules"
)

// document is a file split into lines with the byte offset of each line start.
type document struct {
	content string
	lines   []string
	offsets []int
}

func newDocument(content []byte) *document {
	d := &document{content: string(content)}
	d.lines = strings.Split(d.content, "\n")
	d.offsets = make([]int, len(d.lines))
	off := 0
	for i, line := range d.lines {
		d.offsets[i] = off
		off += len(line) + 1
	}
	return d
}

// window returns the evidence text a guard inspects for line i (0-based).
func (d *document) window(g *rules.CompiledGuard, i int) string {
	if g == nil {
		return ""
	}
	switch g.Window {
	case rules.WindowBefore:
		start := max(i-g.Size, 0)
		return strings.Join(d.lines[start:i+1], "\n")
	case rules.WindowAfter:
		start := min(i+1, len(d.lines))
		end := min(i+1+g.Size, len(d.lines))
		return strings.Join(d.lines[start:end], "\n")
	case rules.WindowAround:
		off := d.offsets[i]
		start := max(off-g.Size, 0)
		end := min(off+g.Size, len(d.content))
		return d.content[start:end]
	case rules.WindowFile:
		return d.content
	}
	return ""
}
