package cli

import (
	"fmt"
	"io"
	"strings"
)

// printer streams analysis progress to a writer. Thinking and answer text
// arrive as raw fragments, so section labels are emitted once on transition.
type printer struct {
	out io.Writer

	inThinking bool
	inAnswer   bool
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out}
}

func (p *printer) Thinking(text string) {
	if !p.inThinking {
		fmt.Fprint(p.out, "\n[thinking] ")
		p.inThinking = true
		p.inAnswer = false
	}
	fmt.Fprint(p.out, text)
}

func (p *printer) Answer(text string) {
	if !p.inAnswer {
		fmt.Fprint(p.out, "\n[answer] ")
		p.inAnswer = true
		p.inThinking = false
	}
	fmt.Fprint(p.out, text)
}

func (p *printer) ToolStart(name, args string) {
	p.endSection()
	fmt.Fprintf(p.out, "[tool %s] %s\n", name, strings.TrimSpace(args))
}

func (p *printer) ToolDone(name, result string) {
	fmt.Fprintf(p.out, "[tool %s done] %s\n", name, firstLine(result))
}

func (p *printer) Nudged() {
	p.endSection()
	fmt.Fprintln(p.out, "[nudge] model wrote a plan instead of calling the tool, correcting")
}

func (p *printer) endSection() {
	if p.inThinking || p.inAnswer {
		fmt.Fprintln(p.out)
		p.inThinking = false
		p.inAnswer = false
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
