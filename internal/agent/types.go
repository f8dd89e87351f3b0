package agent

import "github.com/repolens/repolens/internal/llm"

// TurnResult is one fully aggregated model turn.
type TurnResult struct {
	Thinking  string
	Content   string
	ToolCalls []llm.ToolCall
}

// Observer receives live progress for one analysis. Thinking and Answer are
// called per stream fragment, in order; the remaining hooks fire once per
// event. Implementations must not block.
type Observer interface {
	Thinking(text string)
	Answer(text string)
	ToolStart(name, args string)
	ToolDone(name, result string)
	Nudged()
}

// NopObserver discards all progress events.
type NopObserver struct{}

func (NopObserver) Thinking(string) {}

func (NopObserver) Answer(string) {}

func (NopObserver) ToolStart(_, _ string) {}

func (NopObserver) ToolDone(_, _ string) {}

func (NopObserver) Nudged() {}
