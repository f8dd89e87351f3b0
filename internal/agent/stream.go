package agent

import "github.com/repolens/repolens/internal/llm"

// Aggregate drains one streamed model turn into a TurnResult. Thinking text,
// answer text, and tool calls accumulate independently; concatenation is
// order-preserving and no chunk is dropped. Fragments are surfaced through
// obs as they arrive. Aggregate performs no interpretation of the turn: it
// returns when the chunk channel closes and reports a terminal stream error,
// if any, alongside whatever was accumulated before it.
func Aggregate(chunks <-chan llm.StreamChunk, errs <-chan error, obs Observer) (TurnResult, error) {
	if obs == nil {
		obs = NopObserver{}
	}

	var res TurnResult
	for c := range chunks {
		if c.Thinking != "" {
			obs.Thinking(c.Thinking)
			res.Thinking += c.Thinking
		}
		if c.Content != "" {
			obs.Answer(c.Content)
			res.Content += c.Content
		}
		if len(c.ToolCalls) > 0 {
			res.ToolCalls = append(res.ToolCalls, c.ToolCalls...)
		}
	}

	if err := <-errs; err != nil {
		return res, err
	}
	return res, nil
}
