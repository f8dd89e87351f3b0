package mock

import (
	"context"

	"github.com/repolens/repolens/internal/llm"
)

// Turn is one scripted model turn for the mock provider.
type Turn struct {
	Chunks []llm.StreamChunk
	Err    error
}

// Provider is a test double implementing llm.Provider. Each Stream call
// consumes the next scripted turn; an optional StreamFn overrides scripting.
type Provider struct {
	NameValue string
	Turns     []Turn
	Requests  []llm.ChatRequest
	StreamFn  func(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamChunk, <-chan error)

	next int
}

func (p *Provider) Name() string {
	if p.NameValue != "" {
		return p.NameValue
	}
	return "mock"
}

func (p *Provider) Stream(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamChunk, <-chan error) {
	p.Requests = append(p.Requests, req)

	if p.StreamFn != nil {
		return p.StreamFn(ctx, req)
	}

	var turn Turn
	if p.next < len(p.Turns) {
		turn = p.Turns[p.next]
		p.next++
	}

	ch := make(chan llm.StreamChunk, len(turn.Chunks))
	errCh := make(chan error, 1)
	go func() {
		defer close(ch)
		defer close(errCh)
		for _, c := range turn.Chunks {
			ch <- c
		}
		if turn.Err != nil {
			errCh <- turn.Err
		}
	}()
	return ch, errCh
}
