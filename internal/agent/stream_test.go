package agent

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/repolens/repolens/internal/llm"
)

type recordingObserver struct {
	NopObserver
	thinking []string
	answers  []string
	nudges   int
}

func (r *recordingObserver) Thinking(text string) { r.thinking = append(r.thinking, text) }
func (r *recordingObserver) Answer(text string)   { r.answers = append(r.answers, text) }
func (r *recordingObserver) Nudged()              { r.nudges++ }

func streamOf(chunks []llm.StreamChunk, err error) (<-chan llm.StreamChunk, <-chan error) {
	ch := make(chan llm.StreamChunk, len(chunks))
	errCh := make(chan error, 1)
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	if err != nil {
		errCh <- err
	}
	close(errCh)
	return ch, errCh
}

func TestAggregateMergesChannelsInOrder(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	chunks, errs := streamOf([]llm.StreamChunk{
		{Thinking: "let me "},
		{Thinking: "look", Content: "A "},
		{Content: "Go tool"},
		{ToolCalls: []llm.ToolCall{{Function: llm.ToolFunctionCall{Name: "read_file", Arguments: json.RawMessage(`{"file_path":"README.md"}`)}}}},
		{Content: ".", Done: true},
	}, nil)

	res, err := Aggregate(chunks, errs, obs)
	require.NoError(t, err)
	require.Equal(t, "let me look", res.Thinking)
	require.Equal(t, "A Go tool.", res.Content)
	require.Len(t, res.ToolCalls, 1)
	require.Equal(t, "read_file", res.ToolCalls[0].Function.Name)

	require.Equal(t, []string{"let me ", "look"}, obs.thinking)
	require.Equal(t, []string{"A ", "Go tool", "."}, obs.answers)
}

func TestAggregateSurfacesStreamError(t *testing.T) {
	t.Parallel()

	chunks, errs := streamOf([]llm.StreamChunk{{Content: "partial"}}, errors.New("connection reset"))

	res, err := Aggregate(chunks, errs, nil)
	require.Error(t, err)
	require.Equal(t, "partial", res.Content)
}

func TestAggregateEmptyTurn(t *testing.T) {
	t.Parallel()

	chunks, errs := streamOf(nil, nil)

	res, err := Aggregate(chunks, errs, nil)
	require.NoError(t, err)
	require.Empty(t, res.Content)
	require.Empty(t, res.Thinking)
	require.Empty(t, res.ToolCalls)
}
