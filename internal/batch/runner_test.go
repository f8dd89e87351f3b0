package batch

import (
	"context"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/repolens/repolens/internal/agent"
	"github.com/repolens/repolens/internal/config"
	"github.com/repolens/repolens/internal/ledger"
	"github.com/repolens/repolens/internal/llm"
	llmmock "github.com/repolens/repolens/internal/llm/mock"
)

type fakeGH struct {
	searchJSON string
	files      map[string]string // path -> content
	listing    string
}

func (f *fakeGH) Run(ctx context.Context, args ...string) (string, error) {
	switch args[0] {
	case "search":
		return f.searchJSON, nil
	case "api":
		if strings.Contains(args[1], "git/trees") {
			return f.listing, nil
		}
		for path, content := range f.files {
			if strings.Contains(args[1], "contents/"+path) {
				return base64.StdEncoding.EncodeToString([]byte(content)), nil
			}
		}
		return "", errors.New("HTTP 404")
	}
	return "", errors.New("unexpected gh call")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Model:  config.ModelConfig{Name: "test-model"},
		GitHub: config.GitHubConfig{Owner: "@me", RepoLimit: 10, Timeout: time.Second},
		Output: config.OutputConfig{Path: filepath.Join(t.TempDir(), "out.csv")},
		Agent:  config.AgentConfig{MaxTurns: 6, TurnTimeout: time.Minute, MaxFiles: 80, MaxFileBytes: 6000},
	}
}

func searchJSON(t *testing.T, repos ...string) string {
	t.Helper()
	type repo struct {
		Name     string `json:"name"`
		FullName string `json:"fullName"`
	}
	var out []repo
	for _, r := range repos {
		out = append(out, repo{Name: r, FullName: "me/" + r})
	}
	data, err := json.Marshal(out)
	require.NoError(t, err)
	return string(data)
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	gh := &fakeGH{
		searchJSON: searchJSON(t, "tiny"),
		listing:    "README.md\n",
		files:      map[string]string{"README.md": "A tiny CLI that converts CSV to JSON."},
	}
	provider := &llmmock.Provider{Turns: []llmmock.Turn{
		{Chunks: []llm.StreamChunk{{ToolCalls: []llm.ToolCall{{Function: llm.ToolFunctionCall{
			Name:      "read_file",
			Arguments: json.RawMessage(`{"file_path":"README.md"}`),
		}}}}}},
		{Chunks: []llm.StreamChunk{{Content: "A tiny CLI that converts CSV files into JSON documents."}}},
	}}

	cfg := testConfig(t)
	led := ledger.New(cfg.Output.Path)
	runner := NewRunner(cfg, gh, provider, led, nil)

	require.NoError(t, runner.Run(context.Background()))

	rows := readRows(t, cfg.Output.Path)
	require.Len(t, rows, 2)
	require.Equal(t, "tiny", rows[1][0])
	require.NotEmpty(t, rows[1][1])
	require.NotEqual(t, agent.FailedDescription, rows[1][1])

	// Re-running must skip the completed repository entirely.
	second := &llmmock.Provider{}
	runner = NewRunner(cfg, gh, second, led, nil)
	require.NoError(t, runner.Run(context.Background()))

	require.Empty(t, second.Requests)
	require.Len(t, readRows(t, cfg.Output.Path), 2)
}

func TestRunRecordsExhaustionAsFailureRow(t *testing.T) {
	t.Parallel()

	gh := &fakeGH{searchJSON: searchJSON(t, "stuck"), listing: "README.md\n",
		files: map[string]string{"README.md": "stub"}}

	// A model that only ever calls tools never produces a description.
	provider := &llmmock.Provider{StreamFn: func(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamChunk, <-chan error) {
		ch := make(chan llm.StreamChunk, 1)
		errCh := make(chan error, 1)
		ch <- llm.StreamChunk{ToolCalls: []llm.ToolCall{{Function: llm.ToolFunctionCall{
			Name:      "read_file",
			Arguments: json.RawMessage(`{"file_path":"README.md"}`),
		}}}}
		close(ch)
		close(errCh)
		return ch, errCh
	}}

	cfg := testConfig(t)
	runner := NewRunner(cfg, gh, provider, ledger.New(cfg.Output.Path), nil)
	require.NoError(t, runner.Run(context.Background()))

	rows := readRows(t, cfg.Output.Path)
	require.Len(t, rows, 2)
	require.Equal(t, agent.FailedDescription, rows[1][1])
}

func TestRunSurvivesAnalysisPanic(t *testing.T) {
	t.Parallel()

	gh := &fakeGH{searchJSON: searchJSON(t, "boom", "tiny"), listing: "README.md\n",
		files: map[string]string{"README.md": "A tiny CLI."}}

	calls := 0
	provider := &llmmock.Provider{StreamFn: func(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamChunk, <-chan error) {
		calls++
		if calls == 1 {
			panic("unexpected provider state")
		}
		ch := make(chan llm.StreamChunk, 1)
		errCh := make(chan error, 1)
		ch <- llm.StreamChunk{Content: "A tiny command-line tool."}
		close(ch)
		close(errCh)
		return ch, errCh
	}}

	cfg := testConfig(t)
	runner := NewRunner(cfg, gh, provider, ledger.New(cfg.Output.Path), nil)
	require.NoError(t, runner.Run(context.Background()))

	rows := readRows(t, cfg.Output.Path)
	require.Len(t, rows, 3)
	require.Equal(t, "Error during processing", rows[1][1])
	require.Equal(t, "A tiny command-line tool.", rows[2][1])
}

func TestRunLeavesInterruptedRepoUnrecorded(t *testing.T) {
	t.Parallel()

	gh := &fakeGH{searchJSON: searchJSON(t, "slow"), listing: "README.md\n",
		files: map[string]string{"README.md": "stub"}}

	// The context is cancelled mid-stream, as a SIGINT during a turn would.
	ctx, cancel := context.WithCancel(context.Background())
	provider := &llmmock.Provider{StreamFn: func(streamCtx context.Context, req llm.ChatRequest) (<-chan llm.StreamChunk, <-chan error) {
		cancel()
		ch := make(chan llm.StreamChunk)
		errCh := make(chan error, 1)
		errCh <- context.Canceled
		close(ch)
		close(errCh)
		return ch, errCh
	}}

	cfg := testConfig(t)
	led := ledger.New(cfg.Output.Path)
	runner := NewRunner(cfg, gh, provider, led, nil)
	require.ErrorIs(t, runner.Run(ctx), context.Canceled)

	// No row for the interrupted repository, only the header.
	require.Len(t, readRows(t, cfg.Output.Path), 1)

	// A resumed run analyzes it again.
	second := &llmmock.Provider{Turns: []llmmock.Turn{
		{Chunks: []llm.StreamChunk{{Content: "A tiny command-line tool."}}},
	}}
	runner = NewRunner(cfg, gh, second, led, nil)
	require.NoError(t, runner.Run(context.Background()))

	require.NotEmpty(t, second.Requests)
	rows := readRows(t, cfg.Output.Path)
	require.Len(t, rows, 2)
	require.Equal(t, "A tiny command-line tool.", rows[1][1])
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	gh := &fakeGH{searchJSON: searchJSON(t, "one", "two"), listing: "README.md\n",
		files: map[string]string{"README.md": "stub"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(t)
	runner := NewRunner(cfg, gh, &llmmock.Provider{}, ledger.New(cfg.Output.Path), nil)
	require.ErrorIs(t, runner.Run(ctx), context.Canceled)
}
