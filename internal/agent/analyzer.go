// Package agent implements the bounded multi-turn analysis loop: it
// interleaves streamed model turns, tool execution, and a correction path for
// models that narrate tool use instead of invoking tools.
package agent

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/repolens/repolens/internal/llm"
	"github.com/repolens/repolens/internal/observability"
	"github.com/repolens/repolens/internal/tools"
)

const (
	// FailedDescription is the designated outcome when the turn budget is
	// exhausted without a final answer.
	FailedDescription = "Analysis failed."

	nudgeMessage = "You wrote a plan but didn't trigger the tool. Please properly invoke the 'read_file' tool function now."
)

// PlanDetector reports whether answer text looks like a narrated tool plan
// rather than a real invocation.
type PlanDetector func(content string) bool

// DefaultPlanDetector flags text that mentions the read-file tool inside an
// action plan. Substring matching trades precision for simplicity; swap in a
// stricter detector via SetPlanDetector when that matters.
func DefaultPlanDetector(content string) bool {
	return strings.Contains(content, "action") && strings.Contains(content, "read_file")
}

// Config holds per-analysis runtime parameters.
type Config struct {
	Model       string
	Think       bool
	MaxTurns    int
	TurnTimeout time.Duration
}

// Analyzer runs one repository analysis to completion.
type Analyzer struct {
	provider llm.Provider
	registry *tools.Registry
	cfg      Config
	logger   *zap.Logger

	detector PlanDetector
	observer Observer
	metrics  *observability.Metrics
}

// New creates an Analyzer with the default plan detector and no observer.
func New(provider llm.Provider, registry *tools.Registry, cfg Config, logger *zap.Logger) *Analyzer {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 6
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		provider: provider,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		detector: DefaultPlanDetector,
		observer: NopObserver{},
	}
}

// SetObserver installs a progress observer.
func (a *Analyzer) SetObserver(obs Observer) {
	if obs != nil {
		a.observer = obs
	}
}

// SetPlanDetector replaces the hallucinated-plan heuristic.
func (a *Analyzer) SetPlanDetector(fn PlanDetector) {
	if fn != nil {
		a.detector = fn
	}
}

// SetMetrics installs collectors for turn and tool accounting.
func (a *Analyzer) SetMetrics(m *observability.Metrics) {
	a.metrics = m
}

// Analyze drives the turn loop for one repository and always returns exactly
// one description: the model's final answer or FailedDescription. The
// conversation is owned by this call and discarded when it returns.
func (a *Analyzer) Analyze(ctx context.Context, repoName string) string {
	runID := uuid.NewString()
	log := a.logger.With(zap.String("run_id", runID), zap.String("repo", repoName))

	fileList := a.registry.Execute(ctx, tools.NameListFiles, nil)

	messages := []llm.ChatMessage{
		{Role: llm.RoleSystem, Content: buildSystemPrompt()},
		{Role: llm.RoleUser, Content: buildInitialPrompt(repoName, fileList)},
	}
	toolSchemas := a.registry.LLMTools()

	for turn := 0; turn < a.cfg.MaxTurns; turn++ {
		res, err := a.runTurn(ctx, messages, toolSchemas)
		if err != nil {
			if ctx.Err() != nil {
				log.Warn("analysis cancelled", zap.Error(ctx.Err()))
				return FailedDescription
			}
			// A failed turn consumes budget; history is unchanged so the
			// next turn retries the same request.
			log.Warn("model turn failed", zap.Int("turn", turn+1), zap.Error(err))
			continue
		}

		messages = append(messages, llm.ChatMessage{
			Role:      llm.RoleAssistant,
			Content:   res.Content,
			Thinking:  res.Thinking,
			ToolCalls: res.ToolCalls,
		})

		// A turn with tool calls is never final, regardless of answer text.
		if len(res.ToolCalls) > 0 {
			messages = append(messages, a.executeCalls(ctx, res.ToolCalls)...)
			continue
		}

		if a.detector(res.Content) {
			log.Warn("model narrated a plan instead of invoking the tool, nudging",
				zap.Int("turn", turn+1))
			a.observer.Nudged()
			messages = append(messages, llm.ChatMessage{Role: llm.RoleUser, Content: nudgeMessage})
			continue
		}

		if desc := strings.TrimSpace(res.Content); desc != "" {
			a.metrics.RecordTurns(turn + 1)
			log.Info("analysis complete", zap.Int("turns", turn+1))
			return res.Content
		}
	}

	a.metrics.RecordTurns(a.cfg.MaxTurns)
	log.Warn("turn budget exhausted without a final description")
	return FailedDescription
}

func (a *Analyzer) runTurn(ctx context.Context, messages []llm.ChatMessage, toolSchemas []llm.Tool) (TurnResult, error) {
	if a.cfg.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.TurnTimeout)
		defer cancel()
	}

	chunks, errs := a.provider.Stream(ctx, llm.ChatRequest{
		Model:    a.cfg.Model,
		Messages: messages,
		Tools:    toolSchemas,
		Think:    a.cfg.Think,
	})
	return Aggregate(chunks, errs, a.observer)
}

// executeCalls runs requested invocations in request order and returns one
// tool message per invocation. Execution failures are sentinel text inside
// the messages, never errors.
func (a *Analyzer) executeCalls(ctx context.Context, calls []llm.ToolCall) []llm.ChatMessage {
	out := make([]llm.ChatMessage, 0, len(calls))
	for _, call := range calls {
		name := call.Function.Name
		a.observer.ToolStart(name, string(call.Function.Arguments))

		result := a.registry.Execute(ctx, name, call.Function.Arguments)

		a.metrics.RecordToolCall(name, toolCallStatus(result))
		a.observer.ToolDone(name, result)

		out = append(out, llm.ChatMessage{
			Role:     llm.RoleTool,
			ToolName: name,
			Content:  result,
		})
	}
	return out
}

// toolCallStatus classifies a tool result by its exact sentinel prefixes.
// Legitimate file content may begin with the word "Error".
func toolCallStatus(result string) string {
	if strings.HasPrefix(result, "Error:") || strings.HasPrefix(result, "Error executing tool:") {
		return "error"
	}
	return "ok"
}
