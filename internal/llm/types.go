package llm

import (
	"context"
	"encoding/json"
)

// Role is the message role used in chat exchanges.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ChatMessage represents a single message exchanged with the model.
// Assistant messages may carry thinking text and tool-call requests;
// tool messages carry the invoking tool's name alongside the result content.
type ChatMessage struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content,omitempty"`
	Thinking  string     `json:"thinking,omitempty"`
	ToolName  string     `json:"tool_name,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall describes a model-initiated tool invocation.
type ToolCall struct {
	Function ToolFunctionCall `json:"function"`
}

// ToolFunctionCall is the function call payload for a tool request.
type ToolFunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Tool is the wire shape for a function tool offered to the model.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction describes one callable function and its parameter schema.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

// ToolParameters is a JSON-schema object describing function parameters.
type ToolParameters struct {
	Type       string                  `json:"type"`
	Properties map[string]ToolProperty `json:"properties"`
	Required   []string                `json:"required,omitempty"`
}

// ToolProperty describes a single parameter.
type ToolProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ChatRequest is the input for chat providers.
type ChatRequest struct {
	Model    string
	Messages []ChatMessage
	Tools    []Tool
	Think    bool
}

// StreamChunk is one incremental update of a streamed model turn. A chunk
// may carry thinking text, answer text, tool calls, or any mix of the three.
type StreamChunk struct {
	Thinking  string
	Content   string
	ToolCalls []ToolCall
	Done      bool
}

// Provider defines the contract for streaming chat providers. The chunk
// channel is closed when the turn completes; the error channel carries at
// most one terminal error and is closed with the stream.
type Provider interface {
	Name() string
	Stream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, <-chan error)
}
