// Package tools binds named callable tools to one repository so the agent
// loop can invoke them by name with decoded arguments.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/repolens/repolens/internal/inspect"
)

// Tool names form a closed set known at design time.
const (
	NameListFiles = "list_files"
	NameReadFile  = "read_file"
)

// Registry dispatches tool invocations against a repository inspector.
type Registry struct {
	inspector *inspect.Inspector
}

// NewRegistry builds a registry over the given inspector.
func NewRegistry(inspector *inspect.Inspector) *Registry {
	return &Registry{inspector: inspector}
}

// Execute runs the named tool with raw JSON arguments and returns its textual
// result. Failures of any kind, including unknown names, bad argument shapes,
// and panics inside a tool, come back as error sentinel text rather than a
// Go error so the result can always flow into the conversation.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (result string) {
	defer func() {
		if p := recover(); p != nil {
			result = fmt.Sprintf("Error executing tool: %v", p)
		}
	}()

	switch name {
	case NameListFiles:
		return r.inspector.ListFiles(ctx)

	case NameReadFile:
		var params struct {
			FilePath string `json:"file_path"`
		}
		if len(args) > 0 {
			if err := json.Unmarshal(args, &params); err != nil {
				return fmt.Sprintf("Error executing tool: %v", err)
			}
		}
		if params.FilePath == "" {
			return "Error executing tool: file_path is required"
		}
		return r.inspector.ReadFile(ctx, params.FilePath)

	default:
		return "Error: Function not found."
	}
}
