package tools

import "github.com/repolens/repolens/internal/llm"

// Schema describes a tool for JSON schema/tool-calling.
type Schema struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Parameters  []SchemaField `json:"parameters"`
}

// SchemaField describes a single parameter.
type SchemaField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Tool converts the schema to the function-tool wire shape.
func (s Schema) Tool() llm.Tool {
	params := llm.ToolParameters{
		Type:       "object",
		Properties: make(map[string]llm.ToolProperty, len(s.Parameters)),
	}
	for _, f := range s.Parameters {
		params.Properties[f.Name] = llm.ToolProperty{
			Type:        f.Type,
			Description: f.Description,
		}
		if f.Required {
			params.Required = append(params.Required, f.Name)
		}
	}
	return llm.Tool{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  params,
		},
	}
}

// Schemas provides descriptors for the available tools.
func (r *Registry) Schemas() []Schema {
	return []Schema{
		{
			Name:        "list_files",
			Description: "Lists files in the repository. Call this FIRST to see the project structure.",
			Parameters:  []SchemaField{},
		},
		{
			Name:        "read_file",
			Description: "Reads the content of a specific file.",
			Parameters: []SchemaField{
				{
					Name:        "file_path",
					Type:        "string",
					Description: "The path of the file to read (e.g., 'README.md', 'Cargo.toml')",
					Required:    true,
				},
			},
		},
	}
}

// LLMTools returns the schemas in wire shape.
func (r *Registry) LLMTools() []llm.Tool {
	schemas := r.Schemas()
	out := make([]llm.Tool, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, s.Tool())
	}
	return out
}
