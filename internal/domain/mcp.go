package domain

import "github.com/google/jsonschema-go/jsonschema"

// ToolContract is the externally visible description of a tool.
// It is immutable once built and handed out by value.
type ToolContract struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// ToolResult represents the outcome of a tool call returned to the client.
// IsError marks a soft failure (for example invalid parameters) that is
// reported as a result rather than a protocol error.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock represents a piece of content in the result.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// NewTextResult builds a single text-content result.
func NewTextResult(text string, isError bool) *ToolResult {
	return &ToolResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: isError,
	}
}
