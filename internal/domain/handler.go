package domain

import "context"

// EntityTool is a self-describing callable unit that groups the operations
// of one resource type.
type EntityTool interface {
	// Name returns the unique tool name used for routing.
	Name() string

	// Contract returns the discovery description of the tool.
	Contract() ToolContract

	// Execute runs one invocation. Validation failures come back as a
	// result with IsError set; every other failure is returned as an error.
	Execute(ctx context.Context, args map[string]interface{}) (*ToolResult, error)
}
