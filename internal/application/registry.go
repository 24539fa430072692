package application

import (
	"context"
	"fmt"
	"strings"

	"azure-devops-mcp-server/internal/domain"
)

// Registry holds every entity tool, exposes their contracts for discovery
// and routes calls by tool name. Tools are registered once at startup and
// the registry is read-only afterwards.
type Registry struct {
	tools  map[string]domain.EntityTool
	order  []string
	logger domain.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger domain.Logger) *Registry {
	if logger == nil {
		logger = domain.NopLogger()
	}
	return &Registry{
		tools:  make(map[string]domain.EntityTool),
		logger: logger,
	}
}

// Register adds a tool. Registering a second tool under an existing name
// is an error.
func (r *Registry) Register(tool domain.EntityTool) error {
	name := tool.Contract().Name
	if name == "" {
		return fmt.Errorf("tool name is required")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s is already registered", name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Contracts returns the contracts of all tools in registration order.
// This is used for MCP tool discovery (tools/list method).
func (r *Registry) Contracts() []domain.ToolContract {
	contracts := make([]domain.ToolContract, 0, len(r.order))
	for _, name := range r.order {
		contracts = append(contracts, r.tools[name].Contract())
	}
	return contracts
}

// Route returns the tool registered under name.
func (r *Registry) Route(name string) (domain.EntityTool, bool) {
	tool, exists := r.tools[name]
	return tool, exists
}

// Invoke routes a call to its tool and returns the tool's result or error
// unchanged. An unknown name is a NotFound error.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) (*domain.ToolResult, error) {
	tool, exists := r.Route(name)
	if !exists {
		r.logger.Warn("tool not found", map[string]interface{}{"tool": name})
		return nil, &domain.ClassifiedError{
			Kind:        domain.KindNotFound,
			Source:      "registry",
			Operation:   "invoke",
			RawMessage:  "tool not found: " + name,
			UserMessage: fmt.Sprintf("tool not found: %q. Available tools: %s", name, strings.Join(r.order, ", ")),
		}
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return tool.Execute(ctx, args)
}
