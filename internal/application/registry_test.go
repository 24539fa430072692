package application

import (
	"context"
	"errors"
	"testing"

	"azure-devops-mcp-server/internal/domain"
)

func newNamedTool(t *testing.T, name string) *EntityTool {
	t.Helper()
	tool, err := NewEntityTool(ToolConfig{
		Name: name,
		Operations: []Operation{{
			Name: "ping",
			Handler: func(ctx context.Context, params Params) (interface{}, error) {
				return map[string]string{"tool": name}, nil
			},
		}},
	}, nil, nil)
	if err != nil {
		t.Fatalf("NewEntityTool(%s) error = %v", name, err)
	}
	return tool
}

// TestRegistry_ContractsInRegistrationOrder tests discovery order.
func TestRegistry_ContractsInRegistrationOrder(t *testing.T) {
	registry := NewRegistry(nil)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := registry.Register(newNamedTool(t, name)); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}

	contracts := registry.Contracts()
	want := []string{"zeta", "alpha", "mid"}
	if len(contracts) != len(want) {
		t.Fatalf("got %d contracts, want %d", len(contracts), len(want))
	}
	for i, name := range want {
		if contracts[i].Name != name {
			t.Errorf("contract %d = %s, want %s", i, contracts[i].Name, name)
		}
	}
}

// TestRegistry_DuplicateRegistration tests that a second tool with the same
// name is rejected and the first one stays routable.
func TestRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewRegistry(nil)
	first := newNamedTool(t, "projects")
	if err := registry.Register(first); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := registry.Register(newNamedTool(t, "projects")); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}

	routed, ok := registry.Route("projects")
	if !ok || routed != first {
		t.Error("the first registration should remain routable")
	}
	if len(registry.Contracts()) != 1 {
		t.Errorf("got %d contracts, want 1", len(registry.Contracts()))
	}
}

// TestRegistry_Invoke tests routing by name.
func TestRegistry_Invoke(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(newNamedTool(t, "alpha"))
	registry.Register(newNamedTool(t, "beta"))

	result, err := registry.Invoke(context.Background(), "beta", map[string]interface{}{"operation": "ping"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if result.Content[0].Text != "{\n  \"tool\": \"beta\"\n}" {
		t.Errorf("unexpected result: %s", result.Content[0].Text)
	}
}

// TestRegistry_InvokeUnknownTool tests the NotFound error of an unknown name.
func TestRegistry_InvokeUnknownTool(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(newNamedTool(t, "alpha"))

	_, err := registry.Invoke(context.Background(), "gamma", nil)
	if err == nil {
		t.Fatal("expected an error for an unknown tool")
	}

	var classified *domain.ClassifiedError
	if !errors.As(err, &classified) {
		t.Fatalf("error type = %T, want *domain.ClassifiedError", err)
	}
	if classified.Kind != domain.KindNotFound {
		t.Errorf("kind = %s, want NotFound", classified.Kind)
	}
	if classified.Code() != domain.NotFoundError {
		t.Errorf("code = %d, want %d", classified.Code(), domain.NotFoundError)
	}
	if want := `tool not found: "gamma". Available tools: alpha`; classified.UserMessage != want {
		t.Errorf("message = %q, want %q", classified.UserMessage, want)
	}
}
