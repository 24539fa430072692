package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"azure-devops-mcp-server/internal/domain"
)

// OperationHandler runs one operation with validated parameters and returns
// the shaped result.
type OperationHandler func(ctx context.Context, params Params) (interface{}, error)

// Operation declares one named action of a tool.
type Operation struct {
	Name        string
	Description string
	Fields      []FieldSpec
	Handler     OperationHandler
}

// ToolConfig is the data record a resource tool is built from.
type ToolConfig struct {
	Name        string
	Description string
	Examples    []map[string]interface{}
	Operations  []Operation
}

// ToolOption configures an EntityTool.
type ToolOption func(*EntityTool)

// WithObserver reports every invocation to observer.
func WithObserver(observer domain.Observer) ToolOption {
	return func(t *EntityTool) {
		if observer != nil {
			t.observer = observer
		}
	}
}

// EntityTool groups the operations of one resource behind a single
// validate, dispatch, format and classify path. It implements
// domain.EntityTool. The operation table is read-only after construction.
type EntityTool struct {
	name       string
	operations map[string]Operation
	order      []string
	contract   domain.ToolContract

	classifier *domain.ErrorClassifier
	mapper     domain.ResponseMapper
	logger     domain.Logger
	observer   domain.Observer
}

// NewEntityTool builds a tool from its configuration record. A tool needs a
// name and at least one operation; operation names must be unique.
func NewEntityTool(cfg ToolConfig, classifier *domain.ErrorClassifier, logger domain.Logger, opts ...ToolOption) (*EntityTool, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}
	if len(cfg.Operations) == 0 {
		return nil, fmt.Errorf("tool %s: at least one operation is required", cfg.Name)
	}
	if logger == nil {
		logger = domain.NopLogger()
	}
	if classifier == nil {
		classifier = domain.NewErrorClassifier(logger, nil)
	}

	t := &EntityTool{
		name:       cfg.Name,
		operations: make(map[string]Operation, len(cfg.Operations)),
		classifier: classifier,
		mapper:     domain.NewResponseMapper(),
		logger:     logger,
		observer:   domain.NoopObserver(),
	}
	for _, opt := range opts {
		opt(t)
	}

	for _, op := range cfg.Operations {
		if op.Name == "" {
			return nil, fmt.Errorf("tool %s: operation name is required", cfg.Name)
		}
		if op.Handler == nil {
			return nil, fmt.Errorf("tool %s: operation %s has no handler", cfg.Name, op.Name)
		}
		if _, exists := t.operations[op.Name]; exists {
			return nil, fmt.Errorf("tool %s: duplicate operation %s", cfg.Name, op.Name)
		}
		t.operations[op.Name] = op
		t.order = append(t.order, op.Name)
	}

	t.contract = t.buildContract(cfg)
	return t, nil
}

// Name returns the tool name.
func (t *EntityTool) Name() string {
	return t.name
}

// Contract returns the discovery description built at construction.
func (t *EntityTool) Contract() domain.ToolContract {
	return t.contract
}

// Operations returns the registered operation names in registration order.
func (t *EntityTool) Operations() []string {
	return append([]string(nil), t.order...)
}

// Execute validates args, dispatches to the selected operation and formats
// its result. Invalid parameters produce a result with IsError set; an
// unknown operation or a handler failure is returned as a ClassifiedError.
func (t *EntityTool) Execute(ctx context.Context, args map[string]interface{}) (*domain.ToolResult, error) {
	start := time.Now()

	opName, ok := args["operation"].(string)
	op, registered := t.operations[opName]
	if !ok || !registered {
		err := t.unknownOperation(args["operation"])
		t.observe(opName, start, false, false, err.Kind)
		return nil, err
	}

	paramsKey := opName + "Params"
	params, violations := validateParams(paramsKey, args[paramsKey], op.Fields)
	if len(violations) > 0 {
		t.logger.Debug("rejected invalid parameters", map[string]interface{}{
			"tool":       t.name,
			"operation":  opName,
			"violations": len(violations),
		})
		t.observe(opName, start, false, true, domain.KindValidation)
		return t.violationResult(opName, violations), nil
	}

	result, err := op.Handler(ctx, params)
	if err != nil {
		classified := t.classifier.Classify(err, t.name, "execute_"+opName)
		t.observe(opName, start, false, false, classified.Kind)
		return nil, classified
	}

	toolResult, err := t.mapper.MapToToolResult(result)
	if err != nil {
		classified := t.classifier.Classify(err, t.name, "execute_"+opName)
		t.observe(opName, start, false, false, classified.Kind)
		return nil, classified
	}

	t.observe(opName, start, true, false, "")
	return toolResult, nil
}

func (t *EntityTool) observe(operation string, start time.Time, success, soft bool, kind domain.ErrorKind) {
	t.observer.ObserveInvoke(domain.InvokeObservation{
		Tool:      t.name,
		Operation: operation,
		Duration:  time.Since(start),
		Success:   success,
		SoftError: soft,
		ErrorKind: kind,
	})
}

func (t *EntityTool) unknownOperation(value interface{}) *domain.ClassifiedError {
	available := strings.Join(t.order, ", ")

	var message string
	switch v := value.(type) {
	case nil:
		message = fmt.Sprintf("operation is required. Available operations: %s", available)
	case string:
		message = fmt.Sprintf("unknown operation %q for tool %s. Available operations: %s", v, t.name, available)
	default:
		message = fmt.Sprintf("operation must be a string. Available operations: %s", available)
	}

	err := &domain.ClassifiedError{
		Kind:        domain.KindValidation,
		Source:      t.name,
		Operation:   "execute",
		RawMessage:  fmt.Sprintf("operation=%v", value),
		UserMessage: message,
	}
	t.logger.Warn("unknown operation", map[string]interface{}{
		"tool":      t.name,
		"operation": err.RawMessage,
	})
	return err
}

func (t *EntityTool) violationResult(operation string, violations []Violation) *domain.ToolResult {
	body := struct {
		Error      string      `json:"error"`
		Operation  string      `json:"operation"`
		Violations []Violation `json:"violations"`
	}{
		Error:      fmt.Sprintf("invalid parameters for %s.%s", t.name, operation),
		Operation:  operation,
		Violations: violations,
	}

	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return domain.NewTextResult(body.Error, true)
	}
	return domain.NewTextResult(string(data), true)
}

// buildContract derives the input schema and description from the
// operation table.
func (t *EntityTool) buildContract(cfg ToolConfig) domain.ToolContract {
	enum := make([]any, len(t.order))
	for i, name := range t.order {
		enum[i] = name
	}

	properties := map[string]*jsonschema.Schema{
		"operation": {
			Type:        "string",
			Description: "The operation to perform",
			Enum:        enum,
		},
	}
	for _, name := range t.order {
		properties[name+"Params"] = paramsSchema(t.operations[name])
	}

	return domain.ToolContract{
		Name:        t.name,
		Description: t.describe(cfg),
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: properties,
			Required:   []string{"operation"},
		},
	}
}

func (t *EntityTool) describe(cfg ToolConfig) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(cfg.Description))
	b.WriteString("\n\nOperations:")
	for _, name := range t.order {
		op := t.operations[name]
		fmt.Fprintf(&b, "\n- %s: %s (parameters in %sParams)", name, op.Description, name)
	}
	if len(cfg.Examples) > 0 {
		b.WriteString("\n\nExamples:")
		for _, example := range cfg.Examples {
			data, err := json.Marshal(example)
			if err != nil {
				continue
			}
			b.WriteString("\n")
			b.Write(data)
		}
	}
	return b.String()
}

func paramsSchema(op Operation) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:        "object",
		Description: fmt.Sprintf("Parameters of the %s operation", op.Name),
		Properties:  make(map[string]*jsonschema.Schema, len(op.Fields)),
		// additionalProperties: false
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
	for _, field := range op.Fields {
		prop := &jsonschema.Schema{
			Type:        string(field.Type),
			Description: field.Description,
			Minimum:     field.Min,
			Maximum:     field.Max,
		}
		for _, v := range field.Enum {
			prop.Enum = append(prop.Enum, v)
		}
		if field.Default != nil {
			if data, err := json.Marshal(field.Default); err == nil {
				prop.Default = data
			}
		}
		schema.Properties[field.Name] = prop
		if field.Required {
			schema.Required = append(schema.Required, field.Name)
		}
	}
	return schema
}
