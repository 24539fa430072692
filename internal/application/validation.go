package application

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
)

// FieldType is the JSON type of an operation parameter.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
)

// Violation codes.
const (
	CodeUnknownField = "unknown_field"
	CodeRequired     = "required"
	CodeInvalidType  = "invalid_type"
	CodeInvalidEnum  = "invalid_enum"
	CodeOutOfRange   = "out_of_range"
)

// FieldSpec declares one parameter of an operation.
type FieldSpec struct {
	Name        string
	Type        FieldType
	Required    bool
	Description string
	Enum        []string
	Min         *float64
	Max         *float64
	Default     interface{}
}

// Violation is one field-level validation failure.
type Violation struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func bound(v float64) *float64 { return &v }

// validateParams checks raw against fields and returns the typed parameters.
// Every violation is collected; the params are only meaningful when none is
// reported.
func validateParams(path string, raw interface{}, fields []FieldSpec) (Params, []Violation) {
	if raw == nil {
		raw = map[string]interface{}{}
	}
	object, ok := raw.(map[string]interface{})
	if !ok {
		return nil, []Violation{{
			Path:    path,
			Code:    CodeInvalidType,
			Message: fmt.Sprintf("%s must be an object", path),
		}}
	}

	var violations []Violation
	params := Params{}
	known := make(map[string]bool, len(fields))

	for _, field := range fields {
		known[field.Name] = true
		fieldPath := path + "." + field.Name

		value, present := object[field.Name]
		if !present || value == nil {
			if field.Required {
				violations = append(violations, Violation{
					Path:    fieldPath,
					Code:    CodeRequired,
					Message: fmt.Sprintf("%s is required", field.Name),
				})
			} else if field.Default != nil {
				params[field.Name] = field.Default
			}
			continue
		}

		typed, violation := checkField(fieldPath, field, value)
		if violation != nil {
			violations = append(violations, *violation)
			continue
		}
		params[field.Name] = typed
	}

	var unknown []string
	for name := range object {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	slices.Sort(unknown)
	for _, name := range unknown {
		violations = append(violations, Violation{
			Path:    path + "." + name,
			Code:    CodeUnknownField,
			Message: fmt.Sprintf("unknown field %q; allowed fields: %s", name, fieldNames(fields)),
		})
	}

	return params, violations
}

func checkField(path string, field FieldSpec, value interface{}) (interface{}, *Violation) {
	invalidType := &Violation{
		Path:    path,
		Code:    CodeInvalidType,
		Message: fmt.Sprintf("%s must be of type %s", field.Name, field.Type),
	}

	switch field.Type {
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return nil, invalidType
		}
		if len(field.Enum) > 0 && !slices.Contains(field.Enum, s) {
			return nil, &Violation{
				Path:    path,
				Code:    CodeInvalidEnum,
				Message: fmt.Sprintf("%s must be one of: %s", field.Name, strings.Join(field.Enum, ", ")),
			}
		}
		return s, nil

	case TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, invalidType
		}
		return b, nil

	case TypeInteger, TypeNumber:
		n, ok := toFloat(value)
		if !ok {
			return nil, invalidType
		}
		if field.Type == TypeInteger && n != math.Trunc(n) {
			return nil, invalidType
		}
		// Identifiers upstream are 32-bit.
		if field.Type == TypeInteger && (n > math.MaxInt32 || n < math.MinInt32) {
			return nil, &Violation{
				Path:    path,
				Code:    CodeOutOfRange,
				Message: fmt.Sprintf("%s must be between %d and %d", field.Name, math.MinInt32, math.MaxInt32),
			}
		}
		if (field.Min != nil && n < *field.Min) || (field.Max != nil && n > *field.Max) {
			return nil, &Violation{
				Path:    path,
				Code:    CodeOutOfRange,
				Message: fmt.Sprintf("%s must be %s", field.Name, describeRange(field)),
			}
		}
		if field.Type == TypeInteger {
			return int(n), nil
		}
		return n, nil
	}

	return value, nil
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func describeRange(field FieldSpec) string {
	switch {
	case field.Min != nil && field.Max != nil:
		return fmt.Sprintf("between %g and %g", *field.Min, *field.Max)
	case field.Min != nil:
		return fmt.Sprintf("at least %g", *field.Min)
	default:
		return fmt.Sprintf("at most %g", *field.Max)
	}
}

func fieldNames(fields []FieldSpec) string {
	if len(fields) == 0 {
		return "(none)"
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}
