package application

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var testFields = []FieldSpec{
	{Name: "projectId", Type: TypeString, Required: true},
	{Name: "id", Type: TypeInteger, Min: bound(1)},
	{Name: "ratio", Type: TypeNumber, Min: bound(0), Max: bound(1)},
	{Name: "expand", Type: TypeString, Enum: []string{"None", "All"}},
	{Name: "verbose", Type: TypeBoolean, Default: false},
}

// TestValidateParams tests each violation code.
func TestValidateParams(t *testing.T) {
	tests := []struct {
		name     string
		raw      interface{}
		wantPath string
		wantCode string
	}{
		{"missing required", map[string]interface{}{}, "getParams.projectId", CodeRequired},
		{"null required", map[string]interface{}{"projectId": nil}, "getParams.projectId", CodeRequired},
		{"wrong type", map[string]interface{}{"projectId": 42.0}, "getParams.projectId", CodeInvalidType},
		{"fractional integer", map[string]interface{}{"projectId": "P", "id": 1.5}, "getParams.id", CodeInvalidType},
		{"integer below min", map[string]interface{}{"projectId": "P", "id": 0.0}, "getParams.id", CodeOutOfRange},
		{"integer overflowing int", map[string]interface{}{"projectId": "P", "id": 1e19}, "getParams.id", CodeOutOfRange},
		{"integer beyond 32 bits", map[string]interface{}{"projectId": "P", "id": 2147483648.0}, "getParams.id", CodeOutOfRange},
		{"number above max", map[string]interface{}{"projectId": "P", "ratio": 1.5}, "getParams.ratio", CodeOutOfRange},
		{"enum", map[string]interface{}{"projectId": "P", "expand": "Everything"}, "getParams.expand", CodeInvalidEnum},
		{"boolean", map[string]interface{}{"projectId": "P", "verbose": "yes"}, "getParams.verbose", CodeInvalidType},
		{"unknown field", map[string]interface{}{"projectId": "P", "bogus": 1}, "getParams.bogus", CodeUnknownField},
		{"not an object", "P", "getParams", CodeInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, violations := validateParams("getParams", tt.raw, testFields)
			if len(violations) != 1 {
				t.Fatalf("got %d violations, want 1: %+v", len(violations), violations)
			}
			if violations[0].Path != tt.wantPath || violations[0].Code != tt.wantCode {
				t.Errorf("violation = %+v, want path %s code %s", violations[0], tt.wantPath, tt.wantCode)
			}
		})
	}
}

// TestValidateParams_Typed tests conversion and defaults of valid input.
func TestValidateParams_Typed(t *testing.T) {
	params, violations := validateParams("getParams", map[string]interface{}{
		"projectId": "P",
		"id":        12.0,
		"ratio":     0.5,
		"expand":    "All",
	}, testFields)
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %+v", violations)
	}

	if got, ok := params["id"].(int); !ok || got != 12 {
		t.Errorf("id = %#v, want int 12", params["id"])
	}
	if params.String("expand") != "All" {
		t.Errorf("expand = %q", params.String("expand"))
	}
	if !params.Has("verbose") || params.Bool("verbose") {
		t.Errorf("verbose default not applied: %#v", params["verbose"])
	}
	if params.StringPtr("missing") != nil {
		t.Error("StringPtr of an absent field should be nil")
	}
}

// TestValidateParams_CollectsAll tests that every violation is reported.
func TestValidateParams_CollectsAll(t *testing.T) {
	_, violations := validateParams("p", map[string]interface{}{
		"id":    "x",
		"zeta":  1,
		"alpha": 2,
	}, testFields)

	want := []string{"p.projectId", "p.id", "p.alpha", "p.zeta"}
	if len(violations) != len(want) {
		t.Fatalf("got %+v", violations)
	}
	for i, path := range want {
		if violations[i].Path != path {
			t.Errorf("violation %d path = %s, want %s", i, violations[i].Path, path)
		}
	}
}

// TestValidateParamsProperties verifies that unknown fields are always rejected.
func TestValidateParamsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("unknown fields are always reported", prop.ForAll(
		func(name string) bool {
			for _, f := range testFields {
				if f.Name == name {
					return true
				}
			}
			_, violations := validateParams("p", map[string]interface{}{"projectId": "P", name: "v"}, testFields)
			return len(violations) == 1 && violations[0].Code == CodeUnknownField
		},
		gen.Identifier(),
	))

	properties.Property("integers below the minimum are out of range", prop.ForAll(
		func(id int) bool {
			_, violations := validateParams("p", map[string]interface{}{"projectId": "P", "id": float64(id)}, testFields)
			return len(violations) == 1 && violations[0].Code == CodeOutOfRange
		},
		gen.IntRange(-1000, 0),
	))

	properties.TestingRun(t)
}
