package domain

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestErrorTaxonomyProperties verifies properties of status classification.
func TestErrorTaxonomyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// Property: every server error is ServiceUnavailable
	properties.Property("5xx maps to ServiceUnavailable", prop.ForAll(
		func(status int) bool {
			return KindForStatus(status) == KindServiceUnavailable
		},
		gen.IntRange(500, 599),
	))

	// Property: JSON-RPC codes of every kind are negative
	properties.Property("kind codes are negative", prop.ForAll(
		func(status int) bool {
			return CodeForKind(KindForStatus(status)) < 0
		},
		gen.IntRange(100, 599),
	))

	// Property: classification never panics and always names the operation
	properties.Property("classified messages name the operation", prop.ForAll(
		func(status int, operation string) bool {
			c := NewErrorClassifier(nil, nil)
			got := c.Classify(NewHTTPError(status, "", ""), "tool", operation)
			return got != nil && strings.Contains(got.UserMessage, operation)
		},
		gen.IntRange(400, 599),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

// TestRedactionProperties verifies that the token never survives redaction.
func TestRedactionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("token is masked in any surrounding text", prop.ForAll(
		func(prefix, suffix string) bool {
			token := "pat0123456789abcdefXYZ"
			r := NewRedactor(token)
			return !strings.Contains(r.Redact(prefix+token+suffix), token)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
