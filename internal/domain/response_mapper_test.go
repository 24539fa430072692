package domain

import (
	"errors"
	"testing"
)

// TestMapToToolResult tests that results become one indented text block.
func TestMapToToolResult(t *testing.T) {
	mapper := NewResponseMapper()

	result, err := mapper.MapToToolResult(map[string]interface{}{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("MapToToolResult() error = %v", err)
	}
	if len(result.Content) != 1 {
		t.Fatalf("len(Content) = %d, want 1", len(result.Content))
	}
	if result.Content[0].Type != "text" {
		t.Errorf("Content[0].Type = %s, want text", result.Content[0].Type)
	}
	want := "{\n  \"a\": 1,\n  \"b\": 2\n}"
	if result.Content[0].Text != want {
		t.Errorf("Content[0].Text = %q, want %q", result.Content[0].Text, want)
	}
	if result.IsError {
		t.Error("IsError = true, want false")
	}
}

// TestMapToToolResult_Nil tests the empty object fallback.
func TestMapToToolResult_Nil(t *testing.T) {
	result, err := NewResponseMapper().MapToToolResult(nil)
	if err != nil {
		t.Fatalf("MapToToolResult(nil) error = %v", err)
	}
	if result.Content[0].Text != "{}" {
		t.Errorf("Text = %q, want {}", result.Content[0].Text)
	}
}

// TestMapToToolResult_Unmarshalable tests that marshal failures are reported.
func TestMapToToolResult_Unmarshalable(t *testing.T) {
	if _, err := NewResponseMapper().MapToToolResult(map[string]interface{}{"ch": make(chan int)}); err == nil {
		t.Error("MapToToolResult() error = nil, want marshal error")
	}
}

// TestMapError tests conversion of each error family.
func TestMapError(t *testing.T) {
	mapper := NewResponseMapper()

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"classified not found", &ClassifiedError{Kind: KindNotFound, UserMessage: "gone"}, NotFoundError},
		{"classified validation", &ClassifiedError{Kind: KindValidation}, InvalidParams},
		{"rpc error passthrough", &Error{Code: InvalidParams, Message: "nope"}, InvalidParams},
		{"http 401", NewHTTPError(401, "", ""), AuthenticationError},
		{"http 429", NewHTTPError(429, "", ""), RateLimitError},
		{"plain", errors.New("boom"), InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapper.MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError().Code = %d, want %d", got.Code, tt.wantCode)
			}
		})
	}

	if mapper.MapError(nil) != nil {
		t.Error("MapError(nil) should be nil")
	}
}

// TestHTTPError_Error tests the HTTPError text forms.
func TestHTTPError_Error(t *testing.T) {
	if got := NewHTTPError(404, "", "").Error(); got != "HTTP 404: Not Found" {
		t.Errorf("Error() = %q", got)
	}
	if got := NewHTTPError(500, "boom", "body").Error(); got != "HTTP 500: boom - body" {
		t.Errorf("Error() = %q", got)
	}
}
