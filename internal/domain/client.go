package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Endpoint identifies one upstream resource call. Path is relative to the
// `_apis/` root and Project, when set, scopes the call to a project.
type Endpoint struct {
	Method  string
	Project string
	Path    string
}

// RequestParams carries the optional query, body and content type of a call.
type RequestParams struct {
	Query       url.Values
	Body        interface{}
	ContentType string
}

// RawResult is the parsed outcome of one successful upstream call.
// For list-shaped responses Items holds the normalized elements whether the
// upstream returned `{count, value[]}` or a raw array.
type RawResult struct {
	StatusCode        int
	Body              json.RawMessage
	Items             []json.RawMessage
	IsList            bool
	ContinuationToken string
}

// Decode unmarshals the full response body into v.
func (r *RawResult) Decode(v interface{}) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// DecodeItems unmarshals each list element into a fresh T.
func DecodeItems[T any](r *RawResult) ([]T, error) {
	if !r.IsList {
		return nil, fmt.Errorf("response is not a list")
	}
	out := make([]T, 0, len(r.Items))
	for i, raw := range r.Items {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to decode list item %d: %w", i, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// APIClient performs authenticated calls against the Azure DevOps REST API.
type APIClient interface {
	// BaseURL returns the organization root URL.
	BaseURL() string

	// Call issues one logical request, retrying transient failures.
	Call(ctx context.Context, endpoint Endpoint, params RequestParams) (*RawResult, error)
}
