package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultResponseMapper is the default implementation of ResponseMapper.
type DefaultResponseMapper struct{}

// NewResponseMapper creates a new instance of DefaultResponseMapper.
func NewResponseMapper() ResponseMapper {
	return &DefaultResponseMapper{}
}

// MapToToolResult converts a shaped result to MCP format. The output is
// deterministic for equal input: struct fields keep declaration order and
// map keys are sorted by encoding/json.
func (m *DefaultResponseMapper) MapToToolResult(result interface{}) (*ToolResult, error) {
	if result == nil {
		return NewTextResult("{}", false), nil
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return NewTextResult(string(jsonBytes), false), nil
}

// MapError converts an error to a JSON-RPC error object.
func (m *DefaultResponseMapper) MapError(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.ToRPCError()
	}

	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return &Error{
			Code:    CodeForKind(KindForStatus(httpErr.StatusCode)),
			Message: httpErr.Error(),
			Data: map[string]interface{}{
				"statusCode": httpErr.StatusCode,
			},
		}
	}

	return &Error{
		Code:    InternalError,
		Message: err.Error(),
	}
}
