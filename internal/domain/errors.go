package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the machine-checkable category of a classified failure.
type ErrorKind string

const (
	KindAuthentication     ErrorKind = "Authentication"
	KindAuthorization      ErrorKind = "Authorization"
	KindNotFound           ErrorKind = "NotFound"
	KindValidation         ErrorKind = "Validation"
	KindRateLimit          ErrorKind = "RateLimit"
	KindServiceUnavailable ErrorKind = "ServiceUnavailable"
	KindUnknown            ErrorKind = "Unknown"
)

// KindForStatus maps an upstream HTTP status code to an ErrorKind.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status == http.StatusForbidden:
		return KindAuthorization
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest:
		return KindValidation
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status >= 500:
		return KindServiceUnavailable
	default:
		return KindUnknown
	}
}

// ClassifiedError is a failure normalized into the error taxonomy.
// It is terminal: once constructed it is propagated, never retried.
type ClassifiedError struct {
	Kind           ErrorKind `json:"kind"`
	Source         string    `json:"source"`
	Operation      string    `json:"operation"`
	UpstreamStatus int       `json:"upstreamStatus,omitempty"`
	RawMessage     string    `json:"-"`
	UserMessage    string    `json:"message"`
	Cause          error     `json:"-"`
}

// Error implements the error interface. The kind prefix keeps the category
// visible once the error crosses the protocol boundary as plain text.
func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.UserMessage)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// Code returns the JSON-RPC error code for the error's kind.
func (e *ClassifiedError) Code() int {
	return CodeForKind(e.Kind)
}

// ToRPCError converts the classified error into a JSON-RPC error object.
func (e *ClassifiedError) ToRPCError() *Error {
	data := map[string]interface{}{
		"kind":      string(e.Kind),
		"source":    e.Source,
		"operation": e.Operation,
	}
	if e.UpstreamStatus != 0 {
		data["upstreamStatus"] = e.UpstreamStatus
	}
	return &Error{
		Code:    e.Code(),
		Message: e.Error(),
		Data:    data,
	}
}

// IsKind reports whether err is a ClassifiedError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var classified *ClassifiedError
	return errors.As(err, &classified) && classified.Kind == kind
}

// HTTPError represents an unsuccessful upstream HTTP response.
// Message is an explicit message set by the caller, Body the raw upstream
// payload and Hint an optional troubleshooting hint.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
	Hint       string
}

// Error implements the error interface for HTTPError.
func (e HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.statusMessage(), e.Body)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.statusMessage())
}

func (e HTTPError) statusMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}

// TroubleshootingHint returns the hint attached by the transport, if any.
func (e HTTPError) TroubleshootingHint() string {
	return e.Hint
}

// NewHTTPError creates a new HTTPError with the given status code and body.
func NewHTTPError(statusCode int, message string, body string) HTTPError {
	return HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Body:       body,
	}
}

// Hinter is implemented by errors that carry a troubleshooting hint.
type Hinter interface {
	TroubleshootingHint() string
}

// ContextError attaches resource context (for example "pull request 42")
// to an underlying failure.
type ContextError struct {
	Context string
	Err     error
}

func (e *ContextError) Error() string {
	return e.Context + ": " + e.Err.Error()
}

func (e *ContextError) Unwrap() error {
	return e.Err
}

// WithContext wraps err with a formatted resource context. A nil err stays nil.
func WithContext(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ContextError{Context: fmt.Sprintf(format, args...), Err: err}
}

// ValidationError reports a request that cannot be served as given. It is
// detected locally, before any upstream call.
type ValidationError struct {
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
