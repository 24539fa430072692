package domain

import "fmt"

// Error represents a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC error codes.
const (
	InvalidParams = -32602
	InternalError = -32603
)

// Custom error codes (server-defined, range -32000 to -32099).
const (
	AuthenticationError = -32002
	APIError            = -32003
	NetworkError        = -32004
	RateLimitError      = -32005
	NotFoundError       = -32006
)

// CodeForKind returns the JSON-RPC error code used for an ErrorKind.
func CodeForKind(kind ErrorKind) int {
	switch kind {
	case KindAuthentication, KindAuthorization:
		return AuthenticationError
	case KindNotFound:
		return NotFoundError
	case KindValidation:
		return InvalidParams
	case KindRateLimit:
		return RateLimitError
	case KindServiceUnavailable:
		return NetworkError
	default:
		return APIError
	}
}
