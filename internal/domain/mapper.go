package domain

// ResponseMapper converts shaped results and failures into the protocol
// representation.
type ResponseMapper interface {
	// MapToToolResult serializes a shaped result into a single text block.
	MapToToolResult(result interface{}) (*ToolResult, error)

	// MapError converts an error to a JSON-RPC error object.
	MapError(err error) *Error
}
