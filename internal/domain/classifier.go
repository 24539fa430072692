package domain

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
)

// kindSuffix is appended to the user message of each kind.
var kindSuffix = map[ErrorKind]string{
	KindAuthentication:     "Please check that the access token is valid and has not expired.",
	KindAuthorization:      "Please check that the access token has permission for this resource.",
	KindNotFound:           "Please check that the requested resource exists.",
	KindValidation:         "Please check the request parameters.",
	KindRateLimit:          "The request rate limit was exceeded. Please wait before retrying.",
	KindServiceUnavailable: "The service may be temporarily unavailable. Please try again later.",
}

// ErrorClassifier turns raw failures into ClassifiedErrors and logs each
// one exactly once at the classification site.
type ErrorClassifier struct {
	logger   Logger
	redactor *Redactor
}

// NewErrorClassifier creates a classifier. A nil logger discards output and
// a nil redactor masks only authorization header values.
func NewErrorClassifier(logger Logger, redactor *Redactor) *ErrorClassifier {
	if logger == nil {
		logger = NopLogger()
	}
	if redactor == nil {
		redactor = NewRedactor()
	}
	return &ErrorClassifier{logger: logger, redactor: redactor}
}

// Classify never fails. An error that is already classified is returned
// unchanged and not logged again.
func (c *ErrorClassifier) Classify(err error, source, operation string) *ClassifiedError {
	if err == nil {
		err = errors.New("unknown failure")
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	kind, status := classifyKind(err)
	message := c.redactor.Redact(extractMessage(err))

	var b strings.Builder
	b.WriteString(operation)
	b.WriteString(" on ")
	b.WriteString(source)
	b.WriteString(" failed: ")
	if ctx := resourceContext(err); ctx != "" {
		b.WriteString(ctx)
		b.WriteString(": ")
	}
	b.WriteString(strings.TrimRight(message, ". "))
	b.WriteString(".")
	if suffix := kindSuffix[kind]; suffix != "" {
		b.WriteString(" ")
		b.WriteString(suffix)
	}
	var hinter Hinter
	if errors.As(err, &hinter) {
		if hint := strings.TrimSpace(hinter.TroubleshootingHint()); hint != "" {
			b.WriteString(" Hint: ")
			b.WriteString(c.redactor.Redact(hint))
		}
	}

	result := &ClassifiedError{
		Kind:           kind,
		Source:         source,
		Operation:      operation,
		UpstreamStatus: status,
		RawMessage:     c.redactor.Redact(err.Error()),
		UserMessage:    b.String(),
		Cause:          err,
	}

	fields := map[string]interface{}{
		"kind":      string(kind),
		"source":    source,
		"operation": operation,
		"raw":       result.RawMessage,
	}
	if status != 0 {
		fields["upstream_status"] = status
	}
	c.logger.Error("operation failed", nil, fields)

	return result
}

func classifyKind(err error) (ErrorKind, int) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return KindValidation, 0
	}
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return KindForStatus(httpErr.StatusCode), httpErr.StatusCode
	}
	var httpErrPtr *HTTPError
	if errors.As(err, &httpErrPtr) && httpErrPtr != nil {
		return KindForStatus(httpErrPtr.StatusCode), httpErrPtr.StatusCode
	}
	if errors.Is(err, context.Canceled) {
		return KindUnknown, 0
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindServiceUnavailable, 0
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindServiceUnavailable, 0
	}
	return KindUnknown, 0
}

// extractMessage picks the most specific human message available: the
// explicit HTTPError message, then the upstream body message, then the
// error text.
func extractMessage(err error) string {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Message != "" {
			return httpErr.Message
		}
		if msg := upstreamBodyMessage(httpErr.Body); msg != "" {
			return msg
		}
		return httpErr.Error()
	}

	// Resource context is rendered separately, so report the innermost text.
	var ctxErr *ContextError
	if errors.As(err, &ctxErr) {
		inner := ctxErr.Err
		for errors.As(inner, &ctxErr) {
			inner = ctxErr.Err
		}
		return inner.Error()
	}
	return err.Error()
}

// upstreamBodyMessage reads the message from an Azure DevOps error payload.
// Supported shapes: {"message"}, {"error":{"message"}}, {"errorMessage"}.
func upstreamBodyMessage(body string) string {
	body = strings.TrimSpace(body)
	if body == "" || body[0] != '{' {
		return ""
	}
	var payload struct {
		Message      string `json:"message"`
		ErrorMessage string `json:"errorMessage"`
		Error        *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	switch {
	case payload.Message != "":
		return payload.Message
	case payload.Error != nil && payload.Error.Message != "":
		return payload.Error.Message
	default:
		return payload.ErrorMessage
	}
}

// resourceContext joins every ContextError label in the chain, outermost first.
func resourceContext(err error) string {
	var parts []string
	for err != nil {
		if ctxErr, ok := err.(*ContextError); ok {
			parts = append(parts, ctxErr.Context)
		}
		err = errors.Unwrap(err)
	}
	return strings.Join(parts, ": ")
}
