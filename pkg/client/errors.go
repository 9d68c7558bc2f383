package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Kind identifies the class of an APIError. The code string and exit code
// of each kind are part of the CLI's scripting contract and must not change.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthentication
	KindNotFound
	KindValidation
	KindRateLimit
	KindPermissionDenied
	KindServer
	KindNetwork
	KindConflict
)

var kindCodes = map[Kind]string{
	KindUnknown:          "error",
	KindAuthentication:   "authentication_error",
	KindNotFound:         "not_found",
	KindValidation:       "validation_error",
	KindRateLimit:        "rate_limited",
	KindPermissionDenied: "permission_denied",
	KindServer:           "server_error",
	KindNetwork:          "network_error",
	KindConflict:         "conflict",
}

var kindExitCodes = map[Kind]int{
	KindUnknown:          1,
	KindAuthentication:   2,
	KindNotFound:         3,
	KindValidation:       4,
	KindRateLimit:        5,
	KindPermissionDenied: 6,
	KindServer:           7,
	KindNetwork:          8,
	KindConflict:         9,
}

// String returns the stable error code for the kind.
func (k Kind) String() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return kindCodes[KindUnknown]
}

// ExitCode returns the process exit code for the kind.
func (k Kind) ExitCode() int {
	if code, ok := kindExitCodes[k]; ok {
		return code
	}
	return kindExitCodes[KindUnknown]
}

// Retryable reports whether the pipeline retries errors of this kind.
func (k Kind) Retryable() bool {
	switch k {
	case KindRateLimit, KindServer, KindNetwork:
		return true
	default:
		return false
	}
}

// APIError is the typed error returned for every failed API call.
type APIError struct {
	Kind    Kind
	Message string

	// Status is the HTTP status code, zero for transport failures.
	Status int

	// UpstreamCode is the "code" field of the API error body.
	UpstreamCode string

	// RetryAfter and Attempts are only set for KindRateLimit.
	RetryAfter time.Duration
	Attempts   int

	Err error
}

// NewError creates an APIError of the given kind.
func NewError(kind Kind, format string, args ...any) *APIError {
	return &APIError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Code returns the stable error code string.
func (e *APIError) Code() string {
	return e.Kind.String()
}

// ExitCode returns the process exit code for the error.
func (e *APIError) ExitCode() int {
	return e.Kind.ExitCode()
}

// Retryable reports whether the request that produced e may be retried.
func (e *APIError) Retryable() bool {
	return e.Kind.Retryable()
}

// Details returns the structured details reported alongside the message.
func (e *APIError) Details() map[string]any {
	switch e.Kind {
	case KindRateLimit:
		return map[string]any{
			"retry_after": int(e.RetryAfter / time.Second),
			"attempts":    e.Attempts,
		}
	case KindServer, KindUnknown:
		if e.Status == 0 {
			return nil
		}
		return map[string]any{
			"status_code": e.Status,
			"notion_code": e.UpstreamCode,
		}
	case KindNetwork, KindAuthentication:
		if e.UpstreamCode == "" {
			return nil
		}
		return map[string]any{"notion_code": e.UpstreamCode}
	default:
		return map[string]any{"notion_code": e.UpstreamCode}
	}
}

// Classify maps an HTTP error status and its decoded body to an APIError.
// It never fails; unmapped statuses below 500 become KindUnknown carrying
// the raw status.
func Classify(status int, body map[string]any) *APIError {
	message, _ := body["message"].(string)
	if message == "" {
		message = "Unknown error"
		if status == http.StatusTooManyRequests {
			message = "Rate limit exceeded"
		}
	}
	code, _ := body["code"].(string)
	if code == "" {
		code = "unknown"
	}

	e := &APIError{
		Kind:         KindUnknown,
		Message:      message,
		Status:       status,
		UpstreamCode: code,
	}

	switch {
	case status == http.StatusBadRequest:
		e.Kind = KindValidation
	case status == http.StatusUnauthorized:
		e.Kind = KindAuthentication
	case status == http.StatusForbidden:
		e.Kind = KindPermissionDenied
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusConflict:
		e.Kind = KindConflict
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimit
	case status >= 500:
		e.Kind = KindServer
	}

	return e
}

// ClassifyTransport maps a failure to reach the API (timeouts, refused
// connections, other transport errors) to a KindNetwork APIError.
func ClassifyTransport(err error) *APIError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return &APIError{Kind: KindNetwork, Message: fmt.Sprintf("Request timed out: %v", err), Err: err}
	case errors.Is(err, syscall.ECONNREFUSED), isDialError(err):
		return &APIError{Kind: KindNetwork, Message: fmt.Sprintf("Connection failed: %v", err), Err: err}
	default:
		return &APIError{Kind: KindNetwork, Message: fmt.Sprintf("HTTP error: %v", err), Err: err}
	}
}

func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// parseErrorBody decodes an error response body, falling back to the raw
// text under "message" when the body is not a JSON object.
func parseErrorBody(raw []byte) map[string]any {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return map[string]any{"message": string(raw)}
	}
	return body
}

// AsAPIError returns the APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ExitCodeOf returns the exit code for err: the APIError's code when err
// carries one, 0 for nil and 1 otherwise.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.ExitCode()
	}
	return 1
}
