package core

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes a failed operation so callers can branch on the
// failure class instead of parsing message strings.
type ErrorKind int

// Error kind constants cover every way a request or subscription can fail.
const (
	// ErrKindUnknown indicates an unclassified error.
	ErrKindUnknown ErrorKind = iota
	// ErrKindNotAuthenticated indicates a private operation was attempted
	// without configured credentials. Detected locally, before any network
	// traffic.
	ErrKindNotAuthenticated
	// ErrKindInvalidArgument indicates the caller supplied arguments that
	// can never form a valid request. Detected locally.
	ErrKindInvalidArgument
	// ErrKindServerRejected indicates the exchange returned a structured
	// error body with its own numeric code.
	ErrKindServerRejected
	// ErrKindMalformedResponse indicates the HTTP exchange succeeded but the
	// body could not be decoded into the expected shape.
	ErrKindMalformedResponse
	// ErrKindTransport indicates the request failed below the protocol
	// level: connection refused, timeout, or an error body that was not
	// parseable.
	ErrKindTransport
	// ErrKindSocketOpenFailed indicates a WebSocket dial or handshake
	// failed before the stream was established.
	ErrKindSocketOpenFailed
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	return [...]string{
		"UNKNOWN",
		"NOT_AUTHENTICATED",
		"INVALID_ARGUMENT",
		"SERVER_REJECTED",
		"MALFORMED_RESPONSE",
		"TRANSPORT",
		"SOCKET_OPEN_FAILED",
	}[k]
}

// ErrClientClosed is returned when attempting to use a closed client.
var ErrClientClosed = errors.New("client is closed")

// APIError is the uniform error shape for every failed operation. Server
// rejections carry the exchange's numeric code and the HTTP status; local
// failures carry code zero.
type APIError struct {
	// Kind categorizes the error for programmatic handling.
	Kind ErrorKind `json:"kind"`
	// Code is the exchange-assigned numeric error code, e.g. -1121 for an
	// invalid symbol. Zero for failures that never reached the exchange.
	Code int `json:"code"`
	// HTTPStatus is the HTTP status of the response, or zero when no
	// response was received.
	HTTPStatus int `json:"http_status"`
	// Message is the human-readable error description.
	Message string `json:"message"`

	cause error
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	switch {
	case e.Code != 0:
		return fmt.Sprintf("%s (%d/%d): %s", e.Kind, e.HTTPStatus, e.Code, e.Message)
	case e.HTTPStatus != 0:
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.HTTPStatus, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Unwrap returns the underlying cause, if any, so errors.Is can see through
// transport failures to context.Canceled and friends.
func (e *APIError) Unwrap() error {
	return e.cause
}

// NewAPIError creates an APIError with the given kind and message.
func NewAPIError(kind ErrorKind, message string) *APIError {
	return &APIError{Kind: kind, Message: message}
}

// NewServerError creates a ServerRejected APIError from a structured error
// body returned by the exchange.
func NewServerError(httpStatus, code int, message string) *APIError {
	return &APIError{
		Kind:       ErrKindServerRejected,
		Code:       code,
		HTTPStatus: httpStatus,
		Message:    message,
	}
}

// NewTransportError wraps a low-level failure (dial, timeout, unreadable
// response) into the uniform error shape.
func NewTransportError(err error) *APIError {
	return &APIError{
		Kind:    ErrKindTransport,
		Message: err.Error(),
		cause:   err,
	}
}

// NewDecodeError wraps a response-body decode failure into the uniform
// error shape.
func NewDecodeError(err error) *APIError {
	return &APIError{
		Kind:    ErrKindMalformedResponse,
		Message: "decode response: " + err.Error(),
		cause:   err,
	}
}

// NewSocketOpenError wraps a WebSocket dial failure for the given stream path.
func NewSocketOpenError(path string, err error) *APIError {
	return &APIError{
		Kind:    ErrKindSocketOpenFailed,
		Message: fmt.Sprintf("open stream %s: %s", path, err),
		cause:   err,
	}
}

// KindOf extracts the error kind, or ErrKindUnknown if err is not an APIError.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ErrKindUnknown
}

// IsNotAuthenticated returns true if the error indicates missing credentials.
// These errors are raised before any network traffic and are not retryable.
func IsNotAuthenticated(err error) bool {
	return KindOf(err) == ErrKindNotAuthenticated
}

// IsInvalidArgument returns true if the error indicates locally rejected
// arguments.
func IsInvalidArgument(err error) bool {
	return KindOf(err) == ErrKindInvalidArgument
}

// IsServerRejected returns true if the exchange returned a structured error.
// The APIError carries the exchange's numeric code for finer dispatch.
func IsServerRejected(err error) bool {
	return KindOf(err) == ErrKindServerRejected
}

// IsMalformedResponse returns true if a response body failed to decode.
func IsMalformedResponse(err error) bool {
	return KindOf(err) == ErrKindMalformedResponse
}

// IsTransportError returns true if the failure happened below the protocol
// level. Transport errors are typically retryable.
func IsTransportError(err error) bool {
	return KindOf(err) == ErrKindTransport
}

// IsSocketOpenFailed returns true if a WebSocket dial or handshake failed.
func IsSocketOpenFailed(err error) bool {
	return KindOf(err) == ErrKindSocketOpenFailed
}
