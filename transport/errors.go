package transport

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind defines a public type used by transport APIs.
//
// ErrorKind instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ErrorKind uint8

const (
	// KindNetwork is an exported constant or variable used by the transport layer.
	KindNetwork ErrorKind = iota
	// KindHTTP is an exported constant or variable used by the transport layer.
	KindHTTP
	// KindValidation is an exported constant or variable used by the transport layer.
	KindValidation
	// KindAuth is an exported constant or variable used by the transport layer.
	KindAuth
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// APIError is the single classified error shape returned to every caller.
// Kind is stable; Message prefers the server-provided message and falls back
// to a status-keyed default. Fields carries the structured field errors of a
// 422 response.
type APIError struct {
	Kind      ErrorKind
	Status    int
	Message   string
	RequestID string
	Fields    map[string][]string
	Timestamp time.Time
}

// Error describes the error operation and its observable behavior.
//
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// AsAPIError describes the asapierror operation and its observable behavior.
//
// AsAPIError does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

var defaultStatusMessages = map[int]string{
	400: "the request was malformed",
	401: "your session has expired, please sign in again",
	403: "you do not have access to this resource",
	404: "the requested resource was not found",
	408: "the server took too long to respond",
	409: "the request conflicts with the current state",
	422: "some fields contain invalid values",
	429: "too many requests, please slow down",
	500: "the server encountered an internal error",
	502: "the server is temporarily unreachable",
	503: "the service is temporarily unavailable",
	504: "the server took too long to respond",
}

var retryableStatuses = map[int]struct{}{
	408: {},
	429: {},
	500: {},
	502: {},
	503: {},
	504: {},
}

func retryableStatus(status int) bool {
	_, ok := retryableStatuses[status]
	return ok
}

func classifyStatus(status int, serverMessage string, fields map[string][]string, requestID string) *APIError {
	kind := KindHTTP
	switch {
	case status == 401:
		kind = KindAuth
	case status == 422:
		kind = KindValidation
	}

	message := serverMessage
	if message == "" {
		message = defaultStatusMessages[status]
	}
	if message == "" {
		message = "the request failed"
	}

	return &APIError{
		Kind:      kind,
		Status:    status,
		Message:   message,
		RequestID: requestID,
		Fields:    fields,
		Timestamp: time.Now().UTC(),
	}
}

func classifyNetwork(cause error, requestID string) *APIError {
	message := "unable to reach the server"
	if cause != nil {
		message = fmt.Sprintf("unable to reach the server: %v", cause)
	}
	return &APIError{
		Kind:      KindNetwork,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
	}
}

func retryable(err *APIError) bool {
	if err == nil {
		return false
	}
	if err.Kind == KindNetwork {
		return true
	}
	return err.Kind == KindHTTP && retryableStatus(err.Status)
}
