package resolver

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorType int

const (
	ErrMissingElement ErrorType = iota
	ErrMissingBootstrapToken
	ErrNetworkFailure
	ErrDecodeFailure
	ErrTimeout
	ErrNotFound
	ErrUnknown
)

func (t ErrorType) String() string {
	switch t {
	case ErrMissingElement:
		return "MissingElement"
	case ErrMissingBootstrapToken:
		return "MissingBootstrapToken"
	case ErrNetworkFailure:
		return "NetworkFailure"
	case ErrDecodeFailure:
		return "DecodeFailure"
	case ErrTimeout:
		return "Timeout"
	case ErrNotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// ResolveError is the structured failure a resolver reports. No resolver
// ever lets a failure cross its boundary in any other form.
type ResolveError struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, message string) *ResolveError {
	return &ResolveError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
	}
}

func WrapError(err error, errorType ErrorType, message string) *ResolveError {
	return &ResolveError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
		Cause:   err,
	}
}

func (e *ResolveError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Type.String(), e.Message))

	if len(e.Context) > 0 {
		var ctxParts []string
		for k, v := range e.Context {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(ctxParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *ResolveError) Unwrap() error {
	return e.Cause
}

func (e *ResolveError) WithContext(key string, value any) *ResolveError {
	e.Context[key] = value
	return e
}

func IsErrorType(err error, errorType ErrorType) bool {
	var resErr *ResolveError
	if errors.As(err, &resErr) {
		return resErr.Type == errorType
	}
	return false
}
