// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// Sentinels for matching EngineError codes with errors.Is
var (
	ErrTransport = errors.New("transport error")
	ErrProtocol  = errors.New("protocol error")
	ErrParse     = errors.New("parse error")
)

// ErrorCode represents a specific failure class
type ErrorCode string

const (
	ErrCodeTransport ErrorCode = "TRANSPORT"
	ErrCodeProtocol  ErrorCode = "PROTOCOL"
	ErrCodeParse     ErrorCode = "PARSE"
)

// Detail keys used across the engine
const (
	DetailPage      = "page"
	DetailStatus    = "status"
	DetailURL       = "url"
	DetailDebugFile = "debug_file"
)

// EngineError wraps errors with additional context.
// None of them are retried; every EngineError ends the run.
type EngineError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Hint       string
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is matches another EngineError or sentinel with the same code
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	switch target {
	case ErrTransport:
		return e.Code == ErrCodeTransport
	case ErrProtocol:
		return e.Code == ErrCodeProtocol
	case ErrParse:
		return e.Code == ErrCodeParse
	}
	return false
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// TransportError reports a failed request or a non-success HTTP status
func TransportError(message string, err error) *EngineError {
	return NewEngineError(ErrCodeTransport, message, err)
}

// ProtocolError reports missing session tokens or an error redirect
func ProtocolError(message string) *EngineError {
	return NewEngineError(ErrCodeProtocol, message, nil)
}

// ParseError reports a payload without update panels or a results table
func ParseError(message string) *EngineError {
	return NewEngineError(ErrCodeParse, message, nil)
}

// WithDetail adds a detail to the error
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	e.Details[key] = value
	return e
}

// WithHint attaches a user-facing suggestion
func (e *EngineError) WithHint(hint string) *EngineError {
	e.Hint = hint
	return e
}

// WithDebugFile records where the raw payload was saved, if anywhere
func (e *EngineError) WithDebugFile(path string) *EngineError {
	if path != "" {
		e.Details[DetailDebugFile] = path
	}
	return e
}

// DebugFile returns the saved debug artifact path, or ""
func (e *EngineError) DebugFile() string {
	s, _ := e.Details[DetailDebugFile].(string)
	return s
}
