// Package errors provides coded errors shared by the battle engine, its
// services and its storage layers.
package errors

import (
	"errors"
	"fmt"
)

// Code categorizes an error so callers can branch without string matching
type Code string

const (
	CodeUnknown            Code = "unknown"
	CodeInvalidArgument    Code = "invalid_argument"
	CodeNotFound           Code = "not_found"
	CodeAlreadyExists      Code = "already_exists"
	CodeInternal           Code = "internal"
	CodeUnavailable        Code = "unavailable"
	CodeValidation         Code = "validation"
	CodeFailedPrecondition Code = "failed_precondition"
)

// Error is an application error with a code and optional metadata
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta attaches a key/value pair and returns the same error
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates an error with the given code
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap adds context to err, keeping the code when err is already coded
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var coded *Error
	if errors.As(err, &coded) {
		return &Error{
			Code:    coded.Code,
			Message: message,
			Cause:   err,
			Meta:    copyMeta(coded.Meta),
		}
	}

	return &Error{Code: CodeUnknown, Message: message, Cause: err}
}

// Wrapf wraps err with a formatted message
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps err and overrides its code
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, message)
	wrapped.Code = code
	return wrapped
}

func NotFound(message string) *Error { return New(CodeNotFound, message) }

func NotFoundf(format string, args ...any) *Error { return Newf(CodeNotFound, format, args...) }

func InvalidArgument(message string) *Error { return New(CodeInvalidArgument, message) }

func InvalidArgumentf(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

func AlreadyExistsf(format string, args ...any) *Error {
	return Newf(CodeAlreadyExists, format, args...)
}

func Internalf(format string, args ...any) *Error { return Newf(CodeInternal, format, args...) }

func Validationf(format string, args ...any) *Error { return Newf(CodeValidation, format, args...) }

// FailedPreconditionf reports an operation invoked against state that can
// never accept it, such as an action submitted to a completed battle.
func FailedPreconditionf(format string, args ...any) *Error {
	return Newf(CodeFailedPrecondition, format, args...)
}

// Is reports whether err carries the given code
func Is(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

func IsNotFound(err error) bool { return Is(err, CodeNotFound) }

func IsInvalidArgument(err error) bool { return Is(err, CodeInvalidArgument) }

func IsFailedPrecondition(err error) bool { return Is(err, CodeFailedPrecondition) }

// GetCode returns the code of err or CodeUnknown
func GetCode(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeUnknown
}

// GetMeta returns the metadata of err, if any
func GetMeta(err error) map[string]any {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Meta
	}
	return nil
}

func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	copied := make(map[string]any, len(meta))
	for k, v := range meta {
		copied[k] = v
	}
	return copied
}
