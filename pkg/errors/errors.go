// Package errors provides the unified error type and factory functions for
// xpid. Every layer (domain, application, infrastructure, interfaces) uses
// AppError as the single carrier for structured error information, so the
// batch driver can classify per-file failures without string matching.
package errors

import (
	"errors"
	"fmt"
)

// AppError is the structured error type used throughout xpid. It satisfies
// the standard error interface and supports Go 1.13+ error wrapping so that
// errors.Is / errors.As / errors.Unwrap work transparently across layers.
//
// Usage:
//
//	return errors.New(errors.CodeParse, "truncated ATOM record")
//	return errors.Wrap(err, errors.CodePrep, "hydrogen placement failed")
type AppError struct {
	// Code is the typed error code identifying the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error.
	Message string

	// Detail carries supplementary context (file paths, residue ids, etc.)
	// that aids debugging.
	Detail string

	// Cause is the underlying error, enabling errors.Is / errors.As
	// traversal of the full chain.
	Cause error
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>"; the detail segment is omitted
// when Detail is empty and the cause is appended when present.
func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As to
// traverse the chain without boilerplate at call sites.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy of the receiver with Detail set.
// Safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf constructs a fresh AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an AppError that wraps an existing error. If err is nil,
// Wrap returns nil so it can be used inline on call results.
//
// When err is already an *AppError and code is CodeUnknown, the original
// code is preserved so classification survives cross-layer propagation.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError in err's chain.
// If none is present, CodeUnknown is returned; nil maps to CodeOK. This
// gives the metrics layer a single label value per failure.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// Validation constructs a CodeValidation AppError.
func Validation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

// Internal constructs a CodeInternal AppError. Use for contract violations
// where no more specific code applies; these should fail loudly upstream.
func Internal(message string) *AppError {
	return &AppError{Code: CodeInternal, Message: message}
}
