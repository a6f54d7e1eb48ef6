package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Error is a coded error carrying the failed operation, the offending path
// or identifier, and the underlying cause.
type Error struct {
	// Code classifies the failure.
	Code ErrorCode

	// Op is the operation that failed (e.g. "copy", "resolve project").
	Op string

	// Path is the file path, object key or identifier involved, if any.
	Path string

	// Err is the underlying error.
	Err error

	// kind marks taxonomy sentinels that match any Error sharing their code.
	kind bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(e.Path)
	}
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a kind sentinel with the same code as e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind && t.Code == e.Code
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code: code,
		Err:  stderrors.New(message),
	}
}

func newKind(code ErrorCode, message string) *Error {
	e := New(code, message)
	e.kind = true
	return e
}

// Wrap wraps err with a code and operation. It returns nil if err is nil.
func Wrap(err error, code ErrorCode, op string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code: code,
		Op:   op,
		Err:  err,
	}
}

// WrapPath wraps err with a code, an operation and the path it failed on.
// It returns nil if err is nil.
func WrapPath(err error, code ErrorCode, op, path string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code: code,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// Wrapf wraps err with a formatted operation, keeping the code already carried by err.
// It returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code: CodeOf(err),
		Op:   fmt.Sprintf(format, args...),
		Err:  err,
	}
}

// CodeOf returns the code of the outermost Error in err's chain.
// It returns CodeUnknown for uncoded errors and an empty code for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var coded *Error
	if stderrors.As(err, &coded) && coded.Code != "" {
		return coded.Code
	}
	return CodeUnknown
}

// HasCode reports whether any Error in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if coded, ok := err.(*Error); ok && coded.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}
