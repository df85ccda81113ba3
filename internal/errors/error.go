package errors

import (
	"errors"
	"fmt"
)

// Category groups error codes by the layer that raises them.
type Category string

const (
	CategoryConfig   Category = "config"
	CategorySnapshot Category = "snapshot"
	CategoryStore    Category = "store"
	CategoryProtocol Category = "protocol"
	CategoryServer   Category = "server"
	CategoryCLI      Category = "cli"
)

// Error is a registered failure: a code with its category and message,
// optionally tied to the snapshot document it was found in.
type Error struct {
	Code     string
	Category Category
	Message  string

	// Detail explains this occurrence, e.g. the offending document path.
	Detail string

	// Document names the snapshot the error belongs to: a file, store
	// location or request member.
	Document string

	Suggestion string
	DocURL     string
	Wrapped    error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is matches another *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code != "" && t.Code == e.Code
}

// In ties the error to a snapshot document. The first call wins so the
// innermost caller's name is kept.
func (e *Error) In(document string) *Error {
	if e.Document == "" {
		e.Document = document
	}
	return e
}

func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

func (e *Error) WithDetailf(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New returns a fresh Error for a registered code. Unregistered codes get a
// generic message.
func New(code string) *Error {
	tmpl, ok := registry[code]
	if !ok {
		return &Error{Code: code, Message: "Unknown error"}
	}
	return &Error{
		Code:     code,
		Category: tmpl.Category,
		Message:  tmpl.Message,
		Detail:   tmpl.Detail,
		DocURL:   tmpl.DocURL,
	}
}

// FromError returns the *Error in err's chain, or wraps err under code.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first *Error in err's chain, or "".
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
