// Package flowerr defines the flat error-code enumeration shared by every
// flow-runtime component, mirroring the taxonomy used throughout the
// original node/port/container API rather than ad-hoc per-package errors.
package flowerr

import "fmt"

// Code is a small negative-integer-rendering error code, comparable with ==.
type Code int

const (
	Ok Code = -iota
	InvalidPort
	TypeMismatch
	AlreadyConnected
	NotConnected
	OutOfMemory
	AlreadyExists
	UnknownOption
	DuplicateOption
	NotFound
	Busy
)

var names = map[Code]string{
	Ok:               "Ok",
	InvalidPort:      "InvalidPort",
	TypeMismatch:     "TypeMismatch",
	AlreadyConnected: "AlreadyConnected",
	NotConnected:     "NotConnected",
	OutOfMemory:      "OutOfMemory",
	AlreadyExists:    "AlreadyExists",
	UnknownOption:    "UnknownOption",
	DuplicateOption:  "DuplicateOption",
	NotFound:         "NotFound",
	Busy:             "Busy",
}

func (c Code) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error wraps a Code with an optional contextual message. Call sites
// compare against a Code with this package's Is, which checks err's own
// type and Code; it does not unwrap, and Error has no Is method for the
// standard errors.Is to use.
type Error struct {
	Code    Code
	Context string
}

func (e *Error) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%s(%d)", e.Code, int(e.Code))
	}
	return fmt.Sprintf("%s(%d): %s", e.Code, int(e.Code), e.Context)
}

// New builds an *Error for code with an optional formatted context.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Context: fmt.Sprintf(format, args...)}
}

// Is reports whether err carries the given code; the usual check at call
// sites that branch on a specific failure. Of extracts the code instead
// when a caller wants to switch over several.
func Is(err error, code Code) bool {
	fe, ok := err.(*Error)
	return ok && fe.Code == code
}

// Of extracts the Code carried by err, or Ok if err is nil, or a sentinel
// negative code if err is a foreign error.
func Of(err error) Code {
	if err == nil {
		return Ok
	}
	if fe, ok := err.(*Error); ok {
		return fe.Code
	}
	return Busy - 1
}
