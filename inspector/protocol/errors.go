package protocol

import (
	"errors"
	"fmt"
)

// Kind classifies errors reported to a front end.
type Kind int

// Error kinds.
const (
	Internal        Kind = iota // engine rejected a mutation, or a bug
	NotFound                    // unknown node, style sheet, rule or search id
	InvalidArgument             // malformed parameter or out-of-range index
	Syntax                      // property or selector text does not parse
	NotModifiable               // style sheet has no text source or no source data
	MethodNotFound              // unknown command
	ParseError                  // message is not well-formed
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not-found"
	case InvalidArgument:
		return "invalid-argument"
	case Syntax:
		return "syntax"
	case NotModifiable:
		return "not-modifiable"
	case MethodNotFound:
		return "method-not-found"
	case ParseError:
		return "parse-error"
	}
	return "internal"
}

// Code returns the numeric error code used on the wire.
func (k Kind) Code() int {
	switch k {
	case NotFound:
		return -32000
	case InvalidArgument:
		return -32602
	case Syntax:
		return -32001
	case NotModifiable:
		return -32002
	case MethodNotFound:
		return -32601
	case ParseError:
		return -32700
	}
	return -32603
}

// Error is an error with a kind. Errors of one kind match each other with
// errors.Is if the target has an empty message, so
//
//	errors.Is(err, protocol.ErrNotFound)
//
// tests for the kind of err.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

// Is supports errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Markers for errors.Is.
var (
	ErrInternal        = &Error{Kind: Internal}
	ErrNotFound        = &Error{Kind: NotFound}
	ErrInvalidArgument = &Error{Kind: InvalidArgument}
	ErrSyntax          = &Error{Kind: Syntax}
	ErrNotModifiable   = &Error{Kind: NotModifiable}
	ErrMethodNotFound  = &Error{Kind: MethodNotFound}
)

// Errorf creates an error of a given kind.
func Errorf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of an error. Errors without a kind are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
