package outlook

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the tool layer can report it uniformly.
type Kind int

const (
	// KindHost is any failure raised by the automation model itself.
	KindHost Kind = iota
	// KindConnection means Outlook could not be reached.
	KindConnection
	// KindNotFound means a named folder or item does not exist.
	KindNotFound
	// KindValidation means the caller's input was rejected before any host call.
	KindValidation
	// KindUnsupported means the installed Outlook does not expose the feature.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUnsupported:
		return "unsupported"
	default:
		return "host"
	}
}

// Error is the error type returned by every Client operation.
type Error struct {
	Kind    Kind
	Op      string
	Msg     string
	Hint    string
	Details map[string]any
	Err     error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrConnection  = &Error{Kind: KindConnection}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrValidation  = &Error{Kind: KindValidation}
	ErrUnsupported = &Error{Kind: KindUnsupported}
	ErrHost        = &Error{Kind: KindHost}
)

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a Kind sentinel matching e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Message returns the human-readable part of the error without the
// operation prefix.
func (e *Error) Message() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// KindOf returns the Kind of err, or KindHost for errors not raised by
// this package.
func KindOf(err error) Kind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindHost
}

func connectionError(op string, err error) *Error {
	return &Error{Kind: KindConnection, Op: op, Msg: "failed to connect to Outlook", Err: err}
}

func hostError(op, msg string, err error) *Error {
	return &Error{Kind: KindHost, Op: op, Msg: msg, Err: err}
}

func notFound(op, msg, hint string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: msg, Hint: hint}
}

func validationf(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func unsupported(op, msg string, err error) *Error {
	return &Error{Kind: KindUnsupported, Op: op, Msg: msg, Err: err}
}
