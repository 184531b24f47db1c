// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// Kind classifies an error so that delivery layers can map it to a response
// status without knowing every concrete error value.
type Kind uint8

// Supported error kinds.
const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindInvalidInput
	KindInvalidAmount
	KindInsufficientFunds
	KindInvalidOperation
	KindConflict
)

var kindNames = map[Kind]string{
	KindInternal:          "internal",
	KindNotFound:          "not_found",
	KindForbidden:         "forbidden",
	KindUnauthorized:      "unauthorized",
	KindInvalidInput:      "invalid_input",
	KindInvalidAmount:     "invalid_amount",
	KindInsufficientFunds: "insufficient_funds",
	KindInvalidOperation:  "invalid_operation",
	KindConflict:          "conflict",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return "unknown"
}

// Error is an application error with a stable machine readable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

// New returns an application error of the given kind.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// ErrInternal indicates internal server error.
var ErrInternal = New(KindInternal, "internal", "internal")

// KindOf returns the kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

// CodeOf returns the stable code of err, "internal" for unknown errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrInternal.Code
}
