package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure so the serving layer can map it onto a
// transport status without parsing messages.
type Kind uint8

const (
	// KindUnknown is returned by KindOf for errors the service layer did not
	// classify, typically infrastructure failures.
	KindUnknown Kind = iota
	// KindValidation marks malformed or missing input.
	KindValidation
	// KindNotFound marks an absent referenced entity.
	KindNotFound
	// KindForbidden marks an authenticated caller lacking rights over the
	// targeted entity.
	KindForbidden
	// KindInvalidState marks an operation that is not legal in the entity's
	// current lifecycle state, including lapsed due dates and bad transitions.
	KindInvalidState
	// KindConflict marks a uniqueness violation.
	KindConflict
)

// Error is a classified service failure with a machine-checkable reason.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

// KindOf extracts the classification from an error chain.
func KindOf(err error) Kind {
	var serviceErr *Error
	if errors.As(err, &serviceErr) {
		return serviceErr.Kind
	}
	return KindUnknown
}

func errValidation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Reason: fmt.Sprintf(format, args...)}
}

func errNotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Reason: fmt.Sprintf(format, args...)}
}

func errForbidden(format string, args ...interface{}) error {
	return &Error{Kind: KindForbidden, Reason: fmt.Sprintf(format, args...)}
}

func errInvalidState(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidState, Reason: fmt.Sprintf(format, args...)}
}

func errConflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Reason: fmt.Sprintf(format, args...)}
}
