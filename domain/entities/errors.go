package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKeyword is returned when a dispatched name is not registered
	ErrUnknownKeyword = errors.New("unknown keyword")

	// ErrDuplicateKeyword is returned when two keyword groups declare the same name
	ErrDuplicateKeyword = errors.New("duplicate keyword")

	// ErrInvalidArguments is returned when call arguments do not fit the declared signature
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrHandleClosed is returned by engine operations after teardown
	ErrHandleClosed = errors.New("engine handle closed")

	// ErrHandleNotOpen is returned by engine operations before the handle is opened
	ErrHandleNotOpen = errors.New("engine handle not open")

	// ErrNoBrowser is returned by page operations before a browser is opened
	ErrNoBrowser = errors.New("no browser is open")

	// ErrUnsupportedBrowser is returned when an unknown browser name is requested
	ErrUnsupportedBrowser = errors.New("unsupported browser")

	// ErrNavigationBlocked is returned when the navigation guard rejects a URL
	ErrNavigationBlocked = errors.New("navigation blocked")
)

// AssertionError is a verification failure raised by a keyword.
// It is the only failure kind that triggers the failure hook.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return e.Message
}

// Assertionf builds an AssertionError with a formatted message.
func Assertionf(format string, args ...interface{}) error {
	return &AssertionError{Message: fmt.Sprintf(format, args...)}
}

// IsAssertion reports whether err is, or wraps, an AssertionError.
func IsAssertion(err error) bool {
	var assertionErr *AssertionError
	return errors.As(err, &assertionErr)
}

// ErrorKind classifies an error for hosts that need a tag rather than a Go error value.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsAssertion(err):
		return "assertion"
	case errors.Is(err, ErrUnknownKeyword):
		return "unknown_keyword"
	case errors.Is(err, ErrInvalidArguments):
		return "invalid_arguments"
	case errors.Is(err, ErrHandleClosed), errors.Is(err, ErrHandleNotOpen):
		return "handle_closed"
	default:
		return "error"
	}
}
