package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation. Every error surfaced by this package
// (and by the alert store's local validation) carries exactly one Kind, so
// callers branch on classification instead of string matching.
type Kind int

const (
	// KindValidation is a client-detected input problem. Validation
	// failures never reach the network.
	KindValidation Kind = iota + 1

	// KindAuth is an authorization failure (401). Handled globally:
	// by the time the caller sees this error, the session has been
	// cleared and the login navigation triggered.
	KindAuth

	// KindNotFound is a 404 on an id that no longer exists server-side.
	KindNotFound

	// KindServer is any other non-2xx response or a malformed body.
	KindServer

	// KindNetwork is a transport-level failure; no response was received.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the typed failure returned by every operation in this package.
// Message is user-presentable: the server's own error text when it sent
// one, otherwise a per-operation fallback.
type Error struct {
	Kind       Kind
	StatusCode int    // HTTP status, 0 for validation/network failures
	Message    string // User-presentable message
	Err        error  // Underlying cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ValidationError builds a KindValidation error for input rejected before
// any network call.
func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// kindOf extracts the Kind from err, or 0 if err is not an *Error.
func kindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool { return kindOf(err) == KindValidation }

// IsAuth reports whether err is an authorization failure.
func IsAuth(err error) bool { return kindOf(err) == KindAuth }

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool { return kindOf(err) == KindNotFound }

// IsServer reports whether err is a server-side failure.
func IsServer(err error) bool { return kindOf(err) == KindServer }

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool { return kindOf(err) == KindNetwork }

// Message returns the user-presentable message of err, or err.Error()
// when err is not an *Error.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
