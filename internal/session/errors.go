package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrorKind categorizes session errors so callers can distinguish a
// device that timed out from one that refused the connection.
type ErrorKind int

const (
	// KindNetwork is an OS-level failure: refused, unreachable, reset.
	// Recoverable; the reconnect loop retries these.
	KindNetwork ErrorKind = iota
	// KindTimeout is a connect or confirmation timeout.
	KindTimeout
	// KindProcessing is a request made in an invalid state, such as
	// sending while disconnected.
	KindProcessing
	// KindValidation is a rejected input value: out-of-range volume,
	// unknown command name. Never touches the connection.
	KindValidation
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network error"
	case KindTimeout:
		return "timeout"
	case KindProcessing:
		return "processing error"
	case KindValidation:
		return "validation error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a categorized session error.
type Error struct {
	Kind    ErrorKind
	Op      string // operation that failed: "connect", "send", ...
	Message string
	Err     error // underlying error, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError builds a validation error for a rejected input.
func NewValidationError(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// newProcessingError builds a processing error for an invalid-state request.
func newProcessingError(op, message string) *Error {
	return &Error{Kind: KindProcessing, Op: op, Message: message}
}

// classifyConnError wraps a dial or write failure as a timeout or
// network error.
func classifyConnError(op string, err error) *Error {
	if isTimeout(err) {
		return &Error{Kind: KindTimeout, Op: op, Message: "connection timed out", Err: err}
	}

	msg := "connection failed"
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			msg = "connection refused"
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			msg = "host unreachable"
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			msg = "network unreachable"
		case errors.Is(opErr.Err, syscall.ECONNRESET):
			msg = "connection reset"
		}
	}
	return &Error{Kind: KindNetwork, Op: op, Message: msg, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsNetworkError reports whether err is a session network error.
func IsNetworkError(err error) bool { return hasKind(err, KindNetwork) }

// IsTimeoutError reports whether err is a session timeout error.
func IsTimeoutError(err error) bool { return hasKind(err, KindTimeout) }

// IsProcessingError reports whether err is a session processing error.
func IsProcessingError(err error) bool { return hasKind(err, KindProcessing) }

// IsValidationError reports whether err is a session validation error.
func IsValidationError(err error) bool { return hasKind(err, KindValidation) }

func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
