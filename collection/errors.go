package collection

import (
	"errors"
	"fmt"
)

// Error types for collection operations.
// Each error states whether the connection it happened on can be reused.

var (
	// ErrOperationDone is returned when a line is delivered to an operation
	// that already completed or was cancelled. The line is not decoded.
	ErrOperationDone = errors.New("collection: operation already done")

	// ErrInvalidState is returned when the transport drives an operation out
	// of order, e.g. delivers a line before the write completed.
	ErrInvalidState = errors.New("collection: invalid operation state")

	// ErrLineTooLong is returned by ReadLine when no line terminator shows up
	// within MaxLineLength bytes.
	ErrLineTooLong = errors.New("collection: response line too long")
)

// PreconditionError is returned when a request is rejected client-side,
// before any byte is sent and before an Operation exists.
//
// Common causes:
//   - Empty or oversized key
//   - Empty or oversized byte-array bkey
//   - Piped item count over the configured maximum
//   - Piped payload over the maximum frame size
//
// Connection handling: nothing was sent, connection can be REUSED
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return "collection: " + e.Message
}

// ShouldCloseConnection returns false - nothing was written
func (e *PreconditionError) ShouldCloseConnection() bool {
	return false
}

// ProtocolError is the outcome of an operation whose response violated the
// protocol: an unrecognized token, a CLIENT_ERROR or PIPE_ERROR line, or a
// piped response whose line count does not match the request.
//
// It is never retried by this package.
//
// Connection handling: response framing is unknown, CLOSE connection
type ProtocolError struct {
	Command CmdType
	Line    string
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("collection: protocol violation in %s: %s", e.Command, e.Message)
	}
	return fmt.Sprintf("collection: protocol violation in %s: %s: %q", e.Command, e.Message, e.Line)
}

// ShouldCloseConnection returns true - the stream position is unknown
func (e *ProtocolError) ShouldCloseConnection() bool {
	return true
}

// ConnectionError wraps I/O errors from the transport.
//
// Connection handling: connection is already broken, CLOSE
type ConnectionError struct {
	Op  string // read, write, flush
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - connection errors mean connection is broken
func (e *ConnectionError) ShouldCloseConnection() bool {
	return true
}

// ErrorWithConnectionState is implemented by all errors of this package.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err leaves the connection unusable.
// Unknown error types are treated conservatively and close the connection.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	return true
}
