package irc

import (
	"errors"
	"fmt"
)

// ErrDispatcherStopped is returned when registering a listener on a
// dispatcher that has been told to stop.
var ErrDispatcherStopped = errors.New("dispatcher stopped")

// TransportError is an I/O failure on the connection. It is fatal to the
// read loop; write failures are reported and the command is dropped.
type TransportError struct {
	Op  string // "read" or "write"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolParseError is a line or mode letter that could not be processed.
// The offending input is dropped and processing continues.
type ProtocolParseError struct {
	Line   string
	Reason string
	Err    error
}

func (e *ProtocolParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %q: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %q: %s", e.Line, e.Reason)
}

func (e *ProtocolParseError) Unwrap() error { return e.Err }

// ListenerError is a failure inside a listener while it handled an event.
type ListenerError struct {
	Kind EventKind
	Err  error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener failed on %s: %v", e.Kind, e.Err)
}

func (e *ListenerError) Unwrap() error { return e.Err }
