// Package apperr classifies failures so the CLI can tell fatal pre-flight problems from per-address ones.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a coarse-grained category for an error.
type Kind string

const (
	// KindConfiguration marks a missing or invalid setting.
	KindConfiguration Kind = "configuration"
	// KindInput marks an unusable address list.
	KindInput Kind = "input"
	// KindConnection marks a ledger session that could not be opened.
	KindConnection Kind = "connection"
	// KindTransport marks a request that failed on the wire or on a closed session.
	KindTransport Kind = "transport"
	// KindProtocol marks an error reply from the ledger node.
	KindProtocol Kind = "protocol"
)

// OpError wraps an underlying error with the operation and its kind.
type OpError struct {
	Op   string
	Kind Kind
	Err  error
}

// E builds an OpError.
func E(op string, kind Kind, err error) *OpError {
	return &OpError{Op: op, Kind: kind, Err: err}
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether any OpError in err's chain carries kind.
func IsKind(err error, kind Kind) bool {
	var oe *OpError
	for err != nil {
		if !errors.As(err, &oe) {
			return false
		}
		if oe.Kind == kind {
			return true
		}
		err = oe.Err
	}
	return false
}

// KindOf returns the kind of the outermost OpError, or "" when there is none.
func KindOf(err error) Kind {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return ""
}
