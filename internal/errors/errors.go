// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so callers can branch on the kind of failure instead of
// inspecting log output.
//
// The package supports wrapping underlying errors while maintaining error kind information.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ConnectFailed indicates the warehouse session could not be established.
	ConnectFailed Kind = "connect_failed"
	// NotConnected indicates an operation was invoked without an open session.
	NotConnected Kind = "not_connected"
	// StatementFailed indicates a SQL statement or fetch failed.
	StatementFailed Kind = "statement_failed"
	// ShardIO indicates a failure reading or writing shard files.
	ShardIO Kind = "shard_io"
	// InvalidArgument indicates a missing or malformed caller argument.
	InvalidArgument Kind = "invalid_argument"
	// ConfirmationRequired indicates a destructive operation had no confirmer.
	ConfirmationRequired Kind = "confirmation_required"
	// NotebookFailed indicates notebook load, execution or save failed.
	NotebookFailed Kind = "notebook_failed"
	// NotifyFailed indicates a webhook request could not be sent.
	NotifyFailed Kind = "notify_failed"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

// Is reports a match when target is an *E of the same kind with no message,
// which lets callers test with errors.Is(err, errors.New(kind, "")).
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" when none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
