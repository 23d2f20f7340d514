// Package widget implements the embeddable chat widget runtime. This file
// centralizes the sentinel errors returned by the widget lifecycle so the
// host and tests can check them consistently.
//
// Note the deliberate split between errors and silent no-ops: lifecycle
// misuse (initializing twice, driving a disposed widget) is an error, while
// user-action preconditions (empty message, unidentified visitor, send in
// flight) are quietly ignored, matching how the browser widget handles its
// event callbacks.
package widget

import "errors"

var (
	// ErrPublishKeyNotFound indicates the host page contains no widget
	// script tag carrying a publish key. Nothing downstream can proceed,
	// so this is the one unconditionally fatal resolution failure.
	ErrPublishKeyNotFound = errors.New("publish key not found in host page")

	// ErrAlreadyInitialized is returned by Init on a widget that has left
	// the init state.
	ErrAlreadyInitialized = errors.New("widget already initialized")

	// ErrNotReady is returned when an operation requires a successfully
	// initialized widget.
	ErrNotReady = errors.New("widget not ready")

	// ErrDisposed is returned when an operation reaches a disposed widget.
	ErrDisposed = errors.New("widget disposed")

	// ErrIdentityIncomplete is returned when the identity form is
	// submitted with a blank name or email.
	ErrIdentityIncomplete = errors.New("name and email are required")
)
