// Package services defines the business logic for tenants, canned replies,
// and server-held preview widget sessions. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrTenantNotFound indicates that no customization is registered for the
	// requested publish key.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrSessionNotFound indicates that the requested preview session does not
	// exist or has been disposed.
	ErrSessionNotFound = errors.New("preview session not found")

	// ErrEmptyMessage is returned when a chat request contains an empty message.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrTooLong is returned when a chat message exceeds the maximum configured
	// length limit.
	ErrTooLong = errors.New("message too long")
)
