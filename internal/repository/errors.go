// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver error strings. For example, ErrEmailExists maps the
// MySQL duplicate-key error on users.email to a 409 response, while
// ErrInvalidID marks an identifier that is not a well-formed UUID and
// therefore cannot reference any record.
package repository

import "errors"

// ErrEmailExists is returned when an insert hits the unique index on
// users.email. The index is the authoritative duplicate guard; the
// handler-level existence pre-check only narrows the race window.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a referenced record does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrInvalidID is returned when an identifier is not structurally
// valid (not a parseable UUID). Handlers should translate this into
// an HTTP 400 response; it says nothing about whether a record with
// that id exists.
var ErrInvalidID = errors.New("invalid identifier")
