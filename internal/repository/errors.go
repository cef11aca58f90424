// Package repository provides typed access to the non-seat collections
// (users, events, bookings, friend requests, suggestions) over the document
// store.  Seat-mutating writes never happen here; those belong to the
// ledger package.  Sentinel errors let handlers distinguish failure
// scenarios without inspecting messages.
package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist.  Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate it into an HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicate is returned when creating a record that already exists, such
// as a second pending friend request to the same user.  Handlers translate
// it into an HTTP 409.
var ErrDuplicate = errors.New("duplicate")
