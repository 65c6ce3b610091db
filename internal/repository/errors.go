// Package repository defines error values shared across repositories.
// These sentinels let handlers distinguish failure scenarios without
// inspecting driver errors: ErrForbidden maps to HTTP 403 when an actor
// touches a booking they do not own, and ErrConflict signals that a
// booking cannot be created because a confirmed booking already covers
// an overlapping date range on the same room.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a booking cannot proceed because of
// conflicting state, such as an overlapping confirmed booking on the
// requested room. Handlers translate this into HTTP 400 per the API
// contract.
var ErrConflict = errors.New("conflict")
