// Package repository implements the persistence layer over MySQL.
// Sentinel error values defined here are shared across repositories so
// handlers can map failure scenarios to HTTP responses: ErrConflict
// becomes a 409, ErrValidation marks a stored record that is missing a
// required field, and the *NotFound values become 404s.
package repository

import "errors"

// ErrConflict is returned when an insert or update cannot proceed
// because of conflicting existing state, such as adding a participant
// who is already on the roster.
var ErrConflict = errors.New("conflict")

// ErrValidation is returned when a stored record is malformed (a
// required field is missing or has the wrong shape).  Loading that one
// record fails; aggregate loads skip the record rather than abort.
var ErrValidation = errors.New("invalid stored record")

// ErrOrderNotFound is returned when no order exists for an id.
var ErrOrderNotFound = errors.New("order not found")

// ErrStudentNotFound is returned when no student exists for a login.
var ErrStudentNotFound = errors.New("student not found")

// ErrClassNotFound is returned when no class exists for a ref.
var ErrClassNotFound = errors.New("class not found")

// ErrParticipantNotFound is returned when a student is not on the
// roster of a class.
var ErrParticipantNotFound = errors.New("participant not found")
