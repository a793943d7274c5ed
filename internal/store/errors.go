package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an insert collides with the unique
// email index. The index makes the existence check and the insert
// atomic; a racing second registration surfaces here, never as a
// silent duplicate row.
var ErrDuplicateEmail = errors.New("email already registered")
