package api

import "errors"

var (
	// ErrValidation marks a malformed or incomplete request. It is surfaced
	// to the caller before any planning work begins.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a missing record in a repository lookup.
	ErrNotFound = errors.New("not found")
)
