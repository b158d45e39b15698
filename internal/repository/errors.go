package repository

import "errors"

// Sentinel errors shared across repositories.
var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrMaxAttemptsExceeded means the student already used every allowed
	// attempt for the exam. Raised inside the submit transaction so that two
	// concurrent submissions cannot both pass a stale count check.
	ErrMaxAttemptsExceeded = errors.New("max attempts exceeded")
)
