package service

import "errors"

// Error classes returned by the grading and stats services. Concrete errors
// wrap one of these; handlers map them to client statuses.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
	ErrStorage         = errors.New("storage failure")
)
