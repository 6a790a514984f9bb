package usecase

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDependencyUnavailable marks Record Store or queue failures; callers abort on it.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
