package domain

import "errors"

// Sentinel errors shared by repositories and services.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrAlreadyRegistered = errors.New("already registered")
)
