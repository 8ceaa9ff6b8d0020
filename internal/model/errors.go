package model

import "errors"

var (
	// Identity related errors
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrExternalIDTaken = errors.New("external id already registered")

	// Book related errors
	ErrBookNotFound    = errors.New("book not found")
	ErrDuplicateISBN   = errors.New("duplicate isbn")
	ErrVersionConflict = errors.New("version conflict")
)
