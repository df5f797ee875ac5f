package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrAppNotFound indicates that app was not found in storage
	ErrAppNotFound = errors.New("app not found")

	// ErrAppAlreadyExists indicates that an app with this name or bucket already exists
	ErrAppAlreadyExists = errors.New("app already exists")
)
