package user

import "errors"

var (
	// store errors
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")

	// service errors
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrExternalUnavailable = errors.New("external service unavailable")
	ErrInternal            = errors.New("internal error")
	ErrEmptyPassword       = errors.New("password cannot be empty")
)
