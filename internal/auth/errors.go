package auth

import "errors"

var (
	// ErrDuplicateEmail is returned by Register when the normalized
	// email already belongs to an account.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong
	// password; callers must not be able to tell them apart.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNotFound is returned by id-based lookups when the account
	// does not exist.
	ErrNotFound = errors.New("account not found")
)
