package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailure is the parent of every login rejection.
	ErrAuthenticationFailure = errors.New("authentication failed")
	ErrInvalidCredentials    = fmt.Errorf("%w: invalid password", ErrAuthenticationFailure)
	ErrPendingApproval       = fmt.Errorf("%w: account pending approval", ErrAuthenticationFailure)
	ErrUserNotFound          = fmt.Errorf("%w: user not found", ErrAuthenticationFailure)

	ErrRateLimited = errors.New("too many failed attempts")

	ErrInvalidRegistration = errors.New("username must be at least 3 characters and password at least 6")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrProtectedUser       = errors.New("the admin account cannot be modified this way")
	ErrNoSuchUser          = errors.New("user does not exist")

	ErrAccessDenied = errors.New("access denied")
	ErrNotFound     = errors.New("file or directory not found")
	ErrEmptyFile    = errors.New("cannot view empty file (0 bytes)")
	ErrNotAFile     = errors.New("path is a directory")

	// ErrStorage wraps any persistence failure the caller cannot act on.
	ErrStorage = errors.New("storage unavailable")
)

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
