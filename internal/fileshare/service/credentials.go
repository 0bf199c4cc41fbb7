package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/store"
	"github.com/aussiebroadwan/fileshare/pkg/cryptox"
	"github.com/aussiebroadwan/fileshare/pkg/slogx"
)

const (
	MinUsernameLength   = 3
	MinPasswordLength   = 6
	ResetPasswordLength = 8
)

// SessionInvalidator drops every live session of a user.
type SessionInvalidator interface {
	Invalidate(username string) int
}

// CredentialService owns user accounts and password verification.
type CredentialService struct {
	Store store.Store
	// Invalidator is told whenever an account loses access. Optional.
	Invalidator SessionInvalidator
}

// Register creates an unapproved account.
func (s *CredentialService) Register(ctx context.Context, username, password string) error {
	if len(username) < MinUsernameLength || len(password) < MinPasswordLength {
		return ErrInvalidRegistration
	}
	if username == domain.AdminUsername {
		return ErrUsernameTaken
	}

	hash, salt, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.Store.Users().CreateUser(ctx, domain.User{
		Username:     username,
		PasswordHash: hash,
		Salt:         salt,
	})
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrUsernameTaken
	case err != nil:
		return storageErr("create user", err)
	}

	slogx.FromContext(ctx).Info("user registered", "username", username)
	return nil
}

// Verify checks a username and password pair. Unapproved accounts are
// rejected before the password is compared.
func (s *CredentialService) Verify(ctx context.Context, username, password string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.User{}, ErrUserNotFound
	case err != nil:
		return domain.User{}, storageErr("get user", err)
	}

	if !u.IsApproved {
		return domain.User{}, ErrPendingApproval
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash, u.Salt); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns a user by id.
func (s *CredentialService) Get(ctx context.Context, id int64) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.User{}, ErrNoSuchUser
	case err != nil:
		return domain.User{}, storageErr("get user", err)
	}
	return u, nil
}

// ListUsers returns approved users first, newest first within each group.
func (s *CredentialService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return nil, storageErr("list users", err)
	}
	return users, nil
}

// SetApproval flips the approval flag. Revoking approval ends the user's
// sessions. The admin account cannot be suspended.
func (s *CredentialService) SetApproval(ctx context.Context, id int64, approved bool) (domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if u.IsAdmin() && !approved {
		return u, ErrProtectedUser
	}

	if err := s.Store.Users().SetApproved(ctx, id, approved); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNoSuchUser
		}
		return domain.User{}, storageErr("set approval", err)
	}
	u.IsApproved = approved

	if !approved {
		s.invalidate(ctx, u.Username)
	}
	return u, nil
}

// Delete removes an account and ends its sessions. Deleting admin is
// refused.
func (s *CredentialService) Delete(ctx context.Context, id int64) (domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if u.IsAdmin() {
		return u, ErrProtectedUser
	}

	if err := s.Store.Users().DeleteUser(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNoSuchUser
		}
		return domain.User{}, storageErr("delete user", err)
	}

	s.invalidate(ctx, u.Username)
	return u, nil
}

// ResetPassword assigns a fresh random password with a new salt, ends the
// user's sessions and returns the plaintext once.
func (s *CredentialService) ResetPassword(ctx context.Context, id int64) (domain.User, string, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return domain.User{}, "", err
	}
	if u.IsAdmin() {
		return u, "", ErrProtectedUser
	}

	password, err := cryptox.GeneratePassword(ResetPasswordLength)
	if err != nil {
		return domain.User{}, "", err
	}
	hash, salt, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	if err := s.Store.Users().UpdateCredentials(ctx, id, hash, salt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, "", ErrNoSuchUser
		}
		return domain.User{}, "", storageErr("update credentials", err)
	}

	s.invalidate(ctx, u.Username)
	return u, password, nil
}

func (s *CredentialService) invalidate(ctx context.Context, username string) {
	if s.Invalidator == nil {
		return
	}
	n := s.Invalidator.Invalidate(username)
	slogx.FromContext(ctx).Debug("sessions invalidated", "username", username, "count", n)
}
