package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/store"
	"github.com/aussiebroadwan/fileshare/pkg/cryptox"
	"github.com/google/uuid"
)

// CreateAdminIfAbsent ensures the admin account exists, approved, with a
// freshly generated password. The password rotates on every call and is
// returned in plaintext; it is never persisted.
func (s *CredentialService) CreateAdminIfAbsent(ctx context.Context) (string, error) {
	password := uuid.NewString()

	hash, salt, err := cryptox.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Users().GetUserByUsername(ctx, domain.AdminUsername)
		switch {
		case errors.Is(err, store.ErrNotFound):
			_, err = tx.Users().CreateUser(ctx, domain.User{
				Username:     domain.AdminUsername,
				PasswordHash: hash,
				Salt:         salt,
				IsApproved:   true,
			})
			return err
		case err != nil:
			return err
		}

		if err := tx.Users().UpdateCredentials(ctx, existing.ID, hash, salt); err != nil {
			return err
		}
		if !existing.IsApproved {
			return tx.Users().SetApproved(ctx, existing.ID, true)
		}
		return nil
	})
	if err != nil {
		return "", storageErr("bootstrap admin", err)
	}

	if s.Invalidator != nil {
		s.Invalidator.Invalidate(domain.AdminUsername)
	}
	return password, nil
}
