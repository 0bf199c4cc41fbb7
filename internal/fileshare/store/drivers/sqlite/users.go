package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q       *gen.Queries
	timeout time.Duration
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	ctx, cancel := bound(ctx, r.timeout)
	defer cancel()

	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	ctx, cancel := bound(ctx, r.timeout)
	defer cancel()

	row, err := r.q.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	ctx, cancel := bound(ctx, r.timeout)
	defer cancel()

	id, err := r.q.CreateUser(ctx, gen.CreateUserParams{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Salt:         u.Salt,
		IsApproved:   nullBool(u.IsApproved),
	})
	if err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

func (r *usersRepo) UpdateCredentials(ctx context.Context, id int64, hash, salt string) error {
	ctx, cancel := bound(ctx, r.timeout)
	defer cancel()

	return affected(r.q.UpdateUserCredentials(ctx, gen.UpdateUserCredentialsParams{
		PasswordHash: hash,
		Salt:         salt,
		ID:           id,
	}))
}

func (r *usersRepo) SetApproved(ctx context.Context, id int64, approved bool) error {
	ctx, cancel := bound(ctx, r.timeout)
	defer cancel()

	return affected(r.q.SetUserApproved(ctx, gen.SetUserApprovedParams{
		IsApproved: nullBool(approved),
		ID:         id,
	}))
}

func (r *usersRepo) DeleteUser(ctx context.Context, id int64) error {
	ctx, cancel := bound(ctx, r.timeout)
	defer cancel()

	return affected(r.q.DeleteUser(ctx, id))
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := bound(ctx, r.timeout)
	defer cancel()

	rows, err := r.q.ListUsers(ctx)
	if err != nil {
		return nil, mapErr(err)
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, mapUser(row))
	}
	return users, nil
}
