package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrUnavailable marks transient driver failures (busy or locked database,
	// exceeded query deadline). Callers may retry.
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is the root data access interface. Sub-repositories are exposed as
// methods so a transaction scoped Store can hand out the same repos without
// allowing a nested transaction.
type Store interface {
	Users() Users
	SharedPaths() SharedPaths

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST call Commit() or
	// Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id int64) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts u and returns the assigned row id. A taken username
	// yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	// UpdateCredentials replaces the password hash and salt.
	UpdateCredentials(ctx context.Context, id int64, hash, salt string) error

	SetApproved(ctx context.Context, id int64, approved bool) error

	// DeleteUser returns ErrNotFound when no row matched.
	DeleteUser(ctx context.Context, id int64) error

	// ListUsers orders approved users first, newest first within each group.
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type SharedPaths interface {
	// ListSharedPaths returns every grant ordered by path.
	ListSharedPaths(ctx context.Context) ([]domain.SharedPath, error)

	// CreateSharedPath yields ErrAlreadyExists when the path is already shared.
	CreateSharedPath(ctx context.Context, p domain.SharedPath) error

	// DeleteSharedPath returns ErrNotFound when the path was not shared.
	DeleteSharedPath(ctx context.Context, path string) error
}
