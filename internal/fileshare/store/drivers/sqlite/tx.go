package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/store"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/store/drivers/sqlite/gen"
)

type txStore struct {
	tx      *sql.Tx
	q       *gen.Queries
	timeout time.Duration
}

func newTx(tx *sql.Tx, timeout time.Duration) *txStore {
	return &txStore{
		tx:      tx,
		q:       gen.New(tx),
		timeout: timeout,
	}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open

// Ping is a no-op; the connection is held for the life of the transaction.
func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users             { return &usersRepo{q: t.q, timeout: t.timeout} }
func (t *txStore) SharedPaths() store.SharedPaths { return &sharedPathsRepo{q: t.q, timeout: t.timeout} }

func (t *txStore) ApplyMigrations() error { return nil } // applied before any tx starts
