package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/service"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/store"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "users.db")))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	Store       store.Store
	Credentials *service.CredentialService
	Sessions    *service.SessionManager
	Limiter     *service.LoginLimiter
	Access      *service.AccessController
	Clock       *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := newStore(t)
	c := newClock()

	creds := &service.CredentialService{Store: s}
	sessions := service.NewSessionManager(creds, time.Hour, 5*time.Minute)
	sessions.Now = c.Now
	creds.Invalidator = sessions

	limiter := service.NewLoginLimiter(5, 2*time.Minute)
	limiter.Now = c.Now

	access := service.NewAccessController(s, 30*time.Second)
	access.Now = c.Now

	return &fixture{
		Store:       s,
		Credentials: creds,
		Sessions:    sessions,
		Limiter:     limiter,
		Access:      access,
		Clock:       c,
	}
}

// approvedUser registers and approves username, returning its id.
func (f *fixture) approvedUser(t *testing.T, username, password string) int64 {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.Credentials.Register(ctx, username, password))
	u, err := f.Store.Users().GetUserByUsername(ctx, username)
	require.NoError(t, err)
	_, err = f.Credentials.SetApproval(ctx, u.ID, true)
	require.NoError(t, err)
	return u.ID
}

func (f *fixture) share(t *testing.T, p string, isFile bool) {
	t.Helper()
	require.NoError(t, f.Store.SharedPaths().CreateSharedPath(context.Background(), domain.SharedPath{
		Path: p, SharedBy: domain.AdminUsername, IsFile: isFile,
	}))
	f.Access.Invalidate()
}
