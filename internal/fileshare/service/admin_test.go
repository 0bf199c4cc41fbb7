package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/service"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newAdmin(t *testing.T, f *fixture) *service.AdminService {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/media", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/srv/readme.txt", []byte("hello"), 0o644))

	return &service.AdminService{
		Store:         f.Store,
		FS:            fs,
		Credentials:   f.Credentials,
		Sessions:      f.Sessions,
		Limiter:       f.Limiter,
		Access:        f.Access,
		Notifications: service.NewNotificationLog(5),
	}
}

func TestAdmin_UserLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := newAdmin(t, f)

	require.NoError(t, f.Credentials.Register(ctx, "bob", "secret1"))
	bob, err := f.Store.Users().GetUserByUsername(ctx, "bob")
	require.NoError(t, err)

	d, err := a.Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, d.Pending, 1)
	require.Empty(t, d.Approved)

	msg, err := a.Approve(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, "User bob approved", msg)

	token, err := f.Sessions.Login(ctx, "bob", "secret1")
	require.NoError(t, err)

	msg, err = a.Suspend(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, "User bob suspended", msg)
	_, ok := f.Sessions.Resolve(token, "10.0.0.1", "ua")
	require.False(t, ok)

	_, err = a.Approve(ctx, bob.ID)
	require.NoError(t, err)
	msg, err = a.ResetPassword(ctx, bob.ID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(msg, "Password reset for bob. New password: "))
	password := strings.TrimPrefix(msg, "Password reset for bob. New password: ")
	_, err = f.Credentials.Verify(ctx, "bob", password)
	require.NoError(t, err)

	msg, err = a.DeleteUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, "User bob deleted", msg)

	msg, err = a.DeleteUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, "Cannot delete: user not found", msg)

	d, err = a.Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, d.Notifications, 5)
	require.Equal(t, "Cannot delete: user not found", d.Notifications[0].Message)
}

func TestAdmin_ProtectsAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := newAdmin(t, f)

	_, err := f.Credentials.CreateAdminIfAbsent(ctx)
	require.NoError(t, err)
	admin, err := f.Store.Users().GetUserByUsername(ctx, domain.AdminUsername)
	require.NoError(t, err)

	msg, err := a.DeleteUser(ctx, admin.ID)
	require.NoError(t, err)
	require.Equal(t, "Cannot delete: admin account is protected", msg)

	msg, err = a.ResetPassword(ctx, admin.ID)
	require.NoError(t, err)
	require.Equal(t, "Cannot reset password: admin account is protected", msg)
}

func TestAdmin_SharePath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := newAdmin(t, f)

	tests := []struct {
		name string
		path string
		kind string
		want string
	}{
		{"detect folder", "/srv/media", "", "Folder shared: /srv/media"},
		{"detect file", "/srv/readme.txt", "", "File shared: /srv/readme.txt"},
		{"duplicate", "/srv/media/", "", "/srv/media already shared"},
		{"missing without kind", "/srv/gone", "", "Path not found: /srv/gone"},
		{"missing with kind", "/srv/later.mkv", "file", "File shared: /srv/later.mkv"},
		{"bad kind", "/srv/x", "link", `Unknown share type "link"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := a.SharePath(ctx, tt.path, tt.kind)
			require.NoError(t, err)
			require.Equal(t, tt.want, msg)
		})
	}

	require.True(t, f.Access.IsAccessible(ctx, "/srv/media/a.mp4", "alice"), "share invalidates the cache")
	require.True(t, f.Access.IsAccessible(ctx, "/srv/later.mkv", "alice"))
	require.False(t, f.Access.IsAccessible(ctx, "/srv/gone", "alice"))

	paths, err := a.SharedPaths(ctx)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	msg, err := a.UnsharePath(ctx, "/srv/media")
	require.NoError(t, err)
	require.Equal(t, "Stopped sharing: /srv/media", msg)
	require.False(t, f.Access.IsAccessible(ctx, "/srv/media/a.mp4", "alice"))

	msg, err = a.UnsharePath(ctx, "/srv/media")
	require.NoError(t, err)
	require.Equal(t, "/srv/media was not shared", msg)
}

func TestAdmin_RateLimits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := newAdmin(t, f)

	for i := range 3 {
		for range 5 {
			f.Limiter.RecordFailure(fmt.Sprintf("10.0.0.%d", i))
		}
	}
	require.Len(t, a.RateLimits(), 3)

	require.Equal(t, "Rate limit cleared for 10.0.0.0", a.ClearRateLimit(ctx, "10.0.0.0"))
	require.Equal(t, "No rate limit recorded for 10.0.0.0", a.ClearRateLimit(ctx, "10.0.0.0"))
	require.Equal(t, "All rate limits cleared (2 IPs)", a.ClearAllRateLimits(ctx))
	require.Empty(t, a.RateLimits())
}

func TestAdmin_ActiveUsersHidesAdmin(t *testing.T) {
	f := newFixture(t)
	a := newAdmin(t, f)

	adminTok, _ := f.Sessions.Issue(domain.AdminUsername)
	userTok, _ := f.Sessions.Issue("carol")
	f.Sessions.Resolve(adminTok, "10.0.0.1", "ua")
	f.Sessions.Resolve(userTok, "10.0.0.2", "ua")

	active := a.ActiveUsers()
	require.Len(t, active, 1)
	require.Equal(t, "carol", active[0].Username)
}

func TestNotificationLog(t *testing.T) {
	l := service.NewNotificationLog(5)
	for i := range 60 {
		l.Add(fmt.Sprintf("n%d", i))
	}

	require.Equal(t, 50, l.Len())
	recent := l.Recent()
	require.Len(t, recent, 5)
	require.Equal(t, "n59", recent[0].Message)
	require.Equal(t, "n55", recent[4].Message)
}
