package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/store"
	"github.com/aussiebroadwan/fileshare/pkg/slogx"
	"github.com/spf13/afero"
)

// AdminService implements the console actions. Every mutation appends a
// notice to Notifications; the returned string is that notice.
type AdminService struct {
	Store         store.Store
	FS            afero.Fs
	Credentials   *CredentialService
	Sessions      *SessionManager
	Limiter       *LoginLimiter
	Access        *AccessController
	Notifications *NotificationLog
}

type DashboardStats struct {
	TotalUsers    int
	ApprovedUsers int
	PendingUsers  int
	ActiveUsers   int
	Sessions      int
	SharedPaths   int
	BlockedIPs    int
}

type Dashboard struct {
	Approved      []domain.User
	Pending       []domain.User
	Stats         DashboardStats
	Notifications []Notification
}

// Dashboard gathers the console overview.
func (s *AdminService) Dashboard(ctx context.Context) (Dashboard, error) {
	users, err := s.Credentials.ListUsers(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	var d Dashboard
	for _, u := range users {
		if u.IsApproved {
			d.Approved = append(d.Approved, u)
		} else {
			d.Pending = append(d.Pending, u)
		}
	}

	blocked := 0
	for _, e := range s.Limiter.Snapshot() {
		if e.Blocked {
			blocked++
		}
	}

	d.Stats = DashboardStats{
		TotalUsers:    len(users),
		ApprovedUsers: len(d.Approved),
		PendingUsers:  len(d.Pending),
		ActiveUsers:   len(s.ActiveUsers()),
		Sessions:      s.Sessions.SessionCount(),
		SharedPaths:   len(s.Access.SharedPaths(ctx)),
		BlockedIPs:    blocked,
	}
	d.Notifications = s.Notifications.Recent()
	return d, nil
}

// ActiveUsers lists activity records excluding the admin's own.
func (s *AdminService) ActiveUsers() []domain.ActiveUser {
	all := s.Sessions.ActiveUsers()
	out := all[:0]
	for _, a := range all {
		if a.Username != domain.AdminUsername {
			out = append(out, a)
		}
	}
	return out
}

// SharedPaths lists every grant with its owner.
func (s *AdminService) SharedPaths(ctx context.Context) ([]domain.SharedPath, error) {
	paths, err := s.Store.SharedPaths().ListSharedPaths(ctx)
	if err != nil {
		return nil, storageErr("list shared paths", err)
	}
	return paths, nil
}

// RateLimits lists the limiter state.
func (s *AdminService) RateLimits() []domain.RateLimitEntry {
	return s.Limiter.Snapshot()
}

func (s *AdminService) Approve(ctx context.Context, id int64) (string, error) {
	u, err := s.Credentials.SetApproval(ctx, id, true)
	if err != nil {
		return s.fail(ctx, "approve", err)
	}
	return s.notify(ctx, fmt.Sprintf("User %s approved", u.Username)), nil
}

// Suspend revokes approval and ends the user's sessions.
func (s *AdminService) Suspend(ctx context.Context, id int64) (string, error) {
	u, err := s.Credentials.SetApproval(ctx, id, false)
	if err != nil {
		return s.fail(ctx, "suspend", err)
	}
	return s.notify(ctx, fmt.Sprintf("User %s suspended", u.Username)), nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id int64) (string, error) {
	u, err := s.Credentials.Delete(ctx, id)
	if err != nil {
		return s.fail(ctx, "delete", err)
	}
	return s.notify(ctx, fmt.Sprintf("User %s deleted", u.Username)), nil
}

// ResetPassword returns the notice, which carries the new password.
func (s *AdminService) ResetPassword(ctx context.Context, id int64) (string, error) {
	u, password, err := s.Credentials.ResetPassword(ctx, id)
	if err != nil {
		return s.fail(ctx, "reset password", err)
	}
	// The notice carries the password, so it is not logged.
	slogx.FromContext(ctx).Info("password reset", "username", u.Username)
	msg := fmt.Sprintf("Password reset for %s. New password: %s", u.Username, password)
	s.Notifications.Add(msg)
	return msg, nil
}

// SharePath grants access to p. kind is "", "file" or "folder"; with an
// empty kind the path must exist and its type is detected.
func (s *AdminService) SharePath(ctx context.Context, p, kind string) (string, error) {
	p = CleanPath(p)

	var isFile bool
	switch kind {
	case "file":
		isFile = true
	case "folder":
		isFile = false
	case "":
		info, err := s.FS.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return s.notify(ctx, fmt.Sprintf("Path not found: %s", p)), nil
			}
			return s.notify(ctx, fmt.Sprintf("Cannot access %s", p)), nil
		}
		isFile = !info.IsDir()
	default:
		return s.notify(ctx, fmt.Sprintf("Unknown share type %q", kind)), nil
	}

	err := s.Store.SharedPaths().CreateSharedPath(ctx, domain.SharedPath{
		Path:     p,
		SharedBy: domain.AdminUsername,
		IsFile:   isFile,
	})
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return s.notify(ctx, fmt.Sprintf("%s already shared", p)), nil
	case err != nil:
		return "", storageErr("share path", err)
	}

	s.Access.Invalidate()
	label := "Folder"
	if isFile {
		label = "File"
	}
	return s.notify(ctx, fmt.Sprintf("%s shared: %s", label, p)), nil
}

func (s *AdminService) UnsharePath(ctx context.Context, p string) (string, error) {
	p = CleanPath(p)

	err := s.Store.SharedPaths().DeleteSharedPath(ctx, p)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s.notify(ctx, fmt.Sprintf("%s was not shared", p)), nil
	case err != nil:
		return "", storageErr("unshare path", err)
	}

	s.Access.Invalidate()
	return s.notify(ctx, fmt.Sprintf("Stopped sharing: %s", p)), nil
}

func (s *AdminService) ClearRateLimit(ctx context.Context, ip string) string {
	if s.Limiter.Clear(ip) {
		return s.notify(ctx, fmt.Sprintf("Rate limit cleared for %s", ip))
	}
	return s.notify(ctx, fmt.Sprintf("No rate limit recorded for %s", ip))
}

func (s *AdminService) ClearAllRateLimits(ctx context.Context) string {
	n := s.Limiter.ClearAll()
	return s.notify(ctx, fmt.Sprintf("All rate limits cleared (%d IPs)", n))
}

func (s *AdminService) notify(ctx context.Context, msg string) string {
	s.Notifications.Add(msg)
	slogx.FromContext(ctx).Info("admin action", "notice", msg)
	return msg
}

// fail records user facing failures as notices and passes storage errors
// through.
func (s *AdminService) fail(ctx context.Context, action string, err error) (string, error) {
	switch {
	case errors.Is(err, ErrNoSuchUser):
		return s.notify(ctx, fmt.Sprintf("Cannot %s: user not found", action)), nil
	case errors.Is(err, ErrProtectedUser):
		return s.notify(ctx, fmt.Sprintf("Cannot %s: admin account is protected", action)), nil
	default:
		return "", err
	}
}
