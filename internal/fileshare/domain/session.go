package domain

import "time"

// Session is the server side record behind an opaque token.
type Session struct {
	Username  string
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now. A token is
// valid strictly before its expiry instant.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ActiveUser tracks recent activity of one token for the admin console.
type ActiveUser struct {
	Token            string
	Username         string
	LastActivity     time.Time
	IP               string
	ClientDescriptor string
}

// RateLimitEntry is the failed login state for one client IP.
type RateLimitEntry struct {
	IP          string
	Count       int
	LastAttempt time.Time
	Blocked     bool
	Remaining   time.Duration
}
