package service

import (
	"sort"
	"sync"
	"time"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
)

const (
	DefaultMaxAttempts = 5
	DefaultBlockWindow = 2 * time.Minute
)

// LoginLimiter counts failed logins per client IP. An IP is blocked once it
// reaches MaxAttempts failures, until Window has passed since the last one.
type LoginLimiter struct {
	MaxAttempts int
	Window      time.Duration
	Now         func() time.Time

	mu       sync.Mutex
	attempts map[string]attempt
}

type attempt struct {
	count int
	last  time.Time
}

func NewLoginLimiter(maxAttempts int, window time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultBlockWindow
	}
	return &LoginLimiter{
		MaxAttempts: maxAttempts,
		Window:      window,
		Now:         time.Now,
		attempts:    make(map[string]attempt),
	}
}

func (l *LoginLimiter) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Allowed reports whether ip may attempt a login. A stale record is
// dropped.
func (l *LoginLimiter) Allowed(ip string) bool {
	return l.Remaining(ip) == 0
}

// Remaining is the time left on an active block, zero when not blocked.
func (l *LoginLimiter) Remaining(ip string) time.Duration {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.attempts[ip]
	if !ok {
		return 0
	}
	elapsed := now.Sub(a.last)
	if elapsed >= l.Window {
		delete(l.attempts, ip)
		return 0
	}
	if a.count < l.MaxAttempts {
		return 0
	}
	return l.Window - elapsed
}

// RecordFailure counts a failed attempt and returns the new count. A
// failure after the window has lapsed starts a fresh count.
func (l *LoginLimiter) RecordFailure(ip string) int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	a := l.attempts[ip]
	if !a.last.IsZero() && now.Sub(a.last) >= l.Window {
		a.count = 0
	}
	a.count++
	a.last = now
	l.attempts[ip] = a
	return a.count
}

// Clear forgets ip and reports whether it had a record.
func (l *LoginLimiter) Clear(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.attempts[ip]
	delete(l.attempts, ip)
	return ok
}

// ClearAll forgets every IP and returns how many there were.
func (l *LoginLimiter) ClearAll() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.attempts)
	clear(l.attempts)
	return n
}

// Prune drops records whose window has lapsed.
func (l *LoginLimiter) Prune() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for ip, a := range l.attempts {
		if now.Sub(a.last) >= l.Window {
			delete(l.attempts, ip)
			n++
		}
	}
	return n
}

// Snapshot lists live records, blocked first then by IP.
func (l *LoginLimiter) Snapshot() []domain.RateLimitEntry {
	now := l.now()

	l.mu.Lock()
	out := make([]domain.RateLimitEntry, 0, len(l.attempts))
	for ip, a := range l.attempts {
		elapsed := now.Sub(a.last)
		if elapsed >= l.Window {
			continue
		}
		e := domain.RateLimitEntry{IP: ip, Count: a.count, LastAttempt: a.last}
		if a.count >= l.MaxAttempts {
			e.Blocked = true
			e.Remaining = l.Window - elapsed
		}
		out = append(out, e)
	}
	l.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Blocked != out[j].Blocked {
			return out[i].Blocked
		}
		return out[i].IP < out[j].IP
	})
	return out
}
