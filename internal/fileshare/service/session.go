package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/pkg/cryptox"
)

const (
	DefaultTokenTTL    = time.Hour
	DefaultIdleTimeout = 5 * time.Minute

	maxClientDescriptor = 50
)

// Authenticator verifies a username and password pair.
type Authenticator interface {
	Verify(ctx context.Context, username, password string) (domain.User, error)
}

// SessionManager issues opaque tokens and tracks who is active. Tokens have
// an absolute lifetime; activity never extends them.
type SessionManager struct {
	Credentials Authenticator
	TTL         time.Duration
	IdleTimeout time.Duration
	Now         func() time.Time

	// Lock order is tokensMu then activeMu. An activity record is only
	// written while its token is held, so ending a session cannot race
	// with a request that resolved it.
	tokensMu sync.Mutex
	tokens   map[string]domain.Session

	activeMu sync.Mutex
	active   map[string]domain.ActiveUser
}

func NewSessionManager(creds Authenticator, ttl, idle time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &SessionManager{
		Credentials: creds,
		TTL:         ttl,
		IdleTimeout: idle,
		Now:         time.Now,
		tokens:      make(map[string]domain.Session),
		active:      make(map[string]domain.ActiveUser),
	}
}

func (m *SessionManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Login verifies the credentials and mints a token. It has no effect on
// the login limiter; the caller records failures.
func (m *SessionManager) Login(ctx context.Context, username, password string) (string, error) {
	if _, err := m.Credentials.Verify(ctx, username, password); err != nil {
		return "", err
	}
	return m.Issue(username)
}

// Issue mints a token for username without checking credentials.
func (m *SessionManager) Issue(username string) (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	m.tokensMu.Lock()
	m.tokens[token] = domain.Session{Username: username, ExpiresAt: m.now().Add(m.TTL)}
	m.tokensMu.Unlock()

	return token, nil
}

// Resolve maps a token to its username and records the activity. An
// expired token is deleted on this access.
func (m *SessionManager) Resolve(token, ip, clientDescriptor string) (string, bool) {
	if token == "" {
		return "", false
	}
	now := m.now()

	m.tokensMu.Lock()
	defer m.tokensMu.Unlock()

	sess, ok := m.tokens[token]
	if !ok {
		return "", false
	}
	if sess.Expired(now) {
		delete(m.tokens, token)
		m.dropActive(token)
		return "", false
	}

	m.activeMu.Lock()
	m.active[token] = domain.ActiveUser{
		Token:            token,
		Username:         sess.Username,
		LastActivity:     now,
		IP:               ip,
		ClientDescriptor: describeClient(clientDescriptor),
	}
	m.activeMu.Unlock()

	return sess.Username, true
}

// Revoke ends a single session.
func (m *SessionManager) Revoke(token string) {
	if token == "" {
		return
	}
	m.tokensMu.Lock()
	delete(m.tokens, token)
	m.dropActive(token)
	m.tokensMu.Unlock()
}

// Invalidate ends every session held by username and returns how many
// tokens were removed.
func (m *SessionManager) Invalidate(username string) int {
	var removed []string

	m.tokensMu.Lock()
	defer m.tokensMu.Unlock()

	for token, sess := range m.tokens {
		if sess.Username == username {
			delete(m.tokens, token)
			removed = append(removed, token)
		}
	}

	m.activeMu.Lock()
	for token, a := range m.active {
		if a.Username == username {
			delete(m.active, token)
		}
	}
	m.activeMu.Unlock()

	return len(removed)
}

// Sweep purges expired tokens and idle activity records.
func (m *SessionManager) Sweep() {
	now := m.now()
	expired := make(map[string]struct{})

	m.tokensMu.Lock()
	defer m.tokensMu.Unlock()

	for token, sess := range m.tokens {
		if sess.Expired(now) {
			delete(m.tokens, token)
			expired[token] = struct{}{}
		}
	}

	m.activeMu.Lock()
	for token, a := range m.active {
		_, gone := expired[token]
		if gone || now.Sub(a.LastActivity) > m.IdleTimeout {
			delete(m.active, token)
		}
	}
	m.activeMu.Unlock()
}

// ActiveUsers returns the activity records, most recent first.
func (m *SessionManager) ActiveUsers() []domain.ActiveUser {
	m.activeMu.Lock()
	out := make([]domain.ActiveUser, 0, len(m.active))
	for _, a := range m.active {
		out = append(out, a)
	}
	m.activeMu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out
}

// SessionCount is the number of issued, not yet purged tokens.
func (m *SessionManager) SessionCount() int {
	m.tokensMu.Lock()
	defer m.tokensMu.Unlock()
	return len(m.tokens)
}

// Clear drops every session. Used on shutdown.
func (m *SessionManager) Clear() {
	m.tokensMu.Lock()
	defer m.tokensMu.Unlock()

	clear(m.tokens)
	m.activeMu.Lock()
	clear(m.active)
	m.activeMu.Unlock()
}

// dropActive may be called with tokensMu held.
func (m *SessionManager) dropActive(token string) {
	m.activeMu.Lock()
	delete(m.active, token)
	m.activeMu.Unlock()
}

func describeClient(ua string) string {
	if ua == "" {
		return "Unknown"
	}
	if r := []rune(ua); len(r) > maxClientDescriptor {
		return string(r[:maxClientDescriptor])
	}
	return ua
}
