package fileshare_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/app"
	"github.com/stretchr/testify/require"
)

/*
 * Common helpers for the file sharing end-to-end tests. Each test gets its
 * own server listening on a loopback port, with a fresh database and a
 * serving root seeded with a small tree.
 */

const (
	adminUsername = "admin"
	userPassword  = "hunter22"
)

type server struct {
	BaseURL       string
	AdminPassword string
	Root          string
	HTTP          *http.Client
}

// setupServer starts the application behind httptest.NewServer.
func setupServer(t *testing.T) *server {
	t.Helper()

	cfg := app.DefaultConfig()
	cfg.RootDir = t.TempDir()
	cfg.DatabaseFile = filepath.Join(t.TempDir(), "users.db")
	cfg.LogLevel = "error"

	seed(t, cfg.RootDir, map[string]string{
		"media/notes.txt":      "shared notes",
		"media/films/clip.mp4": strings.Repeat("0123456789", 100),
		"private/secret.txt":   "top secret",
	})

	application, err := app.New(cfg)
	require.NoError(t, err)

	ts := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = application.Shutdown()
	})

	return &server{
		BaseURL:       ts.URL,
		AdminPassword: application.AdminPassword(),
		Root:          cfg.RootDir,
		// Redirects carry the token; tests read them instead of following.
		HTTP: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func seed(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

// get issues a GET with an optional token and extra header pairs.
func (s *server) get(t *testing.T, path, token string, header ...string) (*http.Response, string) {
	t.Helper()
	target := s.BaseURL + path
	if token != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		target += sep + "token=" + url.QueryEscape(token)
	}

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, target, nil)
	require.NoError(t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	return s.do(t, req)
}

func (s *server) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, s.BaseURL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(t, req)
}

func (s *server) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := s.HTTP.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// login signs in and returns the session token taken from the redirect.
func (s *server) login(t *testing.T, username, password string) string {
	t.Helper()
	token, err := s.tryLogin(t, username, password)
	require.NoError(t, err)
	return token
}

func (s *server) tryLogin(t *testing.T, username, password string) (string, error) {
	t.Helper()
	resp, body := s.postForm(t, "/login", url.Values{"username": {username}, "password": {password}})
	if resp.StatusCode != http.StatusFound {
		return "", errors.New(body)
	}
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	return loc.Query().Get("token"), nil
}

func (s *server) register(t *testing.T, username, password string) {
	t.Helper()
	resp, body := s.postForm(t, "/register", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Account created")
}

// userActionURL finds the dashboard link for action on username, e.g.
// "/admin/approve/3".
func (s *server) userActionURL(t *testing.T, adminToken, action, username string) string {
	t.Helper()
	_, body := s.get(t, "/admin", adminToken)

	// Rows render the username cell before their action links.
	row := regexp.MustCompile(`(?s)` + regexp.QuoteMeta("<td>"+username+"</td>") + `.*?(/admin/` + action + `/\d+)`)
	m := row.FindStringSubmatch(body)
	require.NotNil(t, m, "no %s link for %s", action, username)
	return m[1]
}

// requireRedirect asserts a 302 to target, ignoring the token query.
func requireRedirect(t *testing.T, resp *http.Response, target string) {
	t.Helper()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, target, loc.Path)
}

func formOf(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}
