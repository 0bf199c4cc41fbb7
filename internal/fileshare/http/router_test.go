package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/service"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/store"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/store/drivers/sqlite"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/templates"
	"github.com/aussiebroadwan/fileshare/pkg/sharesdk"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	Router        *Router
	Store         store.Store
	Credentials   *service.CredentialService
	Sessions      *service.SessionManager
	AdminPassword string
	Clip          []byte
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "users.db")))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	clip := make([]byte, 1000)
	for i := range clip {
		clip[i] = byte(i % 256)
	}

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/media", 0o755))
	require.NoError(t, fs.MkdirAll("/private", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/srv/media/clip.mp4", clip, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/srv/media/notes.txt", []byte("hello"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/srv/media/page.html", []byte("<p>hi</p>"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/srv/media/empty.txt", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/private/secret.txt", []byte("top secret"), 0o644))

	creds := &service.CredentialService{Store: st}
	sessions := service.NewSessionManager(creds, time.Hour, 5*time.Minute)
	creds.Invalidator = sessions
	limiter := service.NewLoginLimiter(5, 2*time.Minute)
	access := service.NewAccessController(st, 30*time.Second)

	password, err := creds.CreateAdminIfAbsent(ctx)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRouter("test", st, sessions, logger, false)
	r.FS = fs
	r.Pages = &Pages{Set: templates.Default()}
	r.Credentials = creds
	r.Limiter = limiter
	r.Content = &service.ContentService{FS: fs, Access: access}
	r.Admin = &service.AdminService{
		Store:         st,
		FS:            fs,
		Credentials:   creds,
		Sessions:      sessions,
		Limiter:       limiter,
		Access:        access,
		Notifications: service.NewNotificationLog(5),
	}
	r.ApplyRoutes()

	return &testEnv{
		Router:        r,
		Store:         st,
		Credentials:   creds,
		Sessions:      sessions,
		AdminPassword: password,
		Clip:          clip,
	}
}

func (e *testEnv) get(t *testing.T, target, token string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	if token != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + "token=" + url.QueryEscape(token)
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) post(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

// login signs in and returns the token from the redirect.
func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := e.post(t, "/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/", loc.Path)
	token := loc.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

func (e *testEnv) userID(t *testing.T, username string) int64 {
	t.Helper()
	u, err := e.Store.Users().GetUserByUsername(context.Background(), username)
	require.NoError(t, err)
	return u.ID
}

func TestRouter_Anonymous(t *testing.T) {
	e := newTestEnv(t)

	t.Run("welcome page", func(t *testing.T) {
		rec := e.get(t, "/", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `href="/login"`)
		require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("content requires a token", func(t *testing.T) {
		for _, p := range []string{"/srv/media", "/download/srv/media/notes.txt", "/raw/srv/media/page.html"} {
			require.Equal(t, http.StatusUnauthorized, e.get(t, p, "").Code, p)
		}
	})

	t.Run("unknown token is anonymous", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, e.get(t, "/srv", "not-a-token").Code)
	})

	t.Run("admin requires a token", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, e.get(t, "/admin", "").Code)
	})

	t.Run("favicon", func(t *testing.T) {
		require.Equal(t, http.StatusNotFound, e.get(t, "/favicon.ico", "").Code)
	})

	t.Run("health", func(t *testing.T) {
		rec := e.get(t, "/livez", "")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = e.get(t, "/readyz", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var health sharesdk.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
		require.Equal(t, "ok", health.Status)
		require.Equal(t, "ok", health.Checks.Database)
		require.Equal(t, "ok", health.Checks.Filesystem)
	})

	t.Run("pages", func(t *testing.T) {
		require.Contains(t, e.get(t, "/login", "").Body.String(), `action="/login"`)
		require.Contains(t, e.get(t, "/register", "").Body.String(), `action="/register"`)
	})
}

func TestRouter_AdminLogin(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "admin", e.AdminPassword)

	rec := e.get(t, "/admin", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Admin Panel")

	// The admin sees the whole tree with share controls.
	rec = e.get(t, "/", token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "private/")
	require.Contains(t, body, "srv/")
	require.Contains(t, body, "/admin/share-path/srv?token=")

	t.Run("wrong password", func(t *testing.T) {
		rec := e.post(t, "/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), genericLoginError)
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		rec := e.get(t, "/logout", token)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))
		require.Equal(t, http.StatusUnauthorized, e.get(t, "/admin", token).Code)
	})
}

func TestRouter_BobApprovalFlow(t *testing.T) {
	e := newTestEnv(t)
	adminToken := e.login(t, "admin", e.AdminPassword)

	rec := e.post(t, "/register", url.Values{"username": {"bob"}, "password": {"secret1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Account created")

	rec = e.post(t, "/register", url.Values{"username": {"bob"}, "password": {"secret1"}})
	require.Contains(t, rec.Body.String(), "Username already exists")

	// Pending accounts get the same message as a bad password.
	rec = e.post(t, "/login", url.Values{"username": {"bob"}, "password": {"secret1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), genericLoginError)

	bobID := e.userID(t, "bob")
	rec = e.get(t, "/admin/approve/"+itoa(bobID), adminToken)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/admin?token="+url.QueryEscape(adminToken), rec.Header().Get("Location"))

	bobToken := e.login(t, "bob", "secret1")

	// Nothing is shared yet.
	rec = e.get(t, "/", bobToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "media")
	require.Equal(t, http.StatusForbidden, e.get(t, "/private/secret.txt", bobToken).Code)
	require.Equal(t, http.StatusForbidden, e.get(t, "/admin", bobToken).Code)

	rec = e.get(t, "/admin/share-path/srv/media", adminToken)
	require.Equal(t, http.StatusFound, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/admin/shared-paths?token="))

	// The root shows one row per grant when nothing at the root is visible.
	rec = e.get(t, "/", bobToken)
	require.Contains(t, rec.Body.String(), `href="/srv/media?token=`)

	rec = e.get(t, "/srv/media", bobToken)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "clip.mp4")
	require.Contains(t, body, "notes.txt")
	require.Contains(t, body, "/raw/srv/media/page.html?token=")
	require.NotContains(t, body, "/admin/share-path")

	rec = e.get(t, "/srv/media/notes.txt", bobToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hello", rec.Body.String())

	require.Equal(t, http.StatusForbidden, e.get(t, "/private/secret.txt", bobToken).Code)

	// Deleting bob ends his session.
	rec = e.get(t, "/admin/delete/"+itoa(bobID), adminToken)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, http.StatusUnauthorized, e.get(t, "/srv/media", bobToken).Code)
}

func TestRouter_Content(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "admin", e.AdminPassword)

	t.Run("range on media", func(t *testing.T) {
		rec := e.get(t, "/srv/media/clip.mp4", token, "Range", "bytes=100-199")
		require.Equal(t, http.StatusPartialContent, rec.Code)
		require.Equal(t, "bytes 100-199/1000", rec.Header().Get("Content-Range"))
		require.Equal(t, "100", rec.Header().Get("Content-Length"))
		require.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
		require.Equal(t, e.Clip[100:200], rec.Body.Bytes())
	})

	t.Run("range start past end", func(t *testing.T) {
		rec := e.get(t, "/srv/media/clip.mp4", token, "Range", "bytes=5000-")
		require.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
		require.Equal(t, "bytes */1000", rec.Header().Get("Content-Range"))
	})

	t.Run("raw is plain text", func(t *testing.T) {
		rec := e.get(t, "/raw/srv/media/page.html", token)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		require.Equal(t, "<p>hi</p>", rec.Body.String())
	})

	t.Run("view uses the extension table", func(t *testing.T) {
		rec := e.get(t, "/srv/media/page.html", token)
		require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	})

	t.Run("download", func(t *testing.T) {
		rec := e.get(t, "/download/srv/media/notes.txt", token)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, `attachment; filename="notes.txt"`, rec.Header().Get("Content-Disposition"))
		require.Equal(t, "5", rec.Header().Get("Content-Length"))
	})

	t.Run("empty file", func(t *testing.T) {
		require.Equal(t, http.StatusBadRequest, e.get(t, "/srv/media/empty.txt", token).Code)
		require.Equal(t, http.StatusBadRequest, e.get(t, "/raw/srv/media/empty.txt", token).Code)

		rec := e.get(t, "/download/srv/media/empty.txt", token)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "0", rec.Header().Get("Content-Length"))
	})

	t.Run("missing", func(t *testing.T) {
		require.Equal(t, http.StatusNotFound, e.get(t, "/srv/nope.txt", token).Code)
	})

	t.Run("head has no body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodHead, "/srv/media/notes.txt?token="+url.QueryEscape(token), nil)
		rec := httptest.NewRecorder()
		e.Router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "5", rec.Header().Get("Content-Length"))
		require.Zero(t, rec.Body.Len())
	})
}

func TestRouter_LoginLockout(t *testing.T) {
	e := newTestEnv(t)
	bad := url.Values{"username": {"admin"}, "password": {"wrong"}}

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, e.post(t, "/login", bad).Code)
	}

	rec := e.post(t, "/login", url.Values{"username": {"admin"}, "password": {e.AdminPassword}})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Body.String(), "Try again in")
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	adminToken := func() string {
		token, err := e.Sessions.Issue("admin")
		require.NoError(t, err)
		return token
	}()

	rec = e.get(t, "/admin/rate-limits", adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "192.0.2.1 (BLOCKED)")

	rec = e.get(t, "/admin/clear-rate-limit/192.0.2.1", adminToken)
	require.Equal(t, http.StatusFound, rec.Code)

	e.login(t, "admin", e.AdminPassword)
}

func TestRouter_AdminPages(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "admin", e.AdminPassword)

	require.NoError(t, e.Credentials.Register(context.Background(), "carol", "secret1"))
	carolID := e.userID(t, "carol")

	t.Run("reset password shows the new password once", func(t *testing.T) {
		rec := e.get(t, "/admin/approve/"+itoa(carolID), token)
		require.Equal(t, http.StatusFound, rec.Code)

		rec = e.get(t, "/admin/reset-password/"+itoa(carolID), token)
		require.Equal(t, http.StatusFound, rec.Code)

		rec = e.get(t, "/admin", token)
		require.Contains(t, rec.Body.String(), "Password reset for carol. New password: ")
	})

	t.Run("admin account is protected", func(t *testing.T) {
		rec := e.get(t, "/admin/delete/"+itoa(e.userID(t, "admin")), token)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Contains(t, e.get(t, "/admin", token).Body.String(), "admin account is protected")
	})

	t.Run("bad id", func(t *testing.T) {
		require.Equal(t, http.StatusBadRequest, e.get(t, "/admin/approve/abc", token).Code)
	})

	t.Run("share form and unshare", func(t *testing.T) {
		rec := e.get(t, "/admin/share-path/?path="+url.QueryEscape("/private/secret.txt")+"&type=file", token)
		require.Equal(t, http.StatusFound, rec.Code)

		rec = e.get(t, "/admin/shared-paths", token)
		require.Contains(t, rec.Body.String(), "/private/secret.txt")
		require.Contains(t, rec.Body.String(), "file, shared by admin")

		rec = e.get(t, "/admin/unshare-path/private/secret.txt", token)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Contains(t, e.get(t, "/admin/shared-paths", token).Body.String(), "Nothing is shared")
	})

	t.Run("active users hides the admin", func(t *testing.T) {
		carolToken := e.login(t, "carol", mustResetPassword(t, e, carolID))
		require.Equal(t, http.StatusOK, e.get(t, "/", carolToken).Code)

		rec := e.get(t, "/admin/active-users", token)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Currently online (1 users)")
		require.Contains(t, rec.Body.String(), "<strong>carol</strong>")
	})

	t.Run("unknown admin page", func(t *testing.T) {
		require.Equal(t, http.StatusNotFound, e.get(t, "/admin/nope", token).Code)
	})
}

func TestRouter_StatusAPI(t *testing.T) {
	e := newTestEnv(t)
	adminToken := e.login(t, "admin", e.AdminPassword)

	rec := e.get(t, "/api/v1/status", adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var status sharesdk.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, "test", status.Version)
	require.Equal(t, 1, status.Users.Total)
	require.Equal(t, 1, status.Sessions)

	rec = e.get(t, "/api/v1/status", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	require.NoError(t, e.Credentials.Register(context.Background(), "dave", "secret1"))
	_, err := e.Credentials.SetApproval(context.Background(), e.userID(t, "dave"), true)
	require.NoError(t, err)
	daveToken := e.login(t, "dave", "secret1")
	require.Equal(t, http.StatusForbidden, e.get(t, "/api/v1/status", daveToken).Code)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func mustResetPassword(t *testing.T, e *testEnv, id int64) string {
	t.Helper()
	_, password, err := e.Credentials.ResetPassword(context.Background(), id)
	require.NoError(t, err)
	return password
}
