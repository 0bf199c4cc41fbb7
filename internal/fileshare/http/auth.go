package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/service"
	"github.com/aussiebroadwan/fileshare/pkg/httpx"
	"github.com/aussiebroadwan/fileshare/pkg/slogx"
)

const genericLoginError = "Invalid username or password"

// AuthHandler serves sign in, sign out and self registration.
type AuthHandler struct {
	Sessions    *service.SessionManager
	Credentials *service.CredentialService
	Limiter     *service.LoginLimiter
	Pages       *Pages

	// DetailedErrors shows why a login failed instead of the generic
	// message. It lets anyone probe which usernames exist.
	DetailedErrors bool
}

// HandleLoginPage renders the sign in form. A token in the query is revoked
// first, which makes /login?token=... a logout link.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if token := r.URL.Query().Get("token"); token != "" {
		h.Sessions.Revoke(token)
	}
	h.Pages.Login(w, http.StatusOK, "")
}

// HandleLogin checks the per IP lockout, verifies the credentials and
// redirects to the root listing with a fresh token.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	ip := httpx.ClientIPFromContext(ctx)

	if !h.Limiter.Allowed(ip) {
		secs := ceilSeconds(h.Limiter.Remaining(ip))
		log.Warn("login blocked", "ip", ip, "retry_after", secs)
		w.Header().Set("Retry-After", fmt.Sprint(secs))
		h.Pages.Login(w, http.StatusTooManyRequests,
			fmt.Sprintf("Too many failed attempts. Try again in %d seconds.", secs))
		return
	}

	if err := r.ParseForm(); err != nil {
		h.Pages.Login(w, http.StatusBadRequest, genericLoginError)
		return
	}
	username := r.PostFormValue("username")

	token, err := h.Sessions.Login(ctx, username, r.PostFormValue("password"))
	switch {
	case err == nil:
		h.Limiter.Clear(ip)
		log.Info("login succeeded", "username", username)
		http.Redirect(w, r, "/?token="+url.QueryEscape(token), http.StatusFound)

	case errors.Is(err, service.ErrAuthenticationFailure):
		n := h.Limiter.RecordFailure(ip)
		log.Warn("login failed", "username", username, "ip", ip, "attempts", n, "reason", err)
		h.Pages.Login(w, http.StatusOK, h.loginMessage(err))

	default:
		log.Error("login error", "error", err)
		h.Pages.Login(w, http.StatusServiceUnavailable, unavailableMessage)
	}
}

func (h *AuthHandler) loginMessage(err error) string {
	if !h.DetailedErrors {
		return genericLoginError
	}
	switch {
	case errors.Is(err, service.ErrPendingApproval):
		return "Account pending admin approval"
	case errors.Is(err, service.ErrUserNotFound):
		return "User not found"
	default:
		return "Invalid password"
	}
}

// HandleLogout revokes the token and returns to the sign in page.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token := r.URL.Query().Get("token"); token != "" {
		h.Sessions.Revoke(token)
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.Pages.Register(w, http.StatusOK, "")
}

// HandleRegister creates a pending account.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.Pages.Register(w, http.StatusBadRequest, "Invalid form submission")
		return
	}
	err := h.Credentials.Register(ctx, r.PostFormValue("username"), r.PostFormValue("password"))
	switch {
	case err == nil:
		h.Pages.messageHTML(w, http.StatusOK, "Account created",
			`<p>Your account is waiting for administrator approval.</p><p><a href="/login">Back to sign in</a></p>`)
	case errors.Is(err, service.ErrInvalidRegistration):
		h.Pages.Register(w, http.StatusOK, "Username must be at least 3 characters and password at least 6.")
	case errors.Is(err, service.ErrUsernameTaken):
		h.Pages.Register(w, http.StatusOK, "Username already exists. Please choose another.")
	default:
		slogx.FromContext(ctx).Error("registration error", "error", err)
		h.Pages.Register(w, http.StatusServiceUnavailable, unavailableMessage)
	}
}
