package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/service"
	"github.com/aussiebroadwan/fileshare/pkg/httpx"
	"github.com/aussiebroadwan/fileshare/pkg/sharesdk"
	"github.com/aussiebroadwan/fileshare/pkg/slogx"
)

const unavailableMessage = "Service temporarily unavailable, please try again"

// writeError maps a service error onto a status code and message page.
// Access denials carry no detail about what exists.
func (p *Pages) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	switch {
	case errors.Is(err, service.ErrAccessDenied):
		p.Message(w, http.StatusForbidden, "Access denied", "You do not have access to this path.")
	case errors.Is(err, service.ErrNotFound):
		p.Message(w, http.StatusNotFound, "Not found", "File or directory not found.")
	case errors.Is(err, service.ErrNotAFile):
		p.Message(w, http.StatusNotFound, "Not found", "Not a file.")
	case errors.Is(err, service.ErrEmptyFile):
		p.Message(w, http.StatusBadRequest, "Empty file", "Cannot view empty file (0 bytes)")
	case errors.Is(err, service.ErrStorage):
		log.Error("storage failure", "error", err)
		p.Message(w, http.StatusServiceUnavailable, "Unavailable", unavailableMessage)
	default:
		log.Error("request failed", "error", err)
		p.Message(w, http.StatusInternalServerError, "Error", "Internal server error")
	}
}

// writeAPIError is the JSON counterpart of writeError.
func writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	slogx.FromContext(r.Context()).Error("api request failed", "error", err)
	if errors.Is(err, service.ErrStorage) {
		sharesdk.ErrUnavailable.WriteError(w)
		return
	}
	sharesdk.ErrServerError.WriteError(w)
}

// requireSignIn renders 401 for anonymous callers and, with admin set, 403
// for everyone but the admin account.
func (p *Pages) requireSignIn(admin bool) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := httpx.UsernameFromContext(r.Context())
			if username == "" {
				p.messageHTML(w, http.StatusUnauthorized, "Access denied",
					`<p>Please <a href="/login">sign in</a> to continue.</p>`)
				return
			}
			if admin && username != domain.AdminUsername {
				p.Message(w, http.StatusForbidden, "Access denied", "Administrator access required.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
