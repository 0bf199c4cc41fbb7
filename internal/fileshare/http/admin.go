package http

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/service"
	"github.com/aussiebroadwan/fileshare/pkg/httpx"
)

// AdminHandler serves the admin console. Mutations answer with a redirect
// back to the page they were triggered from; their outcome shows up in the
// dashboard notices.
type AdminHandler struct {
	Admin *service.AdminService
	Pages *Pages
}

func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Admin.Dashboard(r.Context())
	if err != nil {
		h.Pages.writeError(w, r, err)
		return
	}
	h.Pages.Dashboard(w, d, httpx.TokenFromContext(r.Context()))
}

func (h *AdminHandler) HandleActiveUsers(w http.ResponseWriter, r *http.Request) {
	h.Pages.ActiveUsers(w, h.Admin.ActiveUsers(), httpx.TokenFromContext(r.Context()))
}

func (h *AdminHandler) HandleSharedPaths(w http.ResponseWriter, r *http.Request) {
	paths, err := h.Admin.SharedPaths(r.Context())
	if err != nil {
		h.Pages.writeError(w, r, err)
		return
	}
	h.Pages.SharedPaths(w, paths, httpx.TokenFromContext(r.Context()))
}

func (h *AdminHandler) HandleRateLimits(w http.ResponseWriter, r *http.Request) {
	h.Pages.RateLimits(w, h.Admin.RateLimits(), httpx.TokenFromContext(r.Context()))
}

// UserAction adapts an AdminService user mutation to a handler reading
// the {id} path value.
func (h *AdminHandler) UserAction(fn func(context.Context, int64) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			h.Pages.Message(w, http.StatusBadRequest, "Bad request", "Invalid user id.")
			return
		}
		if _, err := fn(r.Context(), id); err != nil {
			h.Pages.writeError(w, r, err)
			return
		}
		redirect(w, r, "/admin")
	}
}

// HandleSharePath shares {path}, or the "path" query value when the form
// on the shared paths page submitted it. "type" forces file or folder.
func (h *AdminHandler) HandleSharePath(w http.ResponseWriter, r *http.Request) {
	p := targetPath(r)
	if p != "" {
		if _, err := h.Admin.SharePath(r.Context(), p, r.URL.Query().Get("type")); err != nil {
			h.Pages.writeError(w, r, err)
			return
		}
	}
	redirect(w, r, "/admin/shared-paths")
}

func (h *AdminHandler) HandleUnsharePath(w http.ResponseWriter, r *http.Request) {
	p := targetPath(r)
	if p != "" {
		if _, err := h.Admin.UnsharePath(r.Context(), p); err != nil {
			h.Pages.writeError(w, r, err)
			return
		}
	}
	redirect(w, r, "/admin/shared-paths")
}

// HandleClearRateLimit clears {ip}, or every entry without one.
func (h *AdminHandler) HandleClearRateLimit(w http.ResponseWriter, r *http.Request) {
	if ip := r.PathValue("ip"); ip != "" {
		h.Admin.ClearRateLimit(r.Context(), ip)
	} else {
		h.Admin.ClearAllRateLimits(r.Context())
	}
	redirect(w, r, "/admin/rate-limits")
}

func targetPath(r *http.Request) string {
	if p := r.PathValue("path"); p != "" {
		return "/" + p
	}
	return r.URL.Query().Get("path")
}

// redirect sends the caller to target keeping their session token.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	token := httpx.TokenFromContext(r.Context())
	http.Redirect(w, r, target+"?token="+url.QueryEscape(token), http.StatusFound)
}
