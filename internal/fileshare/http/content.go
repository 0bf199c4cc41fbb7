package http

import (
	"net/http"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/service"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/templates"
	"github.com/aussiebroadwan/fileshare/pkg/httpx"
)

// ContentHandler serves listings and file bodies.
type ContentHandler struct {
	Content *service.ContentService
	Pages   *Pages
}

// HandleRoot shows the welcome page to anonymous callers and the root
// listing to everyone else.
func (h *ContentHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if httpx.UsernameFromContext(r.Context()) == "" {
		h.Pages.write(w, http.StatusOK, templates.Welcome, nil)
		return
	}
	h.list(w, r, "/")
}

// HandleBrowse lists a directory or serves a file inline.
func (h *ContentHandler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := "/" + r.PathValue("path")

	info, err := h.Content.Stat(ctx, p, httpx.UsernameFromContext(ctx))
	if err != nil {
		h.Pages.writeError(w, r, err)
		return
	}
	if info.IsDir() {
		h.list(w, r, p)
		return
	}
	h.serve(w, r, p, domain.ModeView)
}

func (h *ContentHandler) HandleRaw(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "/"+r.PathValue("path"), domain.ModeRaw)
}

func (h *ContentHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "/"+r.PathValue("path"), domain.ModeDownload)
}

func (h *ContentHandler) list(w http.ResponseWriter, r *http.Request, p string) {
	ctx := r.Context()
	username := httpx.UsernameFromContext(ctx)

	listing, err := h.Content.ListDirectory(ctx, p, username)
	if err != nil {
		h.Pages.writeError(w, r, err)
		return
	}
	h.Pages.Directory(w, listing, username, httpx.TokenFromContext(ctx))
}

func (h *ContentHandler) serve(w http.ResponseWriter, r *http.Request, p string, mode domain.ServeMode) {
	fi, err := h.Content.Resolve(r.Context(), p, httpx.UsernameFromContext(r.Context()), mode)
	if err != nil {
		h.Pages.writeError(w, r, err)
		return
	}

	f, err := h.Content.Open(fi)
	if err != nil {
		h.Pages.writeError(w, r, err)
		return
	}
	defer f.Close()

	switch {
	case mode == domain.ModeDownload:
		sendDownload(w, r, f, fi)
	case fi.Stream:
		sendStream(w, r, f, fi)
	default:
		sendWhole(w, r, f, fi)
	}
}
