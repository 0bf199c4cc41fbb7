package http

import (
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/service"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/templates"
	"github.com/aussiebroadwan/fileshare/pkg/httpx"
)

// Pages renders the HTML templates. Every value placed into a template goes
// through html.EscapeString or escapePath first.
type Pages struct {
	Set *templates.Set
}

func (p *Pages) write(w http.ResponseWriter, code int, name templates.Name, values map[string]string) {
	httpx.WriteHTML(w, code, p.Set.Render(name, values))
}

// Message renders the generic message page. body is escaped.
func (p *Pages) Message(w http.ResponseWriter, code int, title, body string) {
	p.write(w, code, templates.Message, map[string]string{
		"title": html.EscapeString(title),
		"body":  "<p>" + html.EscapeString(body) + "</p>",
	})
}

// messageHTML renders the message page with a trusted body fragment.
func (p *Pages) messageHTML(w http.ResponseWriter, code int, title, body string) {
	p.write(w, code, templates.Message, map[string]string{
		"title": html.EscapeString(title),
		"body":  body,
	})
}

func (p *Pages) Login(w http.ResponseWriter, code int, msg string) {
	p.write(w, code, templates.Login, map[string]string{"message": notice(msg, "error")})
}

func (p *Pages) Register(w http.ResponseWriter, code int, msg string) {
	p.write(w, code, templates.Register, map[string]string{"message": notice(msg, "error")})
}

func notice(msg, class string) string {
	if msg == "" {
		return ""
	}
	return fmt.Sprintf(`<div class="%s">%s</div>`, class, html.EscapeString(msg))
}

// Directory renders a listing for username.
func (p *Pages) Directory(w http.ResponseWriter, l domain.Listing, username, token string) {
	var header strings.Builder
	header.WriteString(`<div style="display:flex;justify-content:space-between;margin-bottom:12px">`)
	if l.AdminView {
		fmt.Fprintf(&header, `<a class="btn bad" href="%s">Admin Panel</a>`, link("/admin", token))
	} else {
		header.WriteString("<span></span>")
	}
	fmt.Fprintf(&header, `<a href="%s">Logout (%s)</a></div>`, link("/logout", token), html.EscapeString(username))
	fmt.Fprintf(&header, "<strong>Files in: %s</strong>", html.EscapeString(l.Path))
	if l.AdminView && l.Path != "/" {
		header.WriteString(" ")
		header.WriteString(shareButton(l.Path, "folder", token, l.Shared))
	}

	parent := ""
	if l.Parent != "" {
		parent = fmt.Sprintf(`<div class="file dir"><a href="%s">..</a></div>`, link(l.Parent, token))
	}

	var list strings.Builder
	if len(l.Entries) == 0 {
		list.WriteString(`<div class="muted">Nothing is shared here yet.</div>`)
	}
	for _, e := range l.Entries {
		list.WriteString(entryRow(e, l.AdminView, token))
	}

	p.write(w, http.StatusOK, templates.Directory, map[string]string{
		"path":        header.String(),
		"parent_link": parent,
		"file_list":   list.String(),
	})
}

func entryRow(e domain.Entry, admin bool, token string) string {
	name := html.EscapeString(e.Name)

	if e.IsDir {
		if e.Unreadable {
			return fmt.Sprintf(`<div class="file dir disabled">%s/ (No access)</div>`, name)
		}
		row := fmt.Sprintf(`<div class="file dir"><a href="%s">%s/</a>`, link(e.Path, token), name)
		if admin {
			row += " " + shareButton(e.Path, "folder", token, e.Shared)
		}
		return row + "</div>"
	}

	var b strings.Builder
	if e.Size == 0 {
		fmt.Fprintf(&b, `<div class="file disabled">%s (0 bytes) - Empty file | <a href="%s">Download</a>`,
			name, link("/download"+e.Path, token))
	} else {
		fmt.Fprintf(&b, `<div class="file">%s (%s) - <a href="%s">View</a>`,
			name, formatSize(e.Size), link(e.Path, token))
		if service.IsParseable(e.Name) {
			fmt.Fprintf(&b, ` | <a href="%s">Raw</a>`, link("/raw"+e.Path, token))
		}
		fmt.Fprintf(&b, ` | <a href="%s">Download</a>`, link("/download"+e.Path, token))
	}
	if admin {
		b.WriteString(" " + shareButton(e.Path, "file", token, e.Shared))
	}
	b.WriteString("</div>")
	return b.String()
}

func shareButton(p, kind, token string, shared bool) string {
	if shared {
		return fmt.Sprintf(`<a class="btn warn" href="%s">Unshare</a>`, link("/admin/unshare-path"+p, token))
	}
	return fmt.Sprintf(`<a class="btn ok" href="%s&amp;type=%s">Share %s</a>`,
		link("/admin/share-path"+p, token), kind, kind)
}

// link builds an escaped href carrying the session token.
func link(p, token string) string {
	return html.EscapeString(escapePath(p) + "?token=" + url.QueryEscape(token))
}

// escapePath percent-encodes each segment of p.
func escapePath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}

// formatSize renders n with one decimal in the largest unit below 1024.
func formatSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}

func ago(now, t time.Time) string {
	return fmt.Sprintf("%d seconds ago", int(now.Sub(t).Seconds()))
}
