package http

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/service"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/templates"
)

func (p *Pages) admin(w http.ResponseWriter, title, token, body string) {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(title))
	b.WriteString(adminNav(token))
	b.WriteString(body)
	p.write(w, http.StatusOK, templates.Admin, map[string]string{"user_list": b.String()})
}

func adminNav(token string) string {
	items := []struct{ href, label string }{
		{"/admin", "Dashboard"},
		{"/", "Files"},
		{"/admin/active-users", "Active users"},
		{"/admin/shared-paths", "Shared paths"},
		{"/admin/rate-limits", "Rate limits"},
		{"/logout", "Logout"},
	}
	var b strings.Builder
	b.WriteString(`<p class="nav">`)
	for i, it := range items {
		if i > 0 {
			b.WriteString(" &middot; ")
		}
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, link(it.href, token), it.label)
	}
	b.WriteString("</p>\n")
	return b.String()
}

// Dashboard renders the console overview: stats, recent notices and the
// pending and approved users with their actions.
func (p *Pages) Dashboard(w http.ResponseWriter, d service.Dashboard, token string) {
	var b strings.Builder

	s := d.Stats
	fmt.Fprintf(&b, `<div class="box">%d users (%d approved, %d pending) &middot; %d active &middot; %d sessions &middot; %d shared paths &middot; %d blocked IPs</div>`,
		s.TotalUsers, s.ApprovedUsers, s.PendingUsers, s.ActiveUsers, s.Sessions, s.SharedPaths, s.BlockedIPs)

	if len(d.Notifications) > 0 {
		b.WriteString("\n<h3>Recent activity</h3>\n<ul>")
		for _, n := range d.Notifications {
			fmt.Fprintf(&b, "<li>%s <span class=\"muted\">%s</span></li>",
				html.EscapeString(n.Message), n.At.Format(time.TimeOnly))
		}
		b.WriteString("</ul>\n")
	}

	b.WriteString("<h3>Pending approval</h3>\n")
	b.WriteString(userTable(d.Pending, token, func(u domain.User) string {
		return action("/admin/approve", u.ID, token, "ok", "Approve") +
			action("/admin/delete", u.ID, token, "bad", "Delete")
	}))

	b.WriteString("<h3>Approved users</h3>\n")
	b.WriteString(userTable(d.Approved, token, func(u domain.User) string {
		return action("/admin/reject", u.ID, token, "warn", "Suspend") +
			action("/admin/reset-password", u.ID, token, "info", "Reset password") +
			action("/admin/delete", u.ID, token, "bad", "Delete")
	}))

	p.admin(w, "Admin Panel", token, b.String())
}

func userTable(users []domain.User, token string, actions func(domain.User) string) string {
	var b strings.Builder
	rows := 0
	b.WriteString("<table><tr><th>User</th><th>Created</th><th>Status</th><th></th></tr>")
	for _, u := range users {
		if u.IsAdmin() {
			continue
		}
		rows++
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(u.Username), u.CreatedAt.Format(time.DateTime), u.Status(), actions(u))
	}
	b.WriteString("</table>\n")
	if rows == 0 {
		return `<div class="muted">No users</div>` + "\n"
	}
	return b.String()
}

func action(prefix string, id int64, token, class, label string) string {
	return fmt.Sprintf(`<a class="btn %s" href="%s">%s</a> `, class, link(fmt.Sprintf("%s/%d", prefix, id), token), label)
}

func (p *Pages) ActiveUsers(w http.ResponseWriter, users []domain.ActiveUser, token string) {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>Currently online (%d users)</h3>\n", len(users))
	if len(users) == 0 {
		b.WriteString(`<div class="muted">No users currently active</div>`)
	}

	now := time.Now()
	for _, a := range users {
		fmt.Fprintf(&b, `<div class="file"><strong>%s</strong><br><span class="muted">IP: %s &middot; Device: %s &middot; Last activity: %s</span></div>`,
			html.EscapeString(a.Username), html.EscapeString(a.IP),
			html.EscapeString(a.ClientDescriptor), ago(now, a.LastActivity))
	}
	p.admin(w, "Active Users", token, b.String())
}

func (p *Pages) SharedPaths(w http.ResponseWriter, paths []domain.SharedPath, token string) {
	var b strings.Builder
	fmt.Fprintf(&b, `<form method="get" action="/admin/share-path/">
<input type="hidden" name="token" value="%s">
<input type="text" name="path" placeholder="Path to share, e.g. /home/shared" required>
<select name="type"><option value="">Detect</option><option value="folder">Folder</option><option value="file">File</option></select>
<input type="submit" value="Share">
</form>
`, html.EscapeString(token))

	fmt.Fprintf(&b, "<h3>Currently shared (%d)</h3>\n", len(paths))
	if len(paths) == 0 {
		b.WriteString(`<div class="muted">Nothing is shared. Users cannot see any files until a path is shared.</div>`)
	}
	for _, sp := range paths {
		fmt.Fprintf(&b, `<div class="file"><strong>%s</strong> <span class="muted">%s, shared by %s</span> <a class="btn bad" href="%s">Remove</a></div>`,
			html.EscapeString(sp.Path), sp.Kind(), html.EscapeString(sp.SharedBy),
			link("/admin/unshare-path"+sp.Path, token))
	}
	p.admin(w, "Shared Paths", token, b.String())
}

func (p *Pages) RateLimits(w http.ResponseWriter, entries []domain.RateLimitEntry, token string) {
	var b strings.Builder
	blocked := 0
	for _, e := range entries {
		if e.Blocked {
			blocked++
		}
	}
	fmt.Fprintf(&b, `<div class="box">%d blocked IPs, %d IPs with failed attempts</div>`, blocked, len(entries)-blocked)
	fmt.Fprintf(&b, `<p><a class="btn bad" href="%s">Clear all</a></p>`, link("/admin/clear-rate-limit", token))

	if len(entries) == 0 {
		b.WriteString(`<div class="muted">No failed login attempts recorded</div>`)
	}
	now := time.Now()
	for _, e := range entries {
		clearURL := link("/admin/clear-rate-limit/"+e.IP, token)
		ip := html.EscapeString(e.IP)
		if e.Blocked {
			fmt.Fprintf(&b, `<div class="file"><strong>%s (BLOCKED)</strong> <span class="muted">%d failed attempts, blocked for %d more seconds</span> <a class="btn ok" href="%s">Clear block</a></div>`,
				ip, e.Count, ceilSeconds(e.Remaining), clearURL)
			continue
		}
		fmt.Fprintf(&b, `<div class="file"><strong>%s (WARNING)</strong> <span class="muted">%d failed attempts, last %s</span> <a class="btn info" href="%s">Clear</a></div>`,
			ip, e.Count, ago(now, e.LastAttempt), clearURL)
	}
	p.admin(w, "Rate Limits", token, b.String())
}

// ceilSeconds rounds d up to whole seconds.
func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
