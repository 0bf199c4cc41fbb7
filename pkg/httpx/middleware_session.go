package httpx

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/fileshare/pkg/cryptox"
	"github.com/aussiebroadwan/fileshare/pkg/slogx"
)

// SessionResolver maps a query-string token to a username.
type SessionResolver interface {
	// Sweep purges expired state before the token is looked at.
	Sweep()
	// Resolve returns the username owning token and refreshes activity
	// tracking for it.
	Resolve(token, ip, clientDescriptor string) (string, bool)
}

// SessionMiddleware resolves the `token` query parameter and stores the
// identity on the request context. Anonymous requests pass through
// untouched; handlers decide what an anonymous caller may see.
func SessionMiddleware(sessions SessionResolver, ipOf KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessions.Sweep()

			ip := ipOf(r)
			ctx := context.WithValue(r.Context(), CtxKeyClientIP, ip)

			if token := r.URL.Query().Get("token"); token != "" {
				if username, ok := sessions.Resolve(token, ip, r.UserAgent()); ok {
					ctx = WithSession(ctx, username, token)
					ctx = slogx.With(ctx, "user", username, "session", cryptox.TokenHint(token))
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
