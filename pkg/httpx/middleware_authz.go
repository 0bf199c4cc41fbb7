package httpx

import (
	"net/http"
)

// RequireUser rejects anonymous callers with 401 and callers whose username
// is not listed with 403. With no usernames any authenticated caller passes.
func RequireUser(usernames ...string) Middleware {
	want := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		want[u] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := UsernameFromContext(r.Context())
			if username == "" {
				WriteJSON(w, http.StatusUnauthorized, map[string]string{
					"error":             "unauthorized",
					"error_description": "a valid session token is required",
				})
				return
			}

			if len(want) > 0 {
				if _, ok := want[username]; !ok {
					WriteJSON(w, http.StatusForbidden, map[string]string{
						"error":             "access_denied",
						"error_description": "access denied",
					})
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
