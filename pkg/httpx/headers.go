package httpx

import "net/http"

// SecurityHeaders sets the browser hardening headers sent with every
// response. Handlers that stream media override Cache-Control afterwards.
func SecurityHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-XSS-Protection", "1; mode=block")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			NoCache(w)
			next.ServeHTTP(w, r)
		})
	}
}
