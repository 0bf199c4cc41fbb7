package httpx

import (
	"net/http"
	"runtime/debug"

	"github.com/aussiebroadwan/fileshare/pkg/slogx"
)

// Recover isolates a panicking handler: the panic is logged with its stack
// and the client receives a 500 if nothing has been written yet.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				slogx.FromContext(r.Context()).Error("panic serving request",
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
