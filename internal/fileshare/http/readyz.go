package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/store"
	"github.com/aussiebroadwan/fileshare/pkg/httpx"
	"github.com/aussiebroadwan/fileshare/pkg/sharesdk"
	"github.com/spf13/afero"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Returns 200 when the database and the serving root are usable, 503 otherwise.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	sharesdk.HealthResponse	"OK"
//	@Failure		503	{object}	sharesdk.HealthResponse	"Service Unavailable"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	fsys afero.Fs,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &sharesdk.HealthChecks{
			Database:   "ok",
			Filesystem: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if _, err := fsys.Stat("/"); err != nil {
			checks.Filesystem = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := sharesdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
