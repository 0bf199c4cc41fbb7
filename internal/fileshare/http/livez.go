package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/fileshare/pkg/httpx"
	"github.com/aussiebroadwan/fileshare/pkg/sharesdk"
)

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Returns 200 when the process is running.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	sharesdk.HealthResponse	"OK"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := sharesdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
		}
		httpx.WriteJSON(w, http.StatusOK, response)
	}
}
