package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/fileshare/pkg/httpx"
	"github.com/aussiebroadwan/fileshare/pkg/sharesdk"
)

// StatusFunc reports the current server status.
type StatusFunc func(ctx context.Context) (sharesdk.StatusResponse, error)

// StatusHandler godoc
//
//	@Summary		Server status
//	@Description	Returns user counts, session counts, shared path counts and the most recent admin notices.
//	@Description	Requires the session token of the admin account.
//	@Tags			Status
//	@Produce		json
//	@Param			token	query		string					true	"Admin session token"
//	@Success		200		{object}	sharesdk.StatusResponse	"OK"
//	@Failure		401		{object}	sharesdk.ErrorResponse	"Missing or expired token"
//	@Failure		403		{object}	sharesdk.ErrorResponse	"Token does not belong to the admin"
//	@Failure		429		{object}	sharesdk.ErrorResponse	"Too many requests"
//	@Failure		503		{object}	sharesdk.ErrorResponse	"Database unavailable"
//	@Security		TokenQuery
//	@Router			/api/v1/status [get]
func StatusHandler(status StatusFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := status(r.Context())
		if err != nil {
			writeAPIError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}
