package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/fileshare/pkg/sharesdk"
)

// Status is the machine readable form of the dashboard, reported by the
// status API. Uptime is measured from since.
func (s *AdminService) Status(ctx context.Context, version string, since time.Time) (sharesdk.StatusResponse, error) {
	d, err := s.Dashboard(ctx)
	if err != nil {
		return sharesdk.StatusResponse{}, err
	}

	notices := make([]string, 0, len(d.Notifications))
	for _, n := range d.Notifications {
		notices = append(notices, n.Message)
	}

	return sharesdk.StatusResponse{
		Version: version,
		Uptime:  time.Since(since).Round(time.Second).String(),
		Users: sharesdk.UserCounts{
			Total:    d.Stats.TotalUsers,
			Approved: d.Stats.ApprovedUsers,
			Pending:  d.Stats.PendingUsers,
		},
		ActiveUsers:   d.Stats.ActiveUsers,
		Sessions:      d.Stats.Sessions,
		SharedPaths:   d.Stats.SharedPaths,
		BlockedIPs:    d.Stats.BlockedIPs,
		Notifications: notices,
	}, nil
}
