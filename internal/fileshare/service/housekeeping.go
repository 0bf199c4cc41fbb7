package service

import (
	"log/slog"
	"time"
)

// HousekeepingService periodically prunes in-memory state. Request
// handling sweeps on its own; this only bounds memory on an idle server.
type HousekeepingService struct {
	Sessions *SessionManager
	Limiter  *LoginLimiter
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService defaults a non-positive interval to ten minutes.
func NewHousekeepingService(sessions *SessionManager, limiter *LoginLimiter, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &HousekeepingService{
		Sessions: sessions,
		Limiter:  limiter,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the worker. Call Stop to end it.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until the worker has exited.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass.
func (s *HousekeepingService) Cleanup() {
	before := s.Sessions.SessionCount()
	s.Sessions.Sweep()
	pruned := s.Limiter.Prune()

	s.Logger.Debug("housekeeping pass completed",
		"expired_sessions", before-s.Sessions.SessionCount(),
		"pruned_rate_limits", pruned,
	)
}
