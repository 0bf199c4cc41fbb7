package sharesdk

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status ("ok" or "degraded")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the user database status
	Database string `json:"database"`

	// Filesystem indicates whether the serving root can be read
	Filesystem string `json:"filesystem"`
}

// ============================================================================
// Status Types
// ============================================================================

// StatusResponse is the server overview returned by /api/v1/status.
type StatusResponse struct {
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	Users UserCounts `json:"users"`

	// ActiveUsers counts non-admin clients seen within the idle timeout.
	ActiveUsers int `json:"active_users"`

	// Sessions counts live tokens, admin included.
	Sessions int `json:"sessions"`

	SharedPaths int `json:"shared_paths"`
	BlockedIPs  int `json:"blocked_ips"`

	// Notifications holds the most recent admin notices, newest first.
	Notifications []string `json:"notifications"`
}

// UserCounts splits the registered accounts by approval state.
type UserCounts struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
}

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}
