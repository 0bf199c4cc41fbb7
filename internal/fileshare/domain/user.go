package domain

import "time"

// AdminUsername is the reserved bootstrap account. It bypasses the shared
// path allow-list and can never be deleted or reset.
const AdminUsername = "admin"

type User struct {
	ID           int64
	Username     string
	PasswordHash string // hex PBKDF2-HMAC-SHA256
	Salt         string // hex, used as raw bytes by the KDF
	IsApproved   bool
	CreatedAt    time.Time
}

// IsAdmin reports whether u is the bootstrap administrator.
func (u User) IsAdmin() bool { return u.Username == AdminUsername }

// Status is the console label for the account state.
func (u User) Status() string {
	if u.IsApproved {
		return "Approved"
	}
	return "Pending"
}
