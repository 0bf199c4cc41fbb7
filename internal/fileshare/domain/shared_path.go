package domain

import "time"

// SharedPath grants non-admin users read access. A folder grant covers the
// folder and everything beneath it; a file grant covers one file.
type SharedPath struct {
	ID        int64
	Path      string // virtual absolute path, e.g. "/media/films"
	SharedBy  string
	IsFile    bool
	CreatedAt time.Time
}

// Kind returns "file" or "folder".
func (p SharedPath) Kind() string {
	if p.IsFile {
		return "file"
	}
	return "folder"
}
