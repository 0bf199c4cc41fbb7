package domain

import "time"

// Entry is one row of a directory listing.
type Entry struct {
	Name    string
	Path    string // virtual absolute path
	IsDir   bool
	Size    int64
	ModTime time.Time

	// Populated for the admin view only.
	Shared     bool
	Unreadable bool
}

// Listing is the result of listing a directory.
type Listing struct {
	Path    string
	Parent  string // "" at the root
	Entries []Entry
	// Synthesized is set when a non-admin at the root sees one row per
	// grant instead of the real directory contents.
	Synthesized bool
	AdminView   bool
	// Shared is set in the admin view when Path itself is a grant.
	Shared bool
}

// ServeMode selects how a file is delivered.
type ServeMode int

const (
	// ModeView renders inline with the detected content type.
	ModeView ServeMode = iota
	// ModeRaw renders inline as plain text.
	ModeRaw
	// ModeDownload sends an attachment.
	ModeDownload
)

func (m ServeMode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	case ModeDownload:
		return "download"
	default:
		return "view"
	}
}

// FileInfo describes a file resolved for delivery.
type FileInfo struct {
	Path        string // virtual absolute path
	Name        string
	Size        int64
	ContentType string
	Stream      bool // range capable media
	Parseable   bool // offer a raw link
	ModTime     time.Time
}
