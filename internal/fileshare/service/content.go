package service

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/spf13/afero"
)

const defaultContentType = "text/plain; charset=utf-8"

var contentTypes = map[string]string{
	"html": "text/html; charset=utf-8",
	"htm":  "text/html; charset=utf-8",
	"css":  "text/css; charset=utf-8",
	"json": "application/json; charset=utf-8",
	"xml":  "application/xml; charset=utf-8",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"avif": "image/avif",
	"webp": "image/webp",
	"pdf":  "application/pdf",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"ogg":  "audio/ogg",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
	"wmv":  "video/x-ms-wmv",
	"flv":  "video/x-flv",
	"mkv":  "video/x-matroska",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"flac": "audio/flac",
}

var (
	videoExts     = set("mp4", "webm", "ogg", "avi", "mov", "wmv", "flv", "mkv")
	audioExts     = set("mp3", "wav", "ogg", "flac")
	parseableExts = set("html", "htm", "css", "svg", "xml")
)

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

// Ext returns the lower-cased extension of name without the dot.
func Ext(name string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
}

// ContentType maps a file name to the type it is served with in view mode.
func ContentType(name string) string {
	if ct, ok := contentTypes[Ext(name)]; ok {
		return ct
	}
	return defaultContentType
}

// IsStreamable reports whether name is served with range support.
func IsStreamable(name string) bool {
	ext := Ext(name)
	_, v := videoExts[ext]
	_, a := audioExts[ext]
	return v || a
}

// IsParseable reports whether name gets a raw text link.
func IsParseable(name string) bool {
	_, ok := parseableExts[Ext(name)]
	return ok
}

// MediaKind is "video", "audio" or "" for name.
func MediaKind(name string) string {
	ext := Ext(name)
	if _, ok := videoExts[ext]; ok {
		return "video"
	}
	if _, ok := audioExts[ext]; ok {
		return "audio"
	}
	return ""
}

// ContentService lists directories and resolves files under FS, enforcing
// the access rules of Access. All paths are virtual absolute paths.
type ContentService struct {
	FS     afero.Fs
	Access *AccessController
}

// Stat checks access to p and returns its metadata.
func (s *ContentService) Stat(ctx context.Context, p, username string) (os.FileInfo, error) {
	p = CleanPath(p)
	if !s.Access.IsAccessible(ctx, p, username) {
		return nil, ErrAccessDenied
	}

	info, err := s.FS.Stat(p)
	if err != nil {
		return nil, fsErr(err)
	}
	return info, nil
}

// ListDirectory returns the visible entries of directory p, sorted by name.
func (s *ContentService) ListDirectory(ctx context.Context, p, username string) (domain.Listing, error) {
	p = CleanPath(p)
	admin := username == domain.AdminUsername

	info, err := s.Stat(ctx, p, username)
	if err != nil {
		return domain.Listing{}, err
	}
	if !info.IsDir() {
		return domain.Listing{}, ErrNotFound
	}

	infos, err := afero.ReadDir(s.FS, p)
	if err != nil {
		return domain.Listing{}, fsErr(err)
	}

	listing := domain.Listing{Path: p, AdminView: admin}
	if p != "/" {
		listing.Parent = path.Dir(p)
	}

	var shares map[string]bool
	if admin {
		shares = s.Access.SharedPaths(ctx)
		_, listing.Shared = shares[p]
	}

	for _, fi := range infos {
		child := path.Join(p, fi.Name())
		if !admin && !s.Access.IsAccessible(ctx, child, username) {
			continue
		}

		e := s.entry(child, fi)
		if admin {
			_, e.Shared = shares[child]
		}
		listing.Entries = append(listing.Entries, e)
	}

	if !admin && p == "/" && len(listing.Entries) == 0 {
		listing.Entries = s.synthesize(ctx)
		listing.Synthesized = len(listing.Entries) > 0
	}

	sort.SliceStable(listing.Entries, func(i, j int) bool {
		return listing.Entries[i].Name < listing.Entries[j].Name
	})
	return listing, nil
}

// entry builds a listing row, following symlinks and probing directories
// for readability.
func (s *ContentService) entry(p string, fi os.FileInfo) domain.Entry {
	if fi.Mode()&os.ModeSymlink != 0 {
		target, err := s.FS.Stat(p)
		if err != nil {
			return domain.Entry{Name: fi.Name(), Path: p, Unreadable: true}
		}
		fi = target
	}

	e := domain.Entry{
		Name:    fi.Name(),
		Path:    p,
		IsDir:   fi.IsDir(),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}
	if e.IsDir {
		e.Size = 0
		e.Unreadable = !s.readable(p)
	}
	return e
}

func (s *ContentService) readable(dir string) bool {
	f, err := s.FS.Open(dir)
	if err != nil {
		return false
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	return err == nil || errors.Is(err, io.EOF)
}

// synthesize lists one row per grant for a user who can see nothing at the
// root itself.
func (s *ContentService) synthesize(ctx context.Context) []domain.Entry {
	grants := s.Access.SharedPaths(ctx)

	out := make([]domain.Entry, 0, len(grants))
	for g, isFile := range grants {
		e := domain.Entry{Name: path.Base(g), Path: g, IsDir: !isFile}
		if fi, err := s.FS.Stat(g); err == nil {
			e.IsDir = fi.IsDir()
			e.ModTime = fi.ModTime()
			if !e.IsDir {
				e.Size = fi.Size()
			}
		}
		out = append(out, e)
	}
	return out
}

// Resolve checks that p is a readable file for username and describes how
// to deliver it in mode. View and raw refuse empty files.
func (s *ContentService) Resolve(ctx context.Context, p, username string, mode domain.ServeMode) (domain.FileInfo, error) {
	p = CleanPath(p)

	info, err := s.Stat(ctx, p, username)
	if err != nil {
		return domain.FileInfo{}, err
	}
	if info.IsDir() {
		return domain.FileInfo{}, ErrNotAFile
	}
	if info.Size() == 0 && mode != domain.ModeDownload {
		return domain.FileInfo{}, ErrEmptyFile
	}

	fi := domain.FileInfo{
		Path:      p,
		Name:      path.Base(p),
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		Parseable: IsParseable(p),
	}
	switch mode {
	case domain.ModeRaw:
		fi.ContentType = defaultContentType
	case domain.ModeDownload:
		fi.ContentType = "application/octet-stream"
	default:
		fi.ContentType = ContentType(p)
		fi.Stream = IsStreamable(p)
	}
	return fi, nil
}

// Open returns a reader for a file previously returned by Resolve.
func (s *ContentService) Open(fi domain.FileInfo) (afero.File, error) {
	f, err := s.FS.Open(fi.Path)
	if err != nil {
		return nil, fsErr(err)
	}
	return f, nil
}

func fsErr(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrAccessDenied
	default:
		return errors.Join(ErrNotFound, err)
	}
}
