package service_test

import (
	"context"
	"io"
	"path"
	"testing"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/service"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newContent(t *testing.T, f *fixture) *service.ContentService {
	t.Helper()

	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/media/films/intro.mp4": "0123456789",
		"/media/music/song.mp3":  "la la la",
		"/media/empty.txt":       "",
		"/docs/index.html":       "<h1>hi</h1>",
		"/docs/notes.md":         "# notes",
		"/private/secret.txt":    "nope",
	}
	for name, body := range files {
		require.NoError(t, fs.MkdirAll(path.Dir(name), 0o755))
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0o644))
	}
	require.NoError(t, fs.MkdirAll("/media/empty-dir", 0o755))

	return &service.ContentService{FS: fs, Access: f.Access}
}

func names(entries []domain.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestListDirectory_Admin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := newContent(t, f)
	f.share(t, "/media", false)

	listing, err := c.ListDirectory(ctx, "/", domain.AdminUsername)
	require.NoError(t, err)
	require.True(t, listing.AdminView)
	require.Empty(t, listing.Parent)
	require.Equal(t, []string{"docs", "media", "private"}, names(listing.Entries))

	for _, e := range listing.Entries {
		require.True(t, e.IsDir)
		require.Equal(t, e.Name == "media", e.Shared, e.Name)
	}

	listing, err = c.ListDirectory(ctx, "/media", domain.AdminUsername)
	require.NoError(t, err)
	require.Equal(t, "/", listing.Parent)
	require.Equal(t, []string{"empty-dir", "empty.txt", "films", "music"}, names(listing.Entries))
}

func TestListDirectory_FiltersForUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := newContent(t, f)
	f.share(t, "/media", false)
	f.share(t, "/docs/index.html", true)

	listing, err := c.ListDirectory(ctx, "/", "alice")
	require.NoError(t, err)
	require.False(t, listing.Synthesized)
	require.Equal(t, []string{"media"}, names(listing.Entries))

	listing, err = c.ListDirectory(ctx, "/media/films", "alice")
	require.NoError(t, err)
	require.Equal(t, "/media", listing.Parent)
	require.Len(t, listing.Entries, 1)
	require.Equal(t, "/media/films/intro.mp4", listing.Entries[0].Path)
	require.Equal(t, int64(10), listing.Entries[0].Size)

	_, err = c.ListDirectory(ctx, "/docs", "alice")
	require.ErrorIs(t, err, service.ErrAccessDenied)

	_, err = c.ListDirectory(ctx, "/private", "alice")
	require.ErrorIs(t, err, service.ErrAccessDenied)
}

func TestListDirectory_SynthesizesGrantsAtRoot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := newContent(t, f)
	f.share(t, "/media/music", false)
	f.share(t, "/docs/index.html", true)

	listing, err := c.ListDirectory(ctx, "/", "alice")
	require.NoError(t, err)
	require.True(t, listing.Synthesized)
	require.Equal(t, []string{"index.html", "music"}, names(listing.Entries))
	require.False(t, listing.Entries[0].IsDir)
	require.Equal(t, int64(len("<h1>hi</h1>")), listing.Entries[0].Size)
	require.True(t, listing.Entries[1].IsDir)
}

func TestListDirectory_NothingShared(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := newContent(t, f)

	listing, err := c.ListDirectory(ctx, "/", "alice")
	require.NoError(t, err)
	require.Empty(t, listing.Entries)
	require.False(t, listing.Synthesized)
}

func TestListDirectory_Missing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := newContent(t, f)

	_, err := c.ListDirectory(ctx, "/nope", domain.AdminUsername)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := newContent(t, f)
	f.share(t, "/media", false)
	f.share(t, "/docs", false)

	t.Run("stream media", func(t *testing.T) {
		fi, err := c.Resolve(ctx, "/media/films/intro.mp4", "alice", domain.ModeView)
		require.NoError(t, err)
		require.Equal(t, "video/mp4", fi.ContentType)
		require.True(t, fi.Stream)
		require.Equal(t, int64(10), fi.Size)
		require.Equal(t, "intro.mp4", fi.Name)
	})

	t.Run("parseable view and raw", func(t *testing.T) {
		fi, err := c.Resolve(ctx, "/docs/index.html", "alice", domain.ModeView)
		require.NoError(t, err)
		require.Equal(t, "text/html; charset=utf-8", fi.ContentType)
		require.True(t, fi.Parseable)
		require.False(t, fi.Stream)

		fi, err = c.Resolve(ctx, "/docs/index.html", "alice", domain.ModeRaw)
		require.NoError(t, err)
		require.Equal(t, "text/plain; charset=utf-8", fi.ContentType)
	})

	t.Run("unknown extension", func(t *testing.T) {
		fi, err := c.Resolve(ctx, "/docs/notes.md", "alice", domain.ModeView)
		require.NoError(t, err)
		require.Equal(t, "text/plain; charset=utf-8", fi.ContentType)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := c.Resolve(ctx, "/media/empty.txt", "alice", domain.ModeView)
		require.ErrorIs(t, err, service.ErrEmptyFile)
		_, err = c.Resolve(ctx, "/media/empty.txt", "alice", domain.ModeRaw)
		require.ErrorIs(t, err, service.ErrEmptyFile)

		fi, err := c.Resolve(ctx, "/media/empty.txt", "alice", domain.ModeDownload)
		require.NoError(t, err)
		require.Zero(t, fi.Size)
		require.Equal(t, "application/octet-stream", fi.ContentType)
	})

	t.Run("denied and missing", func(t *testing.T) {
		_, err := c.Resolve(ctx, "/private/secret.txt", "alice", domain.ModeDownload)
		require.ErrorIs(t, err, service.ErrAccessDenied)

		_, err = c.Resolve(ctx, "/media/ghost.mp4", "alice", domain.ModeView)
		require.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := c.Resolve(ctx, "/media/films", "alice", domain.ModeDownload)
		require.ErrorIs(t, err, service.ErrNotAFile)
	})

	t.Run("open", func(t *testing.T) {
		fi, err := c.Resolve(ctx, "/media/music/song.mp3", "alice", domain.ModeView)
		require.NoError(t, err)
		file, err := c.Open(fi)
		require.NoError(t, err)
		defer file.Close()

		body, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "la la la", string(body))
	})
}

func TestContentTypeTable(t *testing.T) {
	tests := []struct {
		name   string
		ct     string
		stream bool
		media  string
	}{
		{"a.MP4", "video/mp4", true, "video"},
		{"a.ogg", "audio/ogg", true, "video"},
		{"a.flac", "audio/flac", true, "audio"},
		{"a.png", "image/png", false, ""},
		{"a.pdf", "application/pdf", false, ""},
		{"noext", "text/plain; charset=utf-8", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.ct, service.ContentType(tt.name))
			require.Equal(t, tt.stream, service.IsStreamable(tt.name))
			require.Equal(t, tt.media, service.MediaKind(tt.name))
		})
	}
}
