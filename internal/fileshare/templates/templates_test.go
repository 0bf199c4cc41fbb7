package templates_test

import (
	"testing"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/templates"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestDefault_HasAllPages(t *testing.T) {
	set := templates.Default()
	for _, name := range templates.All {
		require.NotEmpty(t, set.Render(name, nil), name)
	}
}

func TestRender_Substitutes(t *testing.T) {
	set := templates.Default()

	page := string(set.Render(templates.Message, map[string]string{
		"title": "Account created",
		"body":  "<p>Waiting for approval.</p>",
	}))
	require.Contains(t, page, "<h1>Account created</h1>")
	require.Contains(t, page, "<p>Waiting for approval.</p>")
	require.NotContains(t, page, "{title}")

	page = string(set.Render(templates.Directory, map[string]string{"path": "/media"}))
	require.Contains(t, page, "{file_list}", "unknown placeholders stay")
}

func TestLoad_Override(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/tpl", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/tpl/login.html", []byte("custom {message}"), 0o644))

	set, err := templates.Load(fs, "/tpl")
	require.NoError(t, err)

	require.Equal(t, "custom hi", string(set.Render(templates.Login, map[string]string{"message": "hi"})))
	require.Contains(t, string(set.Render(templates.Register, nil)), "Create account")
}

func TestLoad_MissingDirFallsBack(t *testing.T) {
	set, err := templates.Load(afero.NewMemMapFs(), "/does/not/exist")
	require.NoError(t, err)
	require.Contains(t, string(set.Render(templates.Welcome, nil)), "FileShare")
}
