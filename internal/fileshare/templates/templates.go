// Package templates holds the HTML pages the server fills by placeholder
// substitution. Built-in pages are embedded; any of them can be replaced by
// a same-named file in an override directory.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/spf13/afero"
)

//go:embed html/*.html
var builtin embed.FS

type Name string

const (
	Welcome   Name = "welcome"
	Login     Name = "login"
	Register  Name = "register"
	Directory Name = "directory"
	Admin     Name = "admin"
	Message   Name = "message"
)

// All lists every page the server renders.
var All = []Name{Welcome, Login, Register, Directory, Admin, Message}

// Set is an immutable collection of loaded pages.
type Set struct {
	pages map[Name]string
}

// Load reads the built-in pages and replaces each with dir/<name>.html from
// fsys when that file exists. An empty dir uses built-ins only.
func Load(fsys afero.Fs, dir string) (*Set, error) {
	s := &Set{pages: make(map[Name]string, len(All))}

	for _, name := range All {
		file := string(name) + ".html"

		raw, err := builtin.ReadFile(path.Join("html", file))
		if err != nil {
			return nil, fmt.Errorf("builtin template %s: %w", name, err)
		}
		s.pages[name] = string(raw)

		if dir == "" || fsys == nil {
			continue
		}

		override, err := afero.ReadFile(fsys, path.Join(dir, file))
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("template override %s: %w", name, err)
		default:
			s.pages[name] = string(override)
		}
	}
	return s, nil
}

// Default returns the built-in pages.
func Default() *Set {
	s, err := Load(nil, "")
	if err != nil {
		panic(err)
	}
	return s
}

// Render substitutes {key} for each value. Values are inserted verbatim;
// callers escape user data. Unknown placeholders are left in place.
func (s *Set) Render(name Name, values map[string]string) []byte {
	page := s.pages[name]
	if len(values) == 0 {
		return []byte(page)
	}

	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return []byte(strings.NewReplacer(pairs...).Replace(page))
}
