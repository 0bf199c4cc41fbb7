package service

import (
	"context"
	"maps"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/store"
	"github.com/aussiebroadwan/fileshare/pkg/slogx"
	"golang.org/x/sync/singleflight"
)

const DefaultSharedPathsTTL = 30 * time.Second

// AccessController decides which virtual paths a user may read, based on
// the shared path allow-list. The list is cached for TTL.
type AccessController struct {
	Store store.Store
	TTL   time.Duration
	Now   func() time.Time

	mu       sync.RWMutex
	cache    map[string]bool // path -> is file
	loadedAt time.Time
	valid    bool
	gen      uint64 // bumped by Invalidate

	group singleflight.Group
}

func NewAccessController(s store.Store, ttl time.Duration) *AccessController {
	if ttl <= 0 {
		ttl = DefaultSharedPathsTTL
	}
	return &AccessController{Store: s, TTL: ttl, Now: time.Now}
}

func (a *AccessController) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// IsAccessible reports whether username may read p.
func (a *AccessController) IsAccessible(ctx context.Context, p, username string) bool {
	if username == domain.AdminUsername {
		return true
	}
	p = CleanPath(p)
	if p == "/" {
		return true
	}

	grants := a.SharedPaths(ctx)
	if len(grants) == 0 {
		return false
	}
	if _, ok := grants[p]; ok {
		return true
	}

	for g, isFile := range grants {
		if isFile {
			continue
		}
		if g == "/" || strings.HasPrefix(p, g+"/") {
			return true
		}
	}
	return false
}

// SharedPaths returns a copy of the grant set keyed by path, refreshing it
// from the store once the cached copy is older than TTL. Concurrent
// refreshes share one query. A failed refresh denies everything and is
// not cached.
func (a *AccessController) SharedPaths(ctx context.Context) map[string]bool {
	a.mu.RLock()
	if a.valid && a.now().Sub(a.loadedAt) < a.TTL {
		out := maps.Clone(a.cache)
		a.mu.RUnlock()
		return out
	}
	gen := a.gen
	a.mu.RUnlock()

	// Keyed by generation so a load started before Invalidate is never
	// shared with callers that arrive after it.
	v, err, _ := a.group.Do("shared_paths:"+strconv.FormatUint(gen, 10), func() (any, error) {
		rows, err := a.Store.SharedPaths().ListSharedPaths(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		fresh := make(map[string]bool, len(rows))
		for _, r := range rows {
			fresh[CleanPath(r.Path)] = r.IsFile
		}

		a.mu.Lock()
		if a.gen == gen {
			a.cache = fresh
			a.loadedAt = a.now()
			a.valid = true
		}
		a.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to load shared paths", "error", err)
		return map[string]bool{}
	}
	return maps.Clone(v.(map[string]bool))
}

// Invalidate forces the next lookup to reload from the store.
func (a *AccessController) Invalidate() {
	a.mu.Lock()
	a.valid = false
	a.cache = nil
	a.gen++
	a.mu.Unlock()
}

// CleanPath normalises a virtual path to an absolute, slash separated
// form without a trailing slash.
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}
