package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/store/drivers/sqlite/gen"
)

type sharedPathsRepo struct {
	q       *gen.Queries
	timeout time.Duration
}

func (r *sharedPathsRepo) ListSharedPaths(ctx context.Context) ([]domain.SharedPath, error) {
	ctx, cancel := bound(ctx, r.timeout)
	defer cancel()

	rows, err := r.q.ListSharedPaths(ctx)
	if err != nil {
		return nil, mapErr(err)
	}

	paths := make([]domain.SharedPath, 0, len(rows))
	for _, row := range rows {
		paths = append(paths, mapSharedPath(row))
	}
	return paths, nil
}

func (r *sharedPathsRepo) CreateSharedPath(ctx context.Context, p domain.SharedPath) error {
	ctx, cancel := bound(ctx, r.timeout)
	defer cancel()

	return mapErr(r.q.CreateSharedPath(ctx, gen.CreateSharedPathParams{
		Path:     p.Path,
		SharedBy: p.SharedBy,
		IsFile:   nullBool(p.IsFile),
	}))
}

func (r *sharedPathsRepo) DeleteSharedPath(ctx context.Context, path string) error {
	ctx, cancel := bound(ctx, r.timeout)
	defer cancel()

	return affected(r.q.DeleteSharedPath(ctx, path))
}
