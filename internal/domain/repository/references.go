package repository

import (
	"context"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
)

// The reference repositories answer one question for the video aggregate:
// which of these IDs exist. Each call must be a single batched round trip.

type CategoryRepository interface {
	ExistsByIDs(ctx context.Context, ids []model.CategoryID) ([]model.CategoryID, error)
}

type GenreRepository interface {
	ExistsByIDs(ctx context.Context, ids []model.GenreID) ([]model.GenreID, error)
}

type CastMemberRepository interface {
	ExistsByIDs(ctx context.Context, ids []model.CastMemberID) ([]model.CastMemberID, error)
}
