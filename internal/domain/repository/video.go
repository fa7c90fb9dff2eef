package repository

import (
	"context"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
)

// VideoRepository defines the interface for video persistence operations.
// Implementations should be provided by the infrastructure layer (e.g., PostgreSQL).
type VideoRepository interface {
	// Create persists a new video aggregate, media slots included.
	// Returns ErrDuplicateVideo if a video with the same ID exists.
	Create(ctx context.Context, video *model.Video) error

	// GetByID retrieves a video by its identifier.
	// Returns nil and ErrVideoNotFound if the video does not exist.
	GetByID(ctx context.Context, id model.VideoID) (*model.Video, error)

	// Update replaces the stored state of an existing video.
	// Returns ErrVideoNotFound if the video does not exist.
	Update(ctx context.Context, video *model.Video) error
}
