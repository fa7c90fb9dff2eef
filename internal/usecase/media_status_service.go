package usecase

import (
	"context"
	"log/slog"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
	"github.com/hszk-dev/gocatalog/internal/domain/validation"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/cache"
)

// UpdateMediaStatusInput reports the encoding progress of one video media.
type UpdateMediaStatusInput struct {
	Status     model.MediaStatus
	VideoID    model.VideoID
	ResourceID string
	Folder     string
	Filename   string
}

func (in UpdateMediaStatusInput) validate() error {
	n := validation.NewFailFast()
	if in.VideoID == "" {
		if err := n.Append(validation.NewError("'videoId' should not be empty")); err != nil {
			return err
		}
	}
	if in.ResourceID == "" {
		if err := n.Append(validation.NewError("'resourceId' should not be empty")); err != nil {
			return err
		}
	}
	if in.Status == model.MediaStatusCompleted {
		if in.Folder == "" {
			if err := n.Append(validation.NewError("'folder' should not be empty")); err != nil {
				return err
			}
		}
		if in.Filename == "" {
			if err := n.Append(validation.NewError("'filename' should not be empty")); err != nil {
				return err
			}
		}
	}
	return nil
}

// MediaStatusService reconciles stored video media with encoder progress.
type MediaStatusService interface {
	// UpdateMediaStatus moves the matching trailer or video media to the
	// reported status. Results that match no media are ignored.
	UpdateMediaStatus(ctx context.Context, input UpdateMediaStatusInput) error
}

type mediaStatusService struct {
	repo  repository.VideoRepository
	cache cache.VideoCache
}

// NewMediaStatusService creates a new MediaStatusService instance.
// videoCache may be nil when the caller does not cache videos.
func NewMediaStatusService(repo repository.VideoRepository, videoCache cache.VideoCache) MediaStatusService {
	return &mediaStatusService{
		repo:  repo,
		cache: videoCache,
	}
}

// UpdateMediaStatus applies an encoder status to a video media.
// Applying the same status twice leaves the media unchanged.
func (s *mediaStatusService) UpdateMediaStatus(ctx context.Context, input UpdateMediaStatusInput) error {
	if err := input.validate(); err != nil {
		return err
	}

	video, err := s.repo.GetByID(ctx, input.VideoID)
	if err != nil {
		return err
	}

	kind, media := matchVideoMedia(video, input.ResourceID)
	if media == nil {
		slog.Info("encoder result matches no media",
			"video_id", input.VideoID,
			"resource_id", input.ResourceID,
		)
		return nil
	}

	var next model.VideoMedia
	switch input.Status {
	case model.MediaStatusProcessing:
		next = media.Processing()
	case model.MediaStatusCompleted:
		next = media.Completed(input.Folder + "/" + input.Filename)
	default:
		return nil
	}

	updated, err := video.WithVideoMedia(kind, next)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, video.ID); err != nil {
			slog.Warn("failed to invalidate cache on media status update",
				"video_id", video.ID,
				"error", err,
			)
		}
	}

	slog.Info("media status updated",
		"video_id", video.ID,
		"resource_id", input.ResourceID,
		"kind", kind,
		"status", next.Status,
	)
	return nil
}

// matchVideoMedia finds the video media with the given id, trailer first.
func matchVideoMedia(video *model.Video, resourceID string) (model.MediaKind, *model.VideoMedia) {
	for _, kind := range []model.MediaKind{model.MediaKindTrailer, model.MediaKindVideo} {
		if m := video.VideoSlot(kind); m != nil && m.ID == resourceID {
			return kind, m
		}
	}
	return "", nil
}
