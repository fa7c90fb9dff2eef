package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/validation"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/metrics"
)

// validateMedia folds resource violations into n. Each resource reports at
// most its first violation.
func validateMedia(n *validation.Notification, media MediaInput) error {
	for _, kind := range model.MediaKinds {
		r := media.resource(kind)
		if r == nil {
			continue
		}
		if err := n.Validate(func() error {
			return model.ValidateResource(*r, validation.NewFailFast())
		}); err != nil {
			return err
		}
	}
	return nil
}

// storeMedia uploads the supplied resources in model.MediaKinds order and
// attaches them to a copy of video. The locations written before a failure are
// returned so the caller can compensate.
func (s *videoService) storeMedia(ctx context.Context, video *model.Video, media MediaInput) (*model.Video, []string, error) {
	var stored []string
	result := video

	for _, kind := range model.MediaKinds {
		r := media.resource(kind)
		if r == nil {
			continue
		}

		var (
			location string
			err      error
		)
		if kind.IsImage() {
			var m model.ImageMedia
			m, err = s.media.StoreImage(ctx, video.ID, kind, *r)
			if err == nil {
				location = m.Location
				result, err = result.WithImageMedia(kind, m)
			}
		} else {
			var m model.VideoMedia
			m, err = s.media.StoreVideo(ctx, video.ID, kind, *r)
			if err == nil {
				location = m.RawLocation
				result, err = result.WithVideoMedia(kind, m)
			}
		}

		if location != "" {
			stored = append(stored, location)
		}
		if err != nil {
			metrics.MediaUploadsTotal.WithLabelValues(kind.String(), metrics.ResultError).Inc()
			return nil, stored, fmt.Errorf("store %s: %w", kind, err)
		}
		metrics.MediaUploadsTotal.WithLabelValues(kind.String(), metrics.ResultSuccess).Inc()
	}

	return result, stored, nil
}

// clearResources removes everything stored under a new video. Failures are
// logged and never replace the error that triggered the cleanup.
func (s *videoService) clearResources(ctx context.Context, videoID model.VideoID) {
	ctx = context.WithoutCancel(ctx)
	if err := s.media.ClearResources(ctx, videoID); err != nil {
		metrics.CompensationsTotal.WithLabelValues("create", metrics.ResultError).Inc()
		slog.Error("failed to clear video resources",
			"video_id", videoID,
			"error", err,
		)
		return
	}
	metrics.CompensationsTotal.WithLabelValues("create", metrics.ResultSuccess).Inc()
}

// discardResources removes objects written by a failed write on an existing
// video. Locations still referenced by current are kept.
func (s *videoService) discardResources(ctx context.Context, op string, current *model.Video, stored []string) {
	if len(stored) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	keep := current.MediaLocations()
	result := metrics.ResultSuccess
	for _, location := range stored {
		if slices.Contains(keep, location) {
			continue
		}
		if err := s.media.DeleteResource(ctx, location); err != nil {
			result = metrics.ResultError
			slog.Error("failed to discard video resource",
				"video_id", current.ID,
				"location", location,
				"error", err,
			)
		}
	}
	metrics.CompensationsTotal.WithLabelValues(op, result).Inc()
}

// pruneReplaced removes objects referenced by before but no longer by after.
// It runs only after after was saved; failures leave an orphan and are logged.
func (s *videoService) pruneReplaced(ctx context.Context, before, after *model.Video) {
	ctx = context.WithoutCancel(ctx)
	keep := after.MediaLocations()
	for _, location := range before.MediaLocations() {
		if location == "" || slices.Contains(keep, location) {
			continue
		}
		if err := s.media.DeleteResource(ctx, location); err != nil {
			slog.Warn("failed to remove replaced media",
				"video_id", after.ID,
				"location", location,
				"error", err,
			)
		}
	}
}
