package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
	"github.com/hszk-dev/gocatalog/internal/domain/validation"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/metrics"
)

// EncoderListener turns encoder results into media status updates.
type EncoderListener struct {
	statuses MediaStatusService
}

// NewEncoderListener creates a new EncoderListener.
func NewEncoderListener(statuses MediaStatusService) *EncoderListener {
	return &EncoderListener{statuses: statuses}
}

// HandleEncoderResult processes a single encoder result.
//
// A returned error wrapping repository.ErrDiscardMessage means the result can
// never be applied and should not be redelivered. Other errors are transient.
func (l *EncoderListener) HandleEncoderResult(ctx context.Context, result repository.EncoderResult) error {
	switch result.Status {
	case repository.EncoderStatusError:
		attrs := []any{"error", result.Error}
		if result.Message != nil {
			attrs = append(attrs,
				"resource_id", result.Message.ResourceID,
				"file_path", result.Message.FilePath,
			)
		}
		slog.Error("encoder reported a failure", attrs...)
		metrics.EncoderResultsTotal.WithLabelValues(result.Status, metrics.EncoderOutcomeIgnored).Inc()
		return nil

	case repository.EncoderStatusCompleted, repository.EncoderStatusProcessing:
		if result.Video == nil {
			metrics.EncoderResultsTotal.WithLabelValues(result.Status, metrics.EncoderOutcomeDiscarded).Inc()
			return fmt.Errorf("%w: result without video metadata", repository.ErrDiscardMessage)
		}

	default:
		metrics.EncoderResultsTotal.WithLabelValues(result.Status, metrics.EncoderOutcomeDiscarded).Inc()
		return fmt.Errorf("%w: unknown status %q", repository.ErrDiscardMessage, result.Status)
	}

	err := l.statuses.UpdateMediaStatus(ctx, UpdateMediaStatusInput{
		Status:     model.MediaStatus(result.Status),
		VideoID:    model.VideoID(result.ID),
		ResourceID: result.Video.ResourceID,
		Folder:     result.Video.EncodedVideoFolder,
		Filename:   result.Video.FilePath,
	})
	switch {
	case err == nil:
		metrics.EncoderResultsTotal.WithLabelValues(result.Status, metrics.EncoderOutcomeApplied).Inc()
		return nil
	case errors.Is(err, repository.ErrVideoNotFound), errors.Is(err, validation.ErrValidation):
		metrics.EncoderResultsTotal.WithLabelValues(result.Status, metrics.EncoderOutcomeDiscarded).Inc()
		return fmt.Errorf("%w: %w", repository.ErrDiscardMessage, err)
	default:
		metrics.EncoderResultsTotal.WithLabelValues(result.Status, metrics.EncoderOutcomeFailed).Inc()
		return fmt.Errorf("update media status: %w", err)
	}
}
