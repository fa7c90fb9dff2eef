package repository

import (
	"context"
	"io"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
)

// ObjectStorage defines the interface for object storage operations.
// Implementations should be provided by the infrastructure layer (e.g., MinIO, S3).
type ObjectStorage interface {
	// Upload stores an object in the storage, replacing any object under key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download retrieves an object from the storage.
	// Caller is responsible for closing the returned ReadCloser.
	// Returns ErrObjectNotFound if the object does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object from the storage.
	Delete(ctx context.Context, key string) error

	// List returns the keys of every object under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// MediaResourceGateway stores the media of a video.
type MediaResourceGateway interface {
	// StoreImage uploads an image for the given slot and returns its descriptor.
	StoreImage(ctx context.Context, videoID model.VideoID, kind model.MediaKind, resource model.Resource) (model.ImageMedia, error)

	// StoreVideo uploads a video file for the given slot. The returned media is PENDING.
	StoreVideo(ctx context.Context, videoID model.VideoID, kind model.MediaKind, resource model.Resource) (model.VideoMedia, error)

	// GetResource opens a stored media by its location.
	GetResource(ctx context.Context, location string) (io.ReadCloser, error)

	// DeleteResource removes a single stored media.
	DeleteResource(ctx context.Context, location string) error

	// ClearResources removes everything stored for a video.
	// Calling it when nothing was stored is not an error.
	ClearResources(ctx context.Context, videoID model.VideoID) error
}
