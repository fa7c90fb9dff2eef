package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
)

const videoPrefix = "videos"

// MediaGateway stores video media in object storage under
// videos/<video id>/<media kind>/<media id>-<file name>. Every upload gets a
// fresh media id, so a write never replaces an object another media points at.
type MediaGateway struct {
	storage repository.ObjectStorage
}

// NewMediaGateway creates a new MediaGateway instance.
func NewMediaGateway(storage repository.ObjectStorage) *MediaGateway {
	return &MediaGateway{storage: storage}
}

// StoreImage uploads an image resource for the given slot.
func (g *MediaGateway) StoreImage(ctx context.Context, videoID model.VideoID, kind model.MediaKind, resource model.Resource) (model.ImageMedia, error) {
	if !kind.IsImage() {
		return model.ImageMedia{}, fmt.Errorf("%w: %s is not an image", model.ErrMediaKindMismatch, kind)
	}

	media := model.NewImageMedia(resource.Checksum, resource.Name, "")
	location, err := g.store(ctx, videoID, kind, media.ID, resource)
	if err != nil {
		return model.ImageMedia{}, err
	}
	media.Location = location
	return media, nil
}

// StoreVideo uploads a raw video resource for the given slot.
func (g *MediaGateway) StoreVideo(ctx context.Context, videoID model.VideoID, kind model.MediaKind, resource model.Resource) (model.VideoMedia, error) {
	if !kind.IsValid() || kind.IsImage() {
		return model.VideoMedia{}, fmt.Errorf("%w: %s is not a video", model.ErrMediaKindMismatch, kind)
	}

	media := model.NewVideoMedia(resource.Checksum, resource.Name, "")
	location, err := g.store(ctx, videoID, kind, media.ID, resource)
	if err != nil {
		return model.VideoMedia{}, err
	}
	media.RawLocation = location
	return media, nil
}

// GetResource opens a stored media by its location.
func (g *MediaGateway) GetResource(ctx context.Context, location string) (io.ReadCloser, error) {
	rc, err := g.storage.Download(ctx, location)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", repository.ErrMediaNotFound, location)
		}
		return nil, err
	}
	return rc, nil
}

// DeleteResource removes a single stored media.
func (g *MediaGateway) DeleteResource(ctx context.Context, location string) error {
	return g.storage.Delete(ctx, location)
}

// ClearResources removes every object stored for a video. All deletions are
// attempted; their errors are joined.
func (g *MediaGateway) ClearResources(ctx context.Context, videoID model.VideoID) error {
	keys, err := g.storage.List(ctx, videoFolder(videoID)+"/")
	if err != nil {
		return err
	}

	var errs []error
	for _, key := range keys {
		if err := g.storage.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *MediaGateway) store(ctx context.Context, videoID model.VideoID, kind model.MediaKind, mediaID string, resource model.Resource) (string, error) {
	location := mediaKey(videoID, kind, mediaID, resource.Name)
	err := g.storage.Upload(ctx, location, bytes.NewReader(resource.Content), resource.Size(), resource.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to store %s: %w", strings.ToLower(kind.String()), err)
	}
	return location, nil
}

func videoFolder(videoID model.VideoID) string {
	return path.Join(videoPrefix, videoID.String())
}

// mediaKey builds the object key of a media file. The file name is only a
// suffix of the last segment and cannot move the key out of the video folder.
func mediaKey(videoID model.VideoID, kind model.MediaKind, mediaID, name string) string {
	return path.Join(videoFolder(videoID), strings.ToLower(kind.String()), mediaID+"-"+name)
}

// Compile-time verification that MediaGateway implements repository.MediaResourceGateway.
var _ repository.MediaResourceGateway = (*MediaGateway)(nil)
