package usecase

import (
	"context"
	"io"
	"log/slog"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
	"github.com/hszk-dev/gocatalog/internal/domain/validation"
)

// VideoInput contains the editable fields shared by create and update.
type VideoInput struct {
	Title         string
	Description   string
	LaunchedAt    int
	Duration      float64
	Rating        model.Rating
	Opened        bool
	Published     bool
	CategoryIDs   []string
	GenreIDs      []string
	CastMemberIDs []string
}

func (in VideoInput) props() model.VideoProps {
	return model.VideoProps{
		Title:       in.Title,
		Description: in.Description,
		LaunchedAt:  in.LaunchedAt,
		Duration:    in.Duration,
		Rating:      in.Rating,
		Opened:      in.Opened,
		Published:   in.Published,
		Categories:  model.ParseIDs[model.CategoryID](in.CategoryIDs),
		Genres:      model.ParseIDs[model.GenreID](in.GenreIDs),
		CastMembers: model.ParseIDs[model.CastMemberID](in.CastMemberIDs),
	}
}

// MediaInput holds the optional raw files sent with a write.
type MediaInput struct {
	Banner        *model.Resource
	Thumbnail     *model.Resource
	ThumbnailHalf *model.Resource
	Trailer       *model.Resource
	VideoFile     *model.Resource
}

func (m MediaInput) resource(kind model.MediaKind) *model.Resource {
	switch kind {
	case model.MediaKindBanner:
		return m.Banner
	case model.MediaKindThumbnail:
		return m.Thumbnail
	case model.MediaKindThumbnailHalf:
		return m.ThumbnailHalf
	case model.MediaKindTrailer:
		return m.Trailer
	case model.MediaKindVideo:
		return m.VideoFile
	default:
		return nil
	}
}

// CreateVideoInput contains the input parameters for creating a video.
type CreateVideoInput struct {
	VideoInput
	Media MediaInput
}

// UpdateVideoInput contains the input parameters for updating a video.
type UpdateVideoInput struct {
	ID model.VideoID
	VideoInput
	Media MediaInput
}

// UploadMediaInput contains the input parameters for replacing a single media slot.
type UploadMediaInput struct {
	VideoID  model.VideoID
	Kind     model.MediaKind
	Resource model.Resource
}

// GetMediaInput identifies a stored media.
type GetMediaInput struct {
	VideoID model.VideoID
	Kind    model.MediaKind
}

// MediaContent is an opened media file. Caller must close Content.
type MediaContent struct {
	Name     string
	Checksum string
	Location string
	Content  io.ReadCloser
}

// VideoService defines the interface for video business logic operations.
type VideoService interface {
	// CreateVideo validates the input and its references, stores the supplied
	// media and persists the new video. Stored media are removed on failure.
	CreateVideo(ctx context.Context, input CreateVideoInput) (*model.Video, error)

	// UpdateVideo applies new field values and optionally replaces media.
	UpdateVideo(ctx context.Context, input UpdateVideoInput) (*model.Video, error)

	// UploadMedia replaces one media slot of an existing video.
	UploadMedia(ctx context.Context, input UploadMediaInput) (*model.Video, error)

	// GetMedia opens the raw file stored in a media slot.
	GetMedia(ctx context.Context, input GetMediaInput) (*MediaContent, error)

	// GetVideo retrieves video information by ID.
	GetVideo(ctx context.Context, videoID model.VideoID) (*model.Video, error)
}

type videoService struct {
	repo        repository.VideoRepository
	categories  repository.CategoryRepository
	genres      repository.GenreRepository
	castMembers repository.CastMemberRepository
	media       repository.MediaResourceGateway
	queue       repository.MessageQueue
}

// NewVideoService creates a new VideoService instance.
func NewVideoService(
	repo repository.VideoRepository,
	categories repository.CategoryRepository,
	genres repository.GenreRepository,
	castMembers repository.CastMemberRepository,
	media repository.MediaResourceGateway,
	queue repository.MessageQueue,
) VideoService {
	return &videoService{
		repo:        repo,
		categories:  categories,
		genres:      genres,
		castMembers: castMembers,
		media:       media,
		queue:       queue,
	}
}

// CreateVideo creates a video with its media.
//
// Field and reference violations are collected together; nothing is uploaded
// unless all checks pass. Upload or persistence failures clear everything
// stored under the new video's prefix before returning an *InternalError.
func (s *videoService) CreateVideo(ctx context.Context, input CreateVideoInput) (*model.Video, error) {
	props := input.props()
	n := validation.NewNotification()

	video, err := validation.ValidateValue(n, func() (*model.Video, error) {
		return model.NewVideo(props)
	})
	if err != nil {
		return nil, err
	}

	if err := s.validateReferences(ctx, n, props); err != nil {
		return nil, err
	}

	if err := validateMedia(n, input.Media); err != nil {
		return nil, err
	}

	if err := n.Failure("could not create aggregate video"); err != nil {
		return nil, err
	}

	created, _, err := s.storeMedia(ctx, video, input.Media)
	if err == nil {
		err = s.repo.Create(ctx, created)
	}
	if err != nil {
		s.clearResources(ctx, video.ID)
		return nil, &InternalError{Op: "create", VideoID: video.ID, Err: err}
	}

	s.publishEncodeRequests(ctx, nil, created)
	return created, nil
}

// UpdateVideo updates a video and any media supplied with it.
//
// On failure only the objects written by this call are removed, and only if
// the stored video does not already reference them. Objects of replaced media
// are removed once the new state is saved.
func (s *videoService) UpdateVideo(ctx context.Context, input UpdateVideoInput) (*model.Video, error) {
	current, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	props := input.props()
	n := validation.NewNotification()

	video, err := validation.ValidateValue(n, func() (*model.Video, error) {
		return current.Update(props)
	})
	if err != nil {
		return nil, err
	}

	if err := s.validateReferences(ctx, n, props); err != nil {
		return nil, err
	}

	if err := validateMedia(n, input.Media); err != nil {
		return nil, err
	}

	if err := n.Failure("could not update aggregate video"); err != nil {
		return nil, err
	}

	updated, stored, err := s.storeMedia(ctx, video, input.Media)
	if err == nil {
		err = s.repo.Update(ctx, updated)
	}
	if err != nil {
		s.discardResources(ctx, "update", current, stored)
		return nil, &InternalError{Op: "update", VideoID: current.ID, Err: err}
	}

	s.pruneReplaced(ctx, current, updated)

	s.publishEncodeRequests(ctx, current, updated)
	return updated, nil
}

// UploadMedia stores one media file and attaches it to an existing video.
func (s *videoService) UploadMedia(ctx context.Context, input UploadMediaInput) (*model.Video, error) {
	if !input.Kind.IsValid() {
		return nil, model.ErrInvalidMediaKind
	}
	if err := model.ValidateResource(input.Resource, validation.NewFailFast()); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, input.VideoID)
	if err != nil {
		return nil, err
	}

	var media MediaInput
	resource := input.Resource
	switch input.Kind {
	case model.MediaKindBanner:
		media.Banner = &resource
	case model.MediaKindThumbnail:
		media.Thumbnail = &resource
	case model.MediaKindThumbnailHalf:
		media.ThumbnailHalf = &resource
	case model.MediaKindTrailer:
		media.Trailer = &resource
	case model.MediaKindVideo:
		media.VideoFile = &resource
	}

	updated, stored, err := s.storeMedia(ctx, current, media)
	if err == nil {
		err = s.repo.Update(ctx, updated)
	}
	if err != nil {
		s.discardResources(ctx, "upload_media", current, stored)
		return nil, &InternalError{Op: "upload media", VideoID: current.ID, Err: err}
	}

	s.pruneReplaced(ctx, current, updated)

	s.publishEncodeRequests(ctx, current, updated)
	return updated, nil
}

// GetMedia opens the raw file of a media slot.
func (s *videoService) GetMedia(ctx context.Context, input GetMediaInput) (*MediaContent, error) {
	if !input.Kind.IsValid() {
		return nil, model.ErrInvalidMediaKind
	}

	video, err := s.repo.GetByID(ctx, input.VideoID)
	if err != nil {
		return nil, err
	}

	var content MediaContent
	if input.Kind.IsImage() {
		m := video.ImageSlot(input.Kind)
		if m == nil {
			return nil, repository.ErrMediaNotFound
		}
		content = MediaContent{Name: m.Name, Checksum: m.Checksum, Location: m.Location}
	} else {
		m := video.VideoSlot(input.Kind)
		if m == nil {
			return nil, repository.ErrMediaNotFound
		}
		content = MediaContent{Name: m.Name, Checksum: m.Checksum, Location: m.RawLocation}
	}

	rc, err := s.media.GetResource(ctx, content.Location)
	if err != nil {
		return nil, err
	}
	content.Content = rc
	return &content, nil
}

// GetVideo retrieves video information by ID.
func (s *videoService) GetVideo(ctx context.Context, videoID model.VideoID) (*model.Video, error) {
	return s.repo.GetByID(ctx, videoID)
}

// validateReferences runs every reference check and folds missing ids into n.
func (s *videoService) validateReferences(ctx context.Context, n *validation.Notification, props model.VideoProps) error {
	checks := []func() error{
		func() error {
			return checkReferences(ctx, aggregateCategories, props.Categories, s.categories.ExistsByIDs)
		},
		func() error {
			return checkReferences(ctx, aggregateGenres, props.Genres, s.genres.ExistsByIDs)
		},
		func() error {
			return checkReferences(ctx, aggregateCastMembers, props.CastMembers, s.castMembers.ExistsByIDs)
		},
	}
	for _, check := range checks {
		if err := n.Validate(check); err != nil {
			return err
		}
	}
	return nil
}

// publishEncodeRequests asks the encoder to process every video media that is
// new in after compared to before. Failures are logged: the media stays PENDING
// and can be re-sent by uploading it again.
func (s *videoService) publishEncodeRequests(ctx context.Context, before, after *model.Video) {
	for _, kind := range []model.MediaKind{model.MediaKindTrailer, model.MediaKindVideo} {
		m := after.VideoSlot(kind)
		if m == nil {
			continue
		}
		if before != nil {
			if prev := before.VideoSlot(kind); prev != nil && prev.ID == m.ID {
				continue
			}
		}

		req := repository.EncodeRequest{ResourceID: m.ID, FilePath: m.RawLocation}
		if err := s.queue.PublishEncodeRequest(ctx, req); err != nil {
			slog.Warn("failed to publish encode request",
				"video_id", after.ID,
				"resource_id", m.ID,
				"kind", kind,
				"error", err,
			)
		}
	}
}
