package usecase

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
	"github.com/hszk-dev/gocatalog/internal/domain/validation"
)

type serviceDeps struct {
	repo        *mockVideoRepository
	categories  *mockReferenceRepository[model.CategoryID]
	genres      *mockReferenceRepository[model.GenreID]
	castMembers *mockReferenceRepository[model.CastMemberID]
	media       *mockMediaGateway
	queue       *mockMessageQueue
}

func newServiceDeps() *serviceDeps {
	return &serviceDeps{
		repo:        &mockVideoRepository{},
		categories:  &mockReferenceRepository[model.CategoryID]{},
		genres:      &mockReferenceRepository[model.GenreID]{},
		castMembers: &mockReferenceRepository[model.CastMemberID]{},
		media:       &mockMediaGateway{},
		queue:       &mockMessageQueue{},
	}
}

func (d *serviceDeps) service() VideoService {
	return NewVideoService(d.repo, d.categories, d.genres, d.castMembers, d.media, d.queue)
}

func validVideoInput() VideoInput {
	return VideoInput{
		Title:         "System Design",
		Description:   "A talk about distributed systems",
		LaunchedAt:    2022,
		Duration:      120.5,
		Rating:        model.RatingL,
		Opened:        true,
		CategoryIDs:   []string{"c1"},
		GenreIDs:      []string{"g1"},
		CastMemberIDs: []string{"m1"},
	}
}

func testResource(name string) *model.Resource {
	r := model.NewResource(name, "application/octet-stream", []byte("content of "+name))
	return &r
}

func allMedia() MediaInput {
	return MediaInput{
		Banner:        testResource("banner.png"),
		Thumbnail:     testResource("thumb.png"),
		ThumbnailHalf: testResource("thumb-half.png"),
		Trailer:       testResource("trailer.mp4"),
		VideoFile:     testResource("video.mp4"),
	}
}

func storedVideo(t *testing.T) *model.Video {
	t.Helper()
	v, err := model.NewVideo(validVideoInput().props())
	if err != nil {
		t.Fatalf("NewVideo failed: %v", err)
	}
	return v
}

func failureMessages(t *testing.T, err error) (string, []string) {
	t.Helper()
	var failure *validation.Failure
	if !errors.As(err, &failure) {
		t.Fatalf("error = %v, want *validation.Failure", err)
	}
	var msgs []string
	for _, e := range failure.Errors {
		msgs = append(msgs, e.Message)
	}
	return failure.Message, msgs
}

func TestVideoService_CreateVideo(t *testing.T) {
	d := newServiceDeps()
	svc := d.service()

	video, err := svc.CreateVideo(context.Background(), CreateVideoInput{
		VideoInput: validVideoInput(),
		Media:      allMedia(),
	})
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}

	wantOrder := []model.MediaKind{
		model.MediaKindBanner,
		model.MediaKindThumbnail,
		model.MediaKindThumbnailHalf,
		model.MediaKindTrailer,
		model.MediaKindVideo,
	}
	if !slices.Equal(d.media.stored, wantOrder) {
		t.Errorf("upload order = %v, want %v", d.media.stored, wantOrder)
	}

	if len(d.repo.created) != 1 || d.repo.created[0].ID != video.ID {
		t.Fatalf("expected the returned video to be persisted once")
	}
	if video.Banner == nil || video.Thumbnail == nil || video.ThumbnailHalf == nil {
		t.Error("expected every image slot to be populated")
	}
	if video.Trailer == nil || video.Trailer.Status != model.MediaStatusPending {
		t.Errorf("trailer = %+v, want PENDING media", video.Trailer)
	}
	if video.VideoFile == nil || video.VideoFile.Status != model.MediaStatusPending {
		t.Errorf("video file = %+v, want PENDING media", video.VideoFile)
	}

	wantPublished := []repository.EncodeRequest{
		{ResourceID: video.Trailer.ID, FilePath: video.Trailer.RawLocation},
		{ResourceID: video.VideoFile.ID, FilePath: video.VideoFile.RawLocation},
	}
	if !slices.Equal(d.queue.published, wantPublished) {
		t.Errorf("published = %v, want %v", d.queue.published, wantPublished)
	}
	if len(d.media.cleared) != 0 {
		t.Errorf("unexpected cleanup: %v", d.media.cleared)
	}
}

func TestVideoService_CreateVideo_WithoutMedia(t *testing.T) {
	d := newServiceDeps()

	video, err := d.service().CreateVideo(context.Background(), CreateVideoInput{VideoInput: validVideoInput()})
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}
	if len(d.media.stored) != 0 {
		t.Errorf("stored = %v, want none", d.media.stored)
	}
	if len(d.queue.published) != 0 {
		t.Errorf("published = %v, want none", d.queue.published)
	}
	if len(video.MediaLocations()) != 0 {
		t.Errorf("media locations = %v, want none", video.MediaLocations())
	}
}

func TestVideoService_CreateVideo_ValidationFailure(t *testing.T) {
	tests := []struct {
		name     string
		input    func() CreateVideoInput
		setup    func(d *serviceDeps)
		wantMsgs []string
	}{
		{
			name: "field and reference errors are reported together",
			input: func() CreateVideoInput {
				in := validVideoInput()
				in.Title = ""
				in.Rating = ""
				in.CategoryIDs = []string{"c1", "c9"}
				return CreateVideoInput{VideoInput: in, Media: allMedia()}
			},
			setup: func(d *serviceDeps) {
				d.categories.existsFn = knownIDs[model.CategoryID]("c1")
				d.genres.existsFn = knownIDs[model.GenreID]()
			},
			wantMsgs: []string{
				"'title' should not be empty",
				"'rating' should not be null",
				"Some categories could not be found: c9",
				"Some genres could not be found: g1",
			},
		},
		{
			name: "unknown rating",
			input: func() CreateVideoInput {
				in := validVideoInput()
				in.Rating = model.Rating("21")
				return CreateVideoInput{VideoInput: in}
			},
			wantMsgs: []string{"'rating' is not a valid classification"},
		},
		{
			name: "empty media content",
			input: func() CreateVideoInput {
				media := allMedia()
				media.Banner = &model.Resource{Name: "banner.png"}
				return CreateVideoInput{VideoInput: validVideoInput(), Media: media}
			},
			wantMsgs: []string{"'content' should not be empty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newServiceDeps()
			if tt.setup != nil {
				tt.setup(d)
			}

			_, err := d.service().CreateVideo(context.Background(), tt.input())
			if !errors.Is(err, validation.ErrValidation) {
				t.Fatalf("error = %v, want validation failure", err)
			}

			msg, msgs := failureMessages(t, err)
			if msg != "could not create aggregate video" {
				t.Errorf("message = %q", msg)
			}
			if !slices.Equal(msgs, tt.wantMsgs) {
				t.Errorf("errors = %q, want %q", msgs, tt.wantMsgs)
			}

			if len(d.media.stored) != 0 {
				t.Errorf("nothing should be uploaded, got %v", d.media.stored)
			}
			if len(d.repo.created) != 0 {
				t.Error("nothing should be persisted")
			}
		})
	}
}

func TestVideoService_CreateVideo_ReferenceLookupError(t *testing.T) {
	d := newServiceDeps()
	lookupErr := errors.New("database is down")
	d.castMembers.existsFn = func(ctx context.Context, ids []model.CastMemberID) ([]model.CastMemberID, error) {
		return nil, lookupErr
	}

	_, err := d.service().CreateVideo(context.Background(), CreateVideoInput{VideoInput: validVideoInput()})
	if !errors.Is(err, lookupErr) {
		t.Fatalf("error = %v, want %v", err, lookupErr)
	}
	if errors.Is(err, validation.ErrValidation) {
		t.Error("lookup error must not be reported as validation failure")
	}
}

func TestVideoService_CreateVideo_Compensation(t *testing.T) {
	uploadErr := errors.New("bucket unavailable")
	persistErr := errors.New("insert failed")

	tests := []struct {
		name       string
		setup      func(d *serviceDeps)
		wantCause  error
		wantStored int
	}{
		{
			name: "fourth upload fails",
			setup: func(d *serviceDeps) {
				d.media.storeVideoFn = func(ctx context.Context, id model.VideoID, kind model.MediaKind, r model.Resource) (model.VideoMedia, error) {
					return model.VideoMedia{}, uploadErr
				}
			},
			wantCause:  uploadErr,
			wantStored: 4,
		},
		{
			name: "persistence fails",
			setup: func(d *serviceDeps) {
				d.repo.createFn = func(ctx context.Context, video *model.Video) error {
					return persistErr
				}
			},
			wantCause:  persistErr,
			wantStored: 5,
		},
		{
			name: "cleanup failure does not mask the cause",
			setup: func(d *serviceDeps) {
				d.repo.createFn = func(ctx context.Context, video *model.Video) error {
					return persistErr
				}
				d.media.clearResourcesFn = func(ctx context.Context, id model.VideoID) error {
					return errors.New("cleanup failed")
				}
			},
			wantCause:  persistErr,
			wantStored: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newServiceDeps()
			tt.setup(d)

			video, err := d.service().CreateVideo(context.Background(), CreateVideoInput{
				VideoInput: validVideoInput(),
				Media:      allMedia(),
			})
			if video != nil {
				t.Error("expected no video on failure")
			}

			var internal *InternalError
			if !errors.As(err, &internal) {
				t.Fatalf("error = %v, want *InternalError", err)
			}
			if internal.Op != "create" {
				t.Errorf("Op = %q, want create", internal.Op)
			}
			if !errors.Is(err, tt.wantCause) {
				t.Errorf("error = %v, want cause %v", err, tt.wantCause)
			}
			wantPrefix := "an error on create video was observed [videoID:" + internal.VideoID.String() + "]"
			if !strings.HasPrefix(err.Error(), wantPrefix) {
				t.Errorf("message = %q, want prefix %q", err.Error(), wantPrefix)
			}

			if len(d.media.stored) != tt.wantStored {
				t.Errorf("uploads attempted = %d, want %d", len(d.media.stored), tt.wantStored)
			}
			if len(d.media.cleared) != 1 || d.media.cleared[0] != internal.VideoID {
				t.Errorf("cleared = %v, want [%s]", d.media.cleared, internal.VideoID)
			}
			if len(d.queue.published) != 0 {
				t.Errorf("published = %v, want none", d.queue.published)
			}
		})
	}
}

func TestVideoService_CreateVideo_PublishFailureIsNotFatal(t *testing.T) {
	d := newServiceDeps()
	d.queue.publishEncodeRequestFn = func(ctx context.Context, req repository.EncodeRequest) error {
		return errors.New("channel closed")
	}

	video, err := d.service().CreateVideo(context.Background(), CreateVideoInput{
		VideoInput: validVideoInput(),
		Media:      MediaInput{VideoFile: testResource("video.mp4")},
	})
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}
	if video.VideoFile == nil {
		t.Error("expected video file to be attached")
	}
	if len(d.media.cleared) != 0 {
		t.Error("publish failure must not trigger cleanup")
	}
}

func TestVideoService_UpdateVideo(t *testing.T) {
	current := storedVideo(t)
	banner := model.NewImageMedia("sum", "banner.png", mediaLocation(current.ID, model.MediaKindBanner, "m1", "banner.png"))
	trailer := model.NewVideoMedia("sum", "trailer.mp4", mediaLocation(current.ID, model.MediaKindTrailer, "m2", "trailer.mp4"))
	current = current.WithBanner(banner).WithTrailer(trailer)

	d := newServiceDeps()
	d.repo.getByIDFn = func(ctx context.Context, id model.VideoID) (*model.Video, error) {
		return current, nil
	}

	in := validVideoInput()
	in.Title = "Updated title"
	video, err := d.service().UpdateVideo(context.Background(), UpdateVideoInput{
		ID:         current.ID,
		VideoInput: in,
		Media:      MediaInput{VideoFile: testResource("video.mp4")},
	})
	if err != nil {
		t.Fatalf("UpdateVideo failed: %v", err)
	}

	if video.ID != current.ID || video.Title != "Updated title" {
		t.Errorf("video = %s/%q, want %s/%q", video.ID, video.Title, current.ID, "Updated title")
	}
	if current.Title != validVideoInput().Title {
		t.Error("stored snapshot must not be mutated")
	}
	if video.Banner == nil || !video.Banner.Equal(banner) {
		t.Error("existing banner should be kept")
	}
	if len(d.repo.updated) != 1 {
		t.Fatalf("Update calls = %d, want 1", len(d.repo.updated))
	}

	// Only the new video file is sent to the encoder.
	if len(d.queue.published) != 1 || d.queue.published[0].ResourceID != video.VideoFile.ID {
		t.Errorf("published = %v, want only the new video file", d.queue.published)
	}
}

func TestVideoService_UpdateVideo_NotFound(t *testing.T) {
	d := newServiceDeps()

	_, err := d.service().UpdateVideo(context.Background(), UpdateVideoInput{
		ID:         "missing",
		VideoInput: validVideoInput(),
	})
	if !errors.Is(err, repository.ErrVideoNotFound) {
		t.Fatalf("error = %v, want %v", err, repository.ErrVideoNotFound)
	}
}

func TestVideoService_UpdateVideo_ValidationFailure(t *testing.T) {
	current := storedVideo(t)
	d := newServiceDeps()
	d.repo.getByIDFn = func(ctx context.Context, id model.VideoID) (*model.Video, error) {
		return current, nil
	}
	d.genres.existsFn = knownIDs[model.GenreID]()

	in := validVideoInput()
	in.Description = ""
	in.Duration = -1
	_, err := d.service().UpdateVideo(context.Background(), UpdateVideoInput{ID: current.ID, VideoInput: in})

	msg, msgs := failureMessages(t, err)
	if msg != "could not update aggregate video" {
		t.Errorf("message = %q", msg)
	}
	want := []string{
		"'description' should not be empty",
		"'duration' must not be negative",
		"Some genres could not be found: g1",
	}
	if !slices.Equal(msgs, want) {
		t.Errorf("errors = %q, want %q", msgs, want)
	}
	if len(d.repo.updated) != 0 {
		t.Error("nothing should be persisted")
	}
}

func TestVideoService_UpdateVideo_Compensation(t *testing.T) {
	current := storedVideo(t)
	bannerLocation := mediaLocation(current.ID, model.MediaKindBanner, "m1", "banner.png")
	current = current.WithBanner(model.NewImageMedia("old", "banner.png", bannerLocation))

	d := newServiceDeps()
	d.repo.getByIDFn = func(ctx context.Context, id model.VideoID) (*model.Video, error) {
		return current, nil
	}
	persistErr := errors.New("update failed")
	d.repo.updateFn = func(ctx context.Context, video *model.Video) error {
		return persistErr
	}

	_, err := d.service().UpdateVideo(context.Background(), UpdateVideoInput{
		ID:         current.ID,
		VideoInput: validVideoInput(),
		Media: MediaInput{
			Banner:  testResource("banner.png"),
			Trailer: testResource("trailer.mp4"),
		},
	})

	var internal *InternalError
	if !errors.As(err, &internal) || internal.Op != "update" {
		t.Fatalf("error = %v, want *InternalError with Op update", err)
	}
	if !errors.Is(err, persistErr) {
		t.Errorf("error = %v, want cause %v", err, persistErr)
	}

	// Both uploads of this call are removed; the stored banner is untouched.
	if len(d.media.locations) != 2 || !slices.Equal(d.media.deleted, d.media.locations) {
		t.Errorf("deleted = %v, want %v", d.media.deleted, d.media.locations)
	}
	if slices.Contains(d.media.deleted, bannerLocation) || slices.Contains(d.media.locations, bannerLocation) {
		t.Errorf("stored banner %s must not be written or deleted", bannerLocation)
	}
	if len(d.media.cleared) != 0 {
		t.Errorf("update must never clear the whole prefix, cleared %v", d.media.cleared)
	}
}

func TestVideoService_UploadMedia(t *testing.T) {
	current := storedVideo(t)

	tests := []struct {
		name          string
		input         UploadMediaInput
		wantErr       error
		wantPublished int
		checkFn       func(t *testing.T, video *model.Video)
	}{
		{
			name: "image slot",
			input: UploadMediaInput{
				VideoID:  current.ID,
				Kind:     model.MediaKindThumbnail,
				Resource: *testResource("thumb.png"),
			},
			checkFn: func(t *testing.T, video *model.Video) {
				if video.Thumbnail == nil || video.Thumbnail.Name != "thumb.png" {
					t.Errorf("thumbnail = %+v", video.Thumbnail)
				}
			},
		},
		{
			name: "video slot publishes encode request",
			input: UploadMediaInput{
				VideoID:  current.ID,
				Kind:     model.MediaKindTrailer,
				Resource: *testResource("trailer.mp4"),
			},
			wantPublished: 1,
			checkFn: func(t *testing.T, video *model.Video) {
				if video.Trailer == nil || video.Trailer.Status != model.MediaStatusPending {
					t.Errorf("trailer = %+v", video.Trailer)
				}
			},
		},
		{
			name: "invalid kind",
			input: UploadMediaInput{
				VideoID:  current.ID,
				Kind:     model.MediaKind("POSTER"),
				Resource: *testResource("poster.png"),
			},
			wantErr: model.ErrInvalidMediaKind,
		},
		{
			name: "unknown video",
			input: UploadMediaInput{
				VideoID:  "unknown",
				Kind:     model.MediaKindBanner,
				Resource: *testResource("banner.png"),
			},
			wantErr: repository.ErrVideoNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newServiceDeps()
			d.repo.getByIDFn = func(ctx context.Context, id model.VideoID) (*model.Video, error) {
				if id != current.ID {
					return nil, repository.ErrVideoNotFound
				}
				return current, nil
			}

			video, err := d.service().UploadMedia(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UploadMedia failed: %v", err)
			}
			if len(d.repo.updated) != 1 {
				t.Errorf("Update calls = %d, want 1", len(d.repo.updated))
			}
			if len(d.queue.published) != tt.wantPublished {
				t.Errorf("published = %d, want %d", len(d.queue.published), tt.wantPublished)
			}
			tt.checkFn(t, video)
		})
	}
}

func TestVideoService_UploadMedia_InvalidResourceFailsFast(t *testing.T) {
	d := newServiceDeps()

	_, err := d.service().UploadMedia(context.Background(), UploadMediaInput{
		VideoID:  "any",
		Kind:     model.MediaKindBanner,
		Resource: model.Resource{Name: ""},
	})

	_, msgs := failureMessages(t, err)
	if len(msgs) != 1 || msgs[0] != "'name' should not be empty" {
		t.Errorf("errors = %q, want only the first violation", msgs)
	}
}

func TestVideoService_UploadMedia_Compensation(t *testing.T) {
	current := storedVideo(t)
	d := newServiceDeps()
	d.repo.getByIDFn = func(ctx context.Context, id model.VideoID) (*model.Video, error) {
		return current, nil
	}
	d.repo.updateFn = func(ctx context.Context, video *model.Video) error {
		return errors.New("update failed")
	}

	_, err := d.service().UploadMedia(context.Background(), UploadMediaInput{
		VideoID:  current.ID,
		Kind:     model.MediaKindVideo,
		Resource: *testResource("video.mp4"),
	})

	var internal *InternalError
	if !errors.As(err, &internal) {
		t.Fatalf("error = %v, want *InternalError", err)
	}
	want := d.media.locations
	if len(want) != 1 || !slices.Equal(d.media.deleted, want) {
		t.Errorf("deleted = %v, want %v", d.media.deleted, want)
	}
	if len(d.queue.published) != 0 {
		t.Error("nothing should be published on failure")
	}
}

func TestVideoService_GetMedia(t *testing.T) {
	current := storedVideo(t)
	location := mediaLocation(current.ID, model.MediaKindVideo, "m1", "video.mp4")
	current = current.WithVideoFile(model.NewVideoMedia("abc", "video.mp4", location))

	d := newServiceDeps()
	d.repo.getByIDFn = func(ctx context.Context, id model.VideoID) (*model.Video, error) {
		return current, nil
	}
	svc := d.service()

	t.Run("populated slot", func(t *testing.T) {
		content, err := svc.GetMedia(context.Background(), GetMediaInput{VideoID: current.ID, Kind: model.MediaKindVideo})
		if err != nil {
			t.Fatalf("GetMedia failed: %v", err)
		}
		defer content.Content.Close()

		if content.Name != "video.mp4" || content.Checksum != "abc" || content.Location != location {
			t.Errorf("content = %+v", content)
		}
		body, err := io.ReadAll(content.Content)
		if err != nil {
			t.Fatalf("read content: %v", err)
		}
		if string(body) != location {
			t.Errorf("body = %q, want %q", body, location)
		}
	})

	t.Run("empty slot", func(t *testing.T) {
		_, err := svc.GetMedia(context.Background(), GetMediaInput{VideoID: current.ID, Kind: model.MediaKindBanner})
		if !errors.Is(err, repository.ErrMediaNotFound) {
			t.Errorf("error = %v, want %v", err, repository.ErrMediaNotFound)
		}
	})

	t.Run("invalid kind", func(t *testing.T) {
		_, err := svc.GetMedia(context.Background(), GetMediaInput{VideoID: current.ID, Kind: "POSTER"})
		if !errors.Is(err, model.ErrInvalidMediaKind) {
			t.Errorf("error = %v, want %v", err, model.ErrInvalidMediaKind)
		}
	})
}
