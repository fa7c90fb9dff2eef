package usecase

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
)

// mockVideoRepository provides a configurable mock for VideoRepository.
type mockVideoRepository struct {
	createFn  func(ctx context.Context, video *model.Video) error
	getByIDFn func(ctx context.Context, id model.VideoID) (*model.Video, error)
	updateFn  func(ctx context.Context, video *model.Video) error

	created []*model.Video
	updated []*model.Video
}

func (m *mockVideoRepository) Create(ctx context.Context, video *model.Video) error {
	m.created = append(m.created, video)
	if m.createFn != nil {
		return m.createFn(ctx, video)
	}
	return nil
}

func (m *mockVideoRepository) GetByID(ctx context.Context, id model.VideoID) (*model.Video, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrVideoNotFound
}

func (m *mockVideoRepository) Update(ctx context.Context, video *model.Video) error {
	m.updated = append(m.updated, video)
	if m.updateFn != nil {
		return m.updateFn(ctx, video)
	}
	return nil
}

// mockReferenceRepository answers ExistsByIDs for any id type.
// With no existsFn every requested id is reported as found.
type mockReferenceRepository[ID ~string] struct {
	existsFn func(ctx context.Context, ids []ID) ([]ID, error)
	calls    [][]ID
}

func (m *mockReferenceRepository[ID]) ExistsByIDs(ctx context.Context, ids []ID) ([]ID, error) {
	m.calls = append(m.calls, ids)
	if m.existsFn != nil {
		return m.existsFn(ctx, ids)
	}
	return ids, nil
}

// knownIDs returns an existsFn reporting only the given ids as present.
func knownIDs[ID ~string](known ...ID) func(context.Context, []ID) ([]ID, error) {
	return func(_ context.Context, ids []ID) ([]ID, error) {
		var found []ID
		for _, id := range ids {
			for _, k := range known {
				if id == k {
					found = append(found, id)
				}
			}
		}
		return found, nil
	}
}

// mockMediaGateway records stored and removed media.
// Default behavior stores every resource under videos/<id>/<kind>/<media id>-<name>.
type mockMediaGateway struct {
	storeImageFn     func(ctx context.Context, videoID model.VideoID, kind model.MediaKind, r model.Resource) (model.ImageMedia, error)
	storeVideoFn     func(ctx context.Context, videoID model.VideoID, kind model.MediaKind, r model.Resource) (model.VideoMedia, error)
	getResourceFn    func(ctx context.Context, location string) (io.ReadCloser, error)
	deleteResourceFn func(ctx context.Context, location string) error
	clearResourcesFn func(ctx context.Context, videoID model.VideoID) error

	stored    []model.MediaKind
	locations []string
	deleted   []string
	cleared   []model.VideoID
}

func mediaLocation(videoID model.VideoID, kind model.MediaKind, mediaID, name string) string {
	return "videos/" + videoID.String() + "/" + strings.ToLower(kind.String()) + "/" + mediaID + "-" + name
}

func (m *mockMediaGateway) StoreImage(ctx context.Context, videoID model.VideoID, kind model.MediaKind, r model.Resource) (model.ImageMedia, error) {
	m.stored = append(m.stored, kind)
	if m.storeImageFn != nil {
		return m.storeImageFn(ctx, videoID, kind, r)
	}
	media := model.NewImageMedia(r.Checksum, r.Name, "")
	media.Location = mediaLocation(videoID, kind, media.ID, r.Name)
	m.locations = append(m.locations, media.Location)
	return media, nil
}

func (m *mockMediaGateway) StoreVideo(ctx context.Context, videoID model.VideoID, kind model.MediaKind, r model.Resource) (model.VideoMedia, error) {
	m.stored = append(m.stored, kind)
	if m.storeVideoFn != nil {
		return m.storeVideoFn(ctx, videoID, kind, r)
	}
	media := model.NewVideoMedia(r.Checksum, r.Name, "")
	media.RawLocation = mediaLocation(videoID, kind, media.ID, r.Name)
	m.locations = append(m.locations, media.RawLocation)
	return media, nil
}

func (m *mockMediaGateway) GetResource(ctx context.Context, location string) (io.ReadCloser, error) {
	if m.getResourceFn != nil {
		return m.getResourceFn(ctx, location)
	}
	return io.NopCloser(strings.NewReader(location)), nil
}

func (m *mockMediaGateway) DeleteResource(ctx context.Context, location string) error {
	m.deleted = append(m.deleted, location)
	if m.deleteResourceFn != nil {
		return m.deleteResourceFn(ctx, location)
	}
	return nil
}

func (m *mockMediaGateway) ClearResources(ctx context.Context, videoID model.VideoID) error {
	m.cleared = append(m.cleared, videoID)
	if m.clearResourcesFn != nil {
		return m.clearResourcesFn(ctx, videoID)
	}
	return nil
}

// mockMessageQueue provides a configurable mock for MessageQueue.
type mockMessageQueue struct {
	publishEncodeRequestFn  func(ctx context.Context, req repository.EncodeRequest) error
	consumeEncoderResultsFn func(ctx context.Context, handler func(result repository.EncoderResult) error) error

	published []repository.EncodeRequest
}

func (m *mockMessageQueue) PublishEncodeRequest(ctx context.Context, req repository.EncodeRequest) error {
	m.published = append(m.published, req)
	if m.publishEncodeRequestFn != nil {
		return m.publishEncodeRequestFn(ctx, req)
	}
	return nil
}

func (m *mockMessageQueue) ConsumeEncoderResults(ctx context.Context, handler func(result repository.EncoderResult) error) error {
	if m.consumeEncoderResultsFn != nil {
		return m.consumeEncoderResultsFn(ctx, handler)
	}
	return nil
}

func (m *mockMessageQueue) Close() error {
	return nil
}

// mockVideoCache is a mock implementation of VideoCache for testing.
type mockVideoCache struct {
	mu       sync.RWMutex
	data     map[model.VideoID]*model.Video
	getFn    func(ctx context.Context, videoID model.VideoID) (*model.Video, error)
	setFn    func(ctx context.Context, video *model.Video, ttl time.Duration) error
	deleteFn func(ctx context.Context, videoID model.VideoID) error
	deletes  atomic.Int32
}

func newMockVideoCache() *mockVideoCache {
	return &mockVideoCache{
		data: make(map[model.VideoID]*model.Video),
	}
}

func (m *mockVideoCache) Get(ctx context.Context, videoID model.VideoID) (*model.Video, error) {
	if m.getFn != nil {
		return m.getFn(ctx, videoID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[videoID], nil
}

func (m *mockVideoCache) Set(ctx context.Context, video *model.Video, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, video, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[video.ID] = video
	return nil
}

func (m *mockVideoCache) Delete(ctx context.Context, videoID model.VideoID) error {
	m.deletes.Add(1)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, videoID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, videoID)
	return nil
}

// mockVideoService is a mock implementation of VideoService for testing.
type mockVideoService struct {
	createVideoFn func(ctx context.Context, input CreateVideoInput) (*model.Video, error)
	updateVideoFn func(ctx context.Context, input UpdateVideoInput) (*model.Video, error)
	uploadMediaFn func(ctx context.Context, input UploadMediaInput) (*model.Video, error)
	getMediaFn    func(ctx context.Context, input GetMediaInput) (*MediaContent, error)
	getVideoFn    func(ctx context.Context, videoID model.VideoID) (*model.Video, error)
	getVideoCount atomic.Int32
}

func (m *mockVideoService) CreateVideo(ctx context.Context, input CreateVideoInput) (*model.Video, error) {
	if m.createVideoFn != nil {
		return m.createVideoFn(ctx, input)
	}
	return nil, nil
}

func (m *mockVideoService) UpdateVideo(ctx context.Context, input UpdateVideoInput) (*model.Video, error) {
	if m.updateVideoFn != nil {
		return m.updateVideoFn(ctx, input)
	}
	return nil, nil
}

func (m *mockVideoService) UploadMedia(ctx context.Context, input UploadMediaInput) (*model.Video, error) {
	if m.uploadMediaFn != nil {
		return m.uploadMediaFn(ctx, input)
	}
	return nil, nil
}

func (m *mockVideoService) GetMedia(ctx context.Context, input GetMediaInput) (*MediaContent, error) {
	if m.getMediaFn != nil {
		return m.getMediaFn(ctx, input)
	}
	return nil, nil
}

func (m *mockVideoService) GetVideo(ctx context.Context, videoID model.VideoID) (*model.Video, error) {
	m.getVideoCount.Add(1)
	if m.getVideoFn != nil {
		return m.getVideoFn(ctx, videoID)
	}
	return nil, nil
}

// mockMediaStatusService records status updates.
type mockMediaStatusService struct {
	updateMediaStatusFn func(ctx context.Context, input UpdateMediaStatusInput) error
	inputs              []UpdateMediaStatusInput
}

func (m *mockMediaStatusService) UpdateMediaStatus(ctx context.Context, input UpdateMediaStatusInput) error {
	m.inputs = append(m.inputs, input)
	if m.updateMediaStatusFn != nil {
		return m.updateMediaStatusFn(ctx, input)
	}
	return nil
}
