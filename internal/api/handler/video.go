package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
	"github.com/hszk-dev/gocatalog/internal/domain/validation"
	"github.com/hszk-dev/gocatalog/internal/usecase"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 32 << 20

// Multipart file fields of the video write endpoints.
const (
	fieldBannerFile    = "banner_file"
	fieldThumbFile     = "thumb_file"
	fieldThumbHalfFile = "thumb_half_file"
	fieldTrailerFile   = "trailer_file"
	fieldVideoFile     = "video_file"
	fieldMediaFile     = "media_file"
)

// errBadRequest marks a request that could not be decoded.
var errBadRequest = errors.New("bad request")

// Request/Response types

type VideoIDResponse struct {
	ID string `json:"id"`
}

type ImageMediaResponse struct {
	ID       string `json:"id"`
	Checksum string `json:"checksum"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type VideoMediaResponse struct {
	ID              string `json:"id"`
	Checksum        string `json:"checksum"`
	Name            string `json:"name"`
	RawLocation     string `json:"raw_location"`
	EncodedLocation string `json:"encoded_location"`
	Status          string `json:"status"`
}

type VideoResponse struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	YearLaunched  int                 `json:"year_launched"`
	Duration      float64             `json:"duration"`
	Rating        string              `json:"rating"`
	Opened        bool                `json:"opened"`
	Published     bool                `json:"published"`
	CategoriesID  []string            `json:"categories_id"`
	GenresID      []string            `json:"genres_id"`
	CastMembersID []string            `json:"cast_members_id"`
	Banner        *ImageMediaResponse `json:"banner,omitempty"`
	Thumbnail     *ImageMediaResponse `json:"thumbnail,omitempty"`
	ThumbnailHalf *ImageMediaResponse `json:"thumbnail_half,omitempty"`
	Trailer       *VideoMediaResponse `json:"trailer,omitempty"`
	Video         *VideoMediaResponse `json:"video,omitempty"`
	CreatedAt     string              `json:"created_at"`
	UpdatedAt     string              `json:"updated_at"`
}

// VideoHandler handles video-related HTTP requests.
type VideoHandler struct {
	svc           usecase.VideoService
	maxUploadSize int64
}

// NewVideoHandler creates a new VideoHandler.
// maxUploadSize bounds the request body of multipart writes; zero disables the limit.
func NewVideoHandler(svc usecase.VideoService, maxUploadSize int64) *VideoHandler {
	return &VideoHandler{svc: svc, maxUploadSize: maxUploadSize}
}

// Routes registers the video endpoints on r.
func (h *VideoHandler) Routes(r chi.Router) {
	r.Post("/videos", h.Create)
	r.Get("/videos/{id}", h.Get)
	r.Put("/videos/{id}", h.Update)
	r.Post("/videos/{id}/medias/{type}", h.UploadMedia)
	r.Get("/videos/{id}/medias/{type}", h.GetMedia)
}

// Create handles POST /v1/videos
func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	defer cleanupMultipart(r)

	input, err := videoInputFromForm(r.MultipartForm)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	media, err := mediaInputFromForm(r.MultipartForm)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	video, err := h.svc.CreateVideo(r.Context(), usecase.CreateVideoInput{
		VideoInput: input,
		Media:      media,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusCreated, VideoIDResponse{ID: video.ID.String()})
}

// Update handles PUT /v1/videos/{id}
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDParam(w, r)
	if !ok {
		return
	}

	if err := h.parseMultipart(w, r); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	defer cleanupMultipart(r)

	input, err := videoInputFromForm(r.MultipartForm)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	media, err := mediaInputFromForm(r.MultipartForm)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	video, err := h.svc.UpdateVideo(r.Context(), usecase.UpdateVideoInput{
		ID:         videoID,
		VideoInput: input,
		Media:      media,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, VideoIDResponse{ID: video.ID.String()})
}

// Get handles GET /v1/videos/{id}
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDParam(w, r)
	if !ok {
		return
	}

	video, err := h.svc.GetVideo(r.Context(), videoID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, toVideoResponse(video))
}

// UploadMedia handles POST /v1/videos/{id}/medias/{type}
func (h *VideoHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDParam(w, r)
	if !ok {
		return
	}
	kind, err := model.ParseMediaKind(chi.URLParam(r, "type"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_media_type", "Media type must be one of video, trailer, banner, thumbnail, thumbnail-half")
		return
	}

	if err := h.parseMultipart(w, r); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	defer cleanupMultipart(r)

	resource, err := formResource(r.MultipartForm, fieldMediaFile)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if resource == nil {
		Error(w, http.StatusBadRequest, "invalid_request", "media_file is required")
		return
	}

	video, err := h.svc.UploadMedia(r.Context(), usecase.UploadMediaInput{
		VideoID:  videoID,
		Kind:     kind,
		Resource: *resource,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if kind.IsImage() {
		JSON(w, http.StatusCreated, toImageMediaResponse(video.ImageSlot(kind)))
		return
	}
	JSON(w, http.StatusCreated, toVideoMediaResponse(video.VideoSlot(kind)))
}

// GetMedia handles GET /v1/videos/{id}/medias/{type}
func (h *VideoHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDParam(w, r)
	if !ok {
		return
	}
	kind, err := model.ParseMediaKind(chi.URLParam(r, "type"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_media_type", "Media type must be one of video, trailer, banner, thumbnail, thumbnail-half")
		return
	}

	media, err := h.svc.GetMedia(r.Context(), usecase.GetMediaInput{VideoID: videoID, Kind: kind})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	defer media.Content.Close()

	contentType := mime.TypeByExtension(path.Ext(media.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": media.Name}))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, media.Content); err != nil {
		slog.Warn("failed to stream media",
			slog.String("video_id", videoID.String()),
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (h *VideoHandler) handleServiceError(w http.ResponseWriter, err error) {
	var failure *validation.Failure
	var internal *usecase.InternalError

	switch {
	case errors.As(err, &failure):
		ValidationError(w, failure)
	case errors.Is(err, repository.ErrVideoNotFound):
		Error(w, http.StatusNotFound, "video_not_found", "Video not found")
	case errors.Is(err, repository.ErrMediaNotFound), errors.Is(err, repository.ErrObjectNotFound):
		Error(w, http.StatusNotFound, "media_not_found", "Media not found")
	case errors.Is(err, model.ErrInvalidMediaKind):
		Error(w, http.StatusBadRequest, "invalid_media_type", "Media type is not supported")
	case errors.As(err, &internal):
		slog.Error("video operation failed", slog.String("video_id", internal.VideoID.String()), slog.String("error", err.Error()))
		Error(w, http.StatusInternalServerError, "internal_error", internal.Error())
	default:
		slog.Error("unexpected error", slog.String("error", err.Error()))
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func videoIDParam(w http.ResponseWriter, r *http.Request) (model.VideoID, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID is required")
		return "", false
	}
	return model.VideoID(id), true
}

func (h *VideoHandler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: body exceeds %d bytes", errBadRequest, tooLarge.Limit)
		}
		return fmt.Errorf("%w: expected multipart/form-data body", errBadRequest)
	}
	return nil
}

func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

func videoInputFromForm(form *multipart.Form) (usecase.VideoInput, error) {
	input := usecase.VideoInput{
		Title:         formValue(form, "title"),
		Description:   formValue(form, "description"),
		Rating:        model.NormalizeRating(formValue(form, "rating")),
		CategoryIDs:   formValues(form, "categories_id"),
		GenreIDs:      formValues(form, "genres_id"),
		CastMemberIDs: formValues(form, "cast_members_id"),
	}

	var err error
	if input.LaunchedAt, err = formInt(form, "year_launched"); err != nil {
		return usecase.VideoInput{}, err
	}
	if input.Duration, err = formFloat(form, "duration"); err != nil {
		return usecase.VideoInput{}, err
	}
	if input.Opened, err = formBool(form, "opened"); err != nil {
		return usecase.VideoInput{}, err
	}
	if input.Published, err = formBool(form, "published"); err != nil {
		return usecase.VideoInput{}, err
	}
	return input, nil
}

func mediaInputFromForm(form *multipart.Form) (usecase.MediaInput, error) {
	var media usecase.MediaInput
	fields := []struct {
		name string
		dst  **model.Resource
	}{
		{fieldBannerFile, &media.Banner},
		{fieldThumbFile, &media.Thumbnail},
		{fieldThumbHalfFile, &media.ThumbnailHalf},
		{fieldTrailerFile, &media.Trailer},
		{fieldVideoFile, &media.VideoFile},
	}
	for _, f := range fields {
		res, err := formResource(form, f.name)
		if err != nil {
			return usecase.MediaInput{}, err
		}
		*f.dst = res
	}
	return media, nil
}

// formResource reads the first file of field, or returns nil when absent.
func formResource(form *multipart.Form, field string) (*model.Resource, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	header := files[0]

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s", errBadRequest, field)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read %s", errBadRequest, field)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	res := model.NewResource(header.Filename, contentType, content)
	return &res, nil
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// formValues accepts both "key" and "key[]", repeated or comma separated.
func formValues(form *multipart.Form, key string) []string {
	var out []string
	for _, k := range []string{key, key + "[]"} {
		for _, v := range form.Value[k] {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
	}
	return out
}

func formInt(form *multipart.Form, key string) (int, error) {
	raw := strings.TrimSpace(formValue(form, key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, key)
	}
	return v, nil
}

func formFloat(form *multipart.Form, key string) (float64, error) {
	raw := strings.TrimSpace(formValue(form, key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", errBadRequest, key)
	}
	return v, nil
}

func formBool(form *multipart.Form, key string) (bool, error) {
	raw := strings.TrimSpace(formValue(form, key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", errBadRequest, key)
	}
	return v, nil
}

func toVideoResponse(v *model.Video) VideoResponse {
	return VideoResponse{
		ID:            v.ID.String(),
		Title:         v.Title,
		Description:   v.Description,
		YearLaunched:  v.LaunchedAt,
		Duration:      v.Duration,
		Rating:        v.Rating.String(),
		Opened:        v.Opened,
		Published:     v.Published,
		CategoriesID:  model.IDStrings(v.Categories),
		GenresID:      model.IDStrings(v.Genres),
		CastMembersID: model.IDStrings(v.CastMembers),
		Banner:        toImageMediaResponse(v.Banner),
		Thumbnail:     toImageMediaResponse(v.Thumbnail),
		ThumbnailHalf: toImageMediaResponse(v.ThumbnailHalf),
		Trailer:       toVideoMediaResponse(v.Trailer),
		Video:         toVideoMediaResponse(v.VideoFile),
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     v.UpdatedAt.Format(time.RFC3339),
	}
}

func toImageMediaResponse(m *model.ImageMedia) *ImageMediaResponse {
	if m == nil {
		return nil
	}
	return &ImageMediaResponse{
		ID:       m.ID,
		Checksum: m.Checksum,
		Name:     m.Name,
		Location: m.Location,
	}
}

func toVideoMediaResponse(m *model.VideoMedia) *VideoMediaResponse {
	if m == nil {
		return nil
	}
	return &VideoMediaResponse{
		ID:              m.ID,
		Checksum:        m.Checksum,
		Name:            m.Name,
		RawLocation:     m.RawLocation,
		EncodedLocation: m.EncodedLocation,
		Status:          m.Status.String(),
	}
}
