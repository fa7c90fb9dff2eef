package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/metrics"
)

// DBTX is an interface that abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const videoColumns = `id, title, description, year_launched, duration, rating, opened, published,
		categories, genres, cast_members,
		banner, thumbnail, thumbnail_half, trailer, video,
		created_at, updated_at`

// VideoRepository implements repository.VideoRepository using PostgreSQL.
// Media slots are stored as JSONB documents, references as text arrays.
type VideoRepository struct {
	db DBTX
}

// NewVideoRepository creates a new VideoRepository instance.
func NewVideoRepository(db DBTX) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create persists a new video aggregate.
func (r *VideoRepository) Create(ctx context.Context, video *model.Video) error {
	const query = `
		INSERT INTO videos (` + videoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	args, err := videoArgs(video)
	if err != nil {
		return fmt.Errorf("failed to encode video: %w", err)
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryInsert, metrics.TableVideos).Inc()
	_, err = r.db.Exec(ctx, query, append(args, video.CreatedAt, video.UpdatedAt)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateVideo
		}
		return fmt.Errorf("failed to create video: %w", err)
	}

	return nil
}

// GetByID retrieves a video by its unique identifier.
func (r *VideoRepository) GetByID(ctx context.Context, id model.VideoID) (*model.Video, error) {
	const query = `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE id = $1
	`

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableVideos).Inc()
	video, err := scanVideo(r.db.QueryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video by ID: %w", err)
	}

	return video, nil
}

// Update replaces every mutable column of an existing video.
// The creation timestamp is never rewritten.
func (r *VideoRepository) Update(ctx context.Context, video *model.Video) error {
	const query = `
		UPDATE videos
		SET title = $2, description = $3, year_launched = $4, duration = $5, rating = $6,
			opened = $7, published = $8, categories = $9, genres = $10, cast_members = $11,
			banner = $12, thumbnail = $13, thumbnail_half = $14, trailer = $15, video = $16,
			updated_at = $17
		WHERE id = $1
	`

	args, err := videoArgs(video)
	if err != nil {
		return fmt.Errorf("failed to encode video: %w", err)
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryUpdate, metrics.TableVideos).Inc()
	tag, err := r.db.Exec(ctx, query, append(args, video.UpdatedAt)...)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrVideoNotFound
	}

	return nil
}

// videoArgs returns the column values shared by insert and update, in
// videoColumns order without the timestamps.
func videoArgs(v *model.Video) ([]any, error) {
	banner, err := encodeImage(v.Banner)
	if err != nil {
		return nil, err
	}
	thumbnail, err := encodeImage(v.Thumbnail)
	if err != nil {
		return nil, err
	}
	thumbnailHalf, err := encodeImage(v.ThumbnailHalf)
	if err != nil {
		return nil, err
	}
	trailer, err := encodeVideo(v.Trailer)
	if err != nil {
		return nil, err
	}
	videoFile, err := encodeVideo(v.VideoFile)
	if err != nil {
		return nil, err
	}

	return []any{
		v.ID.String(),
		v.Title,
		v.Description,
		v.LaunchedAt,
		v.Duration,
		v.Rating.String(),
		v.Opened,
		v.Published,
		model.IDStrings(v.Categories),
		model.IDStrings(v.Genres),
		model.IDStrings(v.CastMembers),
		banner,
		thumbnail,
		thumbnailHalf,
		trailer,
		videoFile,
	}, nil
}

// scanVideo scans a single row into a Video aggregate.
func scanVideo(row pgx.Row) (*model.Video, error) {
	var (
		video                                           model.Video
		id, rating                                      string
		categories, genres, castMembers                 []string
		banner, thumbnail, thumbnailHalf, trailer, file []byte
	)

	err := row.Scan(
		&id,
		&video.Title,
		&video.Description,
		&video.LaunchedAt,
		&video.Duration,
		&rating,
		&video.Opened,
		&video.Published,
		&categories,
		&genres,
		&castMembers,
		&banner,
		&thumbnail,
		&thumbnailHalf,
		&trailer,
		&file,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	video.ID = model.VideoID(id)
	video.Rating = model.Rating(rating)
	video.Categories = model.ParseIDs[model.CategoryID](categories)
	video.Genres = model.ParseIDs[model.GenreID](genres)
	video.CastMembers = model.ParseIDs[model.CastMemberID](castMembers)

	if video.Banner, err = decodeImage(banner); err != nil {
		return nil, err
	}
	if video.Thumbnail, err = decodeImage(thumbnail); err != nil {
		return nil, err
	}
	if video.ThumbnailHalf, err = decodeImage(thumbnailHalf); err != nil {
		return nil, err
	}
	if video.Trailer, err = decodeVideo(trailer); err != nil {
		return nil, err
	}
	if video.VideoFile, err = decodeVideo(file); err != nil {
		return nil, err
	}

	return &video, nil
}

// imageMediaRecord is the JSONB document of an image slot.
type imageMediaRecord struct {
	ID       string `json:"id"`
	Checksum string `json:"checksum"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// videoMediaRecord is the JSONB document of a video slot.
type videoMediaRecord struct {
	ID              string `json:"id"`
	Checksum        string `json:"checksum"`
	Name            string `json:"name"`
	RawLocation     string `json:"raw_location"`
	EncodedLocation string `json:"encoded_location,omitempty"`
	Status          string `json:"status"`
}

// encodeImage returns nil for an empty slot so the column is stored as NULL.
func encodeImage(m *model.ImageMedia) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(imageMediaRecord{
		ID:       m.ID,
		Checksum: m.Checksum,
		Name:     m.Name,
		Location: m.Location,
	})
}

func encodeVideo(m *model.VideoMedia) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(videoMediaRecord{
		ID:              m.ID,
		Checksum:        m.Checksum,
		Name:            m.Name,
		RawLocation:     m.RawLocation,
		EncodedLocation: m.EncodedLocation,
		Status:          m.Status.String(),
	})
}

func decodeImage(data []byte) (*model.ImageMedia, error) {
	if data == nil {
		return nil, nil
	}
	var rec imageMediaRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode image media: %w", err)
	}
	return &model.ImageMedia{
		ID:       rec.ID,
		Checksum: rec.Checksum,
		Name:     rec.Name,
		Location: rec.Location,
	}, nil
}

func decodeVideo(data []byte) (*model.VideoMedia, error) {
	if data == nil {
		return nil, nil
	}
	var rec videoMediaRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode video media: %w", err)
	}
	return &model.VideoMedia{
		ID:              rec.ID,
		Checksum:        rec.Checksum,
		Name:            rec.Name,
		RawLocation:     rec.RawLocation,
		EncodedLocation: rec.EncodedLocation,
		Status:          model.MediaStatus(rec.Status),
	}, nil
}

// Compile-time verification that VideoRepository implements repository.VideoRepository.
var _ repository.VideoRepository = (*VideoRepository)(nil)
