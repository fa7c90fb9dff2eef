package model

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hszk-dev/gocatalog/internal/domain/validation"
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 4000
)

var ErrMediaKindMismatch = errors.New("media kind does not match slot type")

// VideoProps carries the editable fields of a video.
type VideoProps struct {
	Title       string
	Description string
	LaunchedAt  int
	Duration    float64
	Rating      Rating
	Opened      bool
	Published   bool
	Categories  []CategoryID
	Genres      []GenreID
	CastMembers []CastMemberID
}

// Video is the catalog aggregate root.
//
// Categories, genres and cast members are referenced by ID only. A *Video is
// treated as an immutable snapshot: Update and the With* methods return a new
// value and leave the receiver untouched.
type Video struct {
	ID          VideoID
	Title       string
	Description string
	LaunchedAt  int
	Duration    float64
	Rating      Rating
	Opened      bool
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Categories  []CategoryID
	Genres      []GenreID
	CastMembers []CastMemberID

	Banner        *ImageMedia
	Thumbnail     *ImageMedia
	ThumbnailHalf *ImageMedia
	Trailer       *VideoMedia
	VideoFile     *VideoMedia
}

// NewVideo creates a video with empty media slots.
// All field violations are reported together in a *validation.Failure.
func NewVideo(props VideoProps) (*Video, error) {
	now := time.Now().UTC()
	v := &Video{
		ID:        NewVideoID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	v.apply(props)

	n := validation.NewNotification()
	_ = ValidateVideo(v, n)
	if err := n.Failure("could not create aggregate video"); err != nil {
		return nil, err
	}
	return v, nil
}

// Update returns a new snapshot with props applied. Media slots are kept.
func (v *Video) Update(props VideoProps) (*Video, error) {
	u := v.clone()
	u.apply(props)
	u.UpdatedAt = time.Now().UTC()

	n := validation.NewNotification()
	_ = ValidateVideo(u, n)
	if err := n.Failure("could not update aggregate video"); err != nil {
		return nil, err
	}
	return u, nil
}

// ValidateVideo checks the scalar fields of v and appends every violation to n.
// With a fail-fast notification it returns at the first violation.
func ValidateVideo(v *Video, n *validation.Notification) error {
	checks := []func() error{
		func() error { return checkText(n, "title", v.Title, maxTitleLength) },
		func() error { return checkText(n, "description", v.Description, maxDescriptionLength) },
		func() error {
			if v.LaunchedAt <= 0 {
				return n.Append(validation.NewError("'launchedAt' should not be null"))
			}
			return nil
		},
		func() error {
			if v.Rating == "" {
				return n.Append(validation.NewError("'rating' should not be null"))
			}
			if !v.Rating.IsValid() {
				return n.Append(validation.NewError("'rating' is not a valid classification"))
			}
			return nil
		},
		func() error {
			if v.Duration < 0 {
				return n.Append(validation.NewError("'duration' must not be negative"))
			}
			return nil
		},
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func checkText(n *validation.Notification, field, value string, limit int) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return n.Append(validation.NewError("'" + field + "' should not be empty"))
	}
	if utf8.RuneCountInString(trimmed) > limit {
		return n.Append(validation.NewError(
			"'" + field + "' must be between 1 and " + strconv.Itoa(limit) + " characters",
		))
	}
	return nil
}

// WithBanner returns a copy with the banner slot replaced.
func (v *Video) WithBanner(m ImageMedia) *Video {
	u := v.touch()
	u.Banner = &m
	return u
}

// WithThumbnail returns a copy with the thumbnail slot replaced.
func (v *Video) WithThumbnail(m ImageMedia) *Video {
	u := v.touch()
	u.Thumbnail = &m
	return u
}

// WithThumbnailHalf returns a copy with the thumbnail-half slot replaced.
func (v *Video) WithThumbnailHalf(m ImageMedia) *Video {
	u := v.touch()
	u.ThumbnailHalf = &m
	return u
}

// WithTrailer returns a copy with the trailer slot replaced.
func (v *Video) WithTrailer(m VideoMedia) *Video {
	u := v.touch()
	u.Trailer = &m
	return u
}

// WithVideoFile returns a copy with the video slot replaced.
func (v *Video) WithVideoFile(m VideoMedia) *Video {
	u := v.touch()
	u.VideoFile = &m
	return u
}

// WithImageMedia sets the image slot named by kind.
func (v *Video) WithImageMedia(kind MediaKind, m ImageMedia) (*Video, error) {
	switch kind {
	case MediaKindBanner:
		return v.WithBanner(m), nil
	case MediaKindThumbnail:
		return v.WithThumbnail(m), nil
	case MediaKindThumbnailHalf:
		return v.WithThumbnailHalf(m), nil
	default:
		return nil, ErrMediaKindMismatch
	}
}

// WithVideoMedia sets the video slot named by kind.
func (v *Video) WithVideoMedia(kind MediaKind, m VideoMedia) (*Video, error) {
	switch kind {
	case MediaKindTrailer:
		return v.WithTrailer(m), nil
	case MediaKindVideo:
		return v.WithVideoFile(m), nil
	default:
		return nil, ErrMediaKindMismatch
	}
}

// ImageSlot returns the image stored under kind, or nil.
func (v *Video) ImageSlot(kind MediaKind) *ImageMedia {
	switch kind {
	case MediaKindBanner:
		return v.Banner
	case MediaKindThumbnail:
		return v.Thumbnail
	case MediaKindThumbnailHalf:
		return v.ThumbnailHalf
	default:
		return nil
	}
}

// VideoSlot returns the video media stored under kind, or nil.
func (v *Video) VideoSlot(kind MediaKind) *VideoMedia {
	switch kind {
	case MediaKindTrailer:
		return v.Trailer
	case MediaKindVideo:
		return v.VideoFile
	default:
		return nil
	}
}

// MediaLocations returns the raw storage location of every populated slot.
func (v *Video) MediaLocations() []string {
	var locations []string
	for _, kind := range MediaKinds {
		if kind.IsImage() {
			if m := v.ImageSlot(kind); m != nil {
				locations = append(locations, m.Location)
			}
			continue
		}
		if m := v.VideoSlot(kind); m != nil {
			locations = append(locations, m.RawLocation)
		}
	}
	return locations
}

func (v *Video) apply(p VideoProps) {
	v.Title = p.Title
	v.Description = p.Description
	v.LaunchedAt = p.LaunchedAt
	v.Duration = p.Duration
	v.Rating = p.Rating
	v.Opened = p.Opened
	v.Published = p.Published
	v.Categories = append([]CategoryID(nil), p.Categories...)
	v.Genres = append([]GenreID(nil), p.Genres...)
	v.CastMembers = append([]CastMemberID(nil), p.CastMembers...)
}

func (v *Video) touch() *Video {
	u := v.clone()
	u.UpdatedAt = time.Now().UTC()
	return u
}

func (v *Video) clone() *Video {
	u := *v
	u.Categories = append([]CategoryID(nil), v.Categories...)
	u.Genres = append([]GenreID(nil), v.Genres...)
	u.CastMembers = append([]CastMemberID(nil), v.CastMembers...)
	u.Banner = copyPtr(v.Banner)
	u.Thumbnail = copyPtr(v.Thumbnail)
	u.ThumbnailHalf = copyPtr(v.ThumbnailHalf)
	u.Trailer = copyPtr(v.Trailer)
	u.VideoFile = copyPtr(v.VideoFile)
	return &u
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
