package model

import (
	"errors"
	"strings"
)

// MediaKind names one of the five media slots of a video.
type MediaKind string

const (
	MediaKindVideo         MediaKind = "VIDEO"
	MediaKindTrailer       MediaKind = "TRAILER"
	MediaKindBanner        MediaKind = "BANNER"
	MediaKindThumbnail     MediaKind = "THUMBNAIL"
	MediaKindThumbnailHalf MediaKind = "THUMBNAIL_HALF"
)

// MediaKinds lists every slot in upload order.
var MediaKinds = []MediaKind{
	MediaKindBanner,
	MediaKindThumbnail,
	MediaKindThumbnailHalf,
	MediaKindTrailer,
	MediaKindVideo,
}

var ErrInvalidMediaKind = errors.New("invalid media kind")

func (k MediaKind) IsValid() bool {
	switch k {
	case MediaKindVideo, MediaKindTrailer, MediaKindBanner, MediaKindThumbnail, MediaKindThumbnailHalf:
		return true
	default:
		return false
	}
}

// IsImage reports whether the slot holds an image rather than an encodable video.
func (k MediaKind) IsImage() bool {
	switch k {
	case MediaKindBanner, MediaKindThumbnail, MediaKindThumbnailHalf:
		return true
	default:
		return false
	}
}

func (k MediaKind) String() string {
	return string(k)
}

// ParseMediaKind accepts "thumbnail-half", "THUMBNAIL_HALF" and friends.
func ParseMediaKind(s string) (MediaKind, error) {
	k := MediaKind(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !k.IsValid() {
		return "", ErrInvalidMediaKind
	}
	return k, nil
}

// MediaStatus is the encoding state of a video media.
type MediaStatus string

const (
	MediaStatusPending    MediaStatus = "PENDING"
	MediaStatusProcessing MediaStatus = "PROCESSING"
	MediaStatusCompleted  MediaStatus = "COMPLETED"
)

func (s MediaStatus) IsValid() bool {
	switch s {
	case MediaStatusPending, MediaStatusProcessing, MediaStatusCompleted:
		return true
	default:
		return false
	}
}

func (s MediaStatus) String() string {
	return string(s)
}

// ImageMedia describes a stored image.
type ImageMedia struct {
	ID       string
	Checksum string
	Name     string
	Location string
}

// NewImageMedia creates an ImageMedia with a generated ID.
func NewImageMedia(checksum, name, location string) ImageMedia {
	return ImageMedia{
		ID:       newID(),
		Checksum: checksum,
		Name:     name,
		Location: location,
	}
}

// Equal compares by checksum and location; IDs are ignored.
func (m ImageMedia) Equal(other ImageMedia) bool {
	return m.Checksum == other.Checksum && m.Location == other.Location
}

// VideoMedia describes a stored video file and its encoding state.
type VideoMedia struct {
	ID              string
	Checksum        string
	Name            string
	RawLocation     string
	EncodedLocation string
	Status          MediaStatus
}

// NewVideoMedia creates a PENDING VideoMedia with a generated ID.
func NewVideoMedia(checksum, name, rawLocation string) VideoMedia {
	return VideoMedia{
		ID:          newID(),
		Checksum:    checksum,
		Name:        name,
		RawLocation: rawLocation,
		Status:      MediaStatusPending,
	}
}

// Equal compares by checksum and raw location; IDs are ignored.
func (m VideoMedia) Equal(other VideoMedia) bool {
	return m.Checksum == other.Checksum && m.RawLocation == other.RawLocation
}

// Processing returns a copy in PROCESSING state. The encoded location is kept.
func (m VideoMedia) Processing() VideoMedia {
	m.Status = MediaStatusProcessing
	return m
}

// Completed returns a copy in COMPLETED state pointing at encodedLocation.
func (m VideoMedia) Completed(encodedLocation string) VideoMedia {
	m.Status = MediaStatusCompleted
	m.EncodedLocation = encodedLocation
	return m
}
