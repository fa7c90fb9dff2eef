package model

import (
	"strings"

	"github.com/google/uuid"
)

// VideoID identifies a Video.
type VideoID string

// CategoryID identifies a category referenced by a video.
type CategoryID string

// GenreID identifies a genre referenced by a video.
type GenreID string

// CastMemberID identifies a cast member referenced by a video.
type CastMemberID string

// NewVideoID generates a random video identifier.
func NewVideoID() VideoID {
	return VideoID(newID())
}

func (id VideoID) String() string { return string(id) }

func (id CategoryID) String() string { return string(id) }

func (id GenreID) String() string { return string(id) }

func (id CastMemberID) String() string { return string(id) }

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ParseIDs converts raw identifiers into typed ones.
// Blank values and duplicates are dropped; first-seen order is kept.
func ParseIDs[ID ~string](raw []string) []ID {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[ID]struct{}, len(raw))
	ids := make([]ID, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		id := ID(r)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// IDStrings converts typed identifiers back into plain strings.
func IDStrings[ID ~string](ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
