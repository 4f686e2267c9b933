package model

import (
	"regexp"
	"time"
)

// Kind is the presentation type of a media item.
type Kind string

const (
	KindImage   Kind = "image"
	KindVideo   Kind = "video"
	KindYouTube Kind = "youtube"
)

func (k Kind) Valid() bool {
	switch k {
	case KindImage, KindVideo, KindYouTube:
		return true
	}
	return false
}

// MediaItem is a catalog entry. Assignments copy it by value, see MediaRef.
type MediaItem struct {
	ID        string    `db:"id"          json:"id"`
	Name      string    `db:"name"        json:"name"`
	URL       string    `db:"url"         json:"url"`
	Kind      Kind      `db:"kind"        json:"type"`
	CreatedAt time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt time.Time `db:"updated_at"  json:"updated_at"`
}

// Ref snapshots the item for a playlist.
func (m MediaItem) Ref() MediaRef {
	return MediaRef{Name: m.Name, Kind: m.Kind, URL: m.URL}
}

// MediaPatch carries the fields of a partial media update; nil means unchanged.
type MediaPatch struct {
	Name *string
	URL  *string
	Kind *Kind
}

func (p MediaPatch) Empty() bool {
	return p.Name == nil && p.URL == nil && p.Kind == nil
}

var youtubeIDPattern = regexp.MustCompile(`^.*(youtu.be/|v/|e/|u/\w+/|embed/|v=)([^#&?]*).*`)

// YouTubeID extracts the video id from a watch, short or embed URL.
// It returns "" when the URL carries no id.
func YouTubeID(url string) string {
	m := youtubeIDPattern.FindStringSubmatch(url)
	if len(m) < 3 {
		return ""
	}
	return m[2]
}
