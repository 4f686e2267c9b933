package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// MediaRef is a denormalized playlist entry copied from a MediaItem at
// assignment time. Later edits to the item never reach it.
type MediaRef struct {
	Name string `json:"name"`
	Kind Kind   `json:"type"`
	URL  string `json:"url"`
}

// Playlist is the ordered media_playing list of a display account.
// It is persisted as a JSONB column.
type Playlist []MediaRef

// Value implements driver.Valuer.
func (p Playlist) Value() (driver.Value, error) {
	if p == nil {
		p = Playlist{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (p *Playlist) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = Playlist{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("playlist: unsupported scan source")
	}
	out := Playlist{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*p = out
	return nil
}

// Clone returns an independent copy.
func (p Playlist) Clone() Playlist {
	out := make(Playlist, len(p))
	copy(out, p)
	return out
}

// Equal reports element-wise equality.
func (p Playlist) Equal(o Playlist) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// HasYouTube reports whether any entry is a YouTube link.
func (p Playlist) HasYouTube() bool {
	for _, r := range p {
		if r.Kind == KindYouTube {
			return true
		}
	}
	return false
}
