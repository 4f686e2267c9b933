package model

import "time"

// Status is the coarse presence flag of a display account.
type Status string

const (
	StatusPlaying    Status = "playing"
	StatusDisconnect Status = "disconnect"
)

func (s Status) Valid() bool {
	return s == StatusPlaying || s == StatusDisconnect
}

// UserAccount is a display endpoint with an assigned playlist.
type UserAccount struct {
	ID           string    `db:"id"             json:"id"`
	Username     string    `db:"username"       json:"username"`
	PasswordHash string    `db:"password_hash"  json:"-"`
	Status       Status    `db:"status"         json:"status"`
	Location     *string   `db:"location"       json:"location,omitempty"`
	MediaPlaying Playlist  `db:"media_playing"  json:"media_playing"`
	CreatedAt    time.Time `db:"created_at"     json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"     json:"updated_at"`
}

// UserPatch carries the fields of a partial account update; nil means unchanged.
type UserPatch struct {
	Username     *string
	PasswordHash *string
	Location     *string
}

// AdminAccount authenticates administrators only.
type AdminAccount struct {
	ID           string    `db:"id"             json:"id"`
	Username     string    `db:"username"       json:"username"`
	PasswordHash string    `db:"password_hash"  json:"-"`
	CreatedAt    time.Time `db:"created_at"     json:"created_at"`
}

// Snapshot is the slice of a display account its playback client polls for.
type Snapshot struct {
	Status       Status   `json:"status"`
	MediaPlaying Playlist `json:"media_playing"`
}

func (u UserAccount) Snapshot() Snapshot {
	p := u.MediaPlaying
	if p == nil {
		p = Playlist{}
	}
	return Snapshot{Status: u.Status, MediaPlaying: p.Clone()}
}
