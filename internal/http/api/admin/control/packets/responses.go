package packets

import (
	"time"

	"github.com/Nixie-Tech-LLC/loopboard/internal/assign"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

type MediaResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      model.Kind `json:"type"`
	URL       string     `json:"url"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
}

func NewMediaResponse(m model.MediaItem) MediaResponse {
	return MediaResponse{
		ID:        m.ID,
		Name:      m.Name,
		Type:      m.Kind,
		URL:       m.URL,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
		UpdatedAt: m.UpdatedAt.Format(time.RFC3339),
	}
}

type UserResponse struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	Status       model.Status   `json:"status"`
	Location     *string        `json:"location"`
	MediaPlaying model.Playlist `json:"media_playing"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

func NewUserResponse(u model.UserAccount) UserResponse {
	playlist := u.MediaPlaying
	if playlist == nil {
		playlist = model.Playlist{}
	}
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Status:       u.Status,
		Location:     u.Location,
		MediaPlaying: playlist,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    u.UpdatedAt.Format(time.RFC3339),
	}
}

type AssignResponse struct {
	MediaPlaying model.Playlist      `json:"media_playing"`
	Users        []assign.UserResult `json:"users,omitempty"`
	Error        string              `json:"error,omitempty"`
}

type DashboardResponse struct {
	TotalUsers   int `json:"total_users"`
	TotalMedia   int `json:"total_media"`
	PlayingUsers int `json:"playing_users"`
}
