package packets

import "github.com/Nixie-Tech-LLC/loopboard/internal/model"

// Catalog rules (absolute URL, known type, YouTube id) are checked by the
// catalog service so they come back as field errors too.
type CreateMediaRequest struct {
	Name string     `json:"name" binding:"required"`
	URL  string     `json:"url"  binding:"required"`
	Type model.Kind `json:"type" binding:"required"`
}

type UpdateMediaRequest struct {
	Name *string     `json:"name"`
	URL  *string     `json:"url"`
	Type *model.Kind `json:"type"`
}

type CreateUserRequest struct {
	Username string  `json:"username" binding:"required,min=3"`
	Password string  `json:"password" binding:"required,password"`
	Location *string `json:"location"`
}

type UpdateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3"`
	Password *string `json:"password" binding:"omitempty,password"`
	Location *string `json:"location"`
}

type SetStatusRequest struct {
	Status model.Status `json:"status" binding:"required,oneof=playing disconnect"`
}

// AssignRequest replays the admin's selection clicks. Exactly one of
// UserID and All must be set.
type AssignRequest struct {
	UserID      string   `json:"user_id" binding:"required_without=All,excluded_with=All"`
	All         bool     `json:"all"`
	FromCurrent bool     `json:"from_current"`
	MediaIDs    []string `json:"media_ids"`
}
