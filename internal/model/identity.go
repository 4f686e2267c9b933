package model

// Role distinguishes administrators from display users.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Identity is the authenticated principal of a session.
type Identity struct {
	AccountID string `json:"id"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	Status    Status `json:"status,omitempty"`
}

func (i Identity) Role() Role {
	if i.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

func AdminIdentity(a AdminAccount) Identity {
	return Identity{AccountID: a.ID, Username: a.Username, IsAdmin: true}
}

func UserIdentity(u UserAccount) Identity {
	return Identity{AccountID: u.ID, Username: u.Username, Status: u.Status}
}
