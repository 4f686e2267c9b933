package db

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

// MemoryStore is an in-process Store used for local runs (STORE=memory)
// and tests. Records are returned by value so callers never alias its state.
type MemoryStore struct {
	mu     sync.RWMutex
	admins map[string]model.AdminAccount
	users  map[string]model.UserAccount
	media  map[string]model.MediaItem
	// insertion order, for stable listings
	userOrder  []string
	mediaOrder []string
	now        func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		admins: map[string]model.AdminAccount{},
		users:  map[string]model.UserAccount{},
		media:  map[string]model.MediaItem{},
		now:    time.Now,
	}
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) CreateAdmin(_ context.Context, username, passwordHash string) (model.AdminAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Username == username {
			return model.AdminAccount{}, ErrConflict
		}
	}
	a := model.AdminAccount{ID: uuid.NewString(), Username: username, PasswordHash: passwordHash, CreatedAt: m.now()}
	m.admins[a.ID] = a
	return a, nil
}

func (m *MemoryStore) GetAdminByUsername(_ context.Context, username string) (model.AdminAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.admins {
		if a.Username == username {
			return a, nil
		}
	}
	return model.AdminAccount{}, ErrNotFound
}

func (m *MemoryStore) CountAdmins(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.admins), nil
}

func (m *MemoryStore) CreateUser(_ context.Context, username, passwordHash string, location *string) (model.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.usernameTaken(username, "") {
		return model.UserAccount{}, ErrConflict
	}
	now := m.now()
	u := model.UserAccount{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Status:       model.StatusDisconnect,
		Location:     cloneString(location),
		MediaPlaying: model.Playlist{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[u.ID] = u
	m.userOrder = append(m.userOrder, u.ID)
	return copyUser(u), nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id string) (model.UserAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return model.UserAccount{}, ErrNotFound
	}
	return copyUser(u), nil
}

func (m *MemoryStore) GetUserByUsername(_ context.Context, username string) (model.UserAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.userOrder {
		if u := m.users[id]; u.Username == username {
			return copyUser(u), nil
		}
	}
	return model.UserAccount{}, ErrNotFound
}

func (m *MemoryStore) ListUsers(context.Context) ([]model.UserAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.UserAccount, 0, len(m.userOrder))
	for _, id := range m.userOrder {
		out = append(out, copyUser(m.users[id]))
	}
	return out, nil
}

func (m *MemoryStore) UpdateUser(_ context.Context, id string, patch model.UserPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Username != nil {
		if m.usernameTaken(*patch.Username, id) {
			return ErrConflict
		}
		u.Username = *patch.Username
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.Location != nil {
		u.Location = cloneString(patch.Location)
	}
	u.UpdatedAt = m.now()
	m.users[id] = u
	return nil
}

func (m *MemoryStore) SetUserStatus(_ context.Context, id string, status model.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = m.now()
	m.users[id] = u
	return nil
}

func (m *MemoryStore) SetUserMedia(_ context.Context, id string, playlist model.Playlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.MediaPlaying = playlist.Clone()
	u.UpdatedAt = m.now()
	m.users[id] = u
	return nil
}

func (m *MemoryStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	m.userOrder = without(m.userOrder, id)
	return nil
}

func (m *MemoryStore) CountUsersByStatus(_ context.Context, status model.Status) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, u := range m.users {
		if u.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) CreateMedia(_ context.Context, name, url string, kind model.Kind) (model.MediaItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	item := model.MediaItem{ID: uuid.NewString(), Name: name, URL: url, Kind: kind, CreatedAt: now, UpdatedAt: now}
	m.media[item.ID] = item
	m.mediaOrder = append(m.mediaOrder, item.ID)
	return item, nil
}

func (m *MemoryStore) GetMediaByID(_ context.Context, id string) (model.MediaItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.media[id]
	if !ok {
		return model.MediaItem{}, ErrNotFound
	}
	return item, nil
}

func (m *MemoryStore) ListMedia(context.Context) ([]model.MediaItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.MediaItem, 0, len(m.mediaOrder))
	for _, id := range m.mediaOrder {
		out = append(out, m.media[id])
	}
	return out, nil
}

func (m *MemoryStore) UpdateMedia(_ context.Context, id string, patch model.MediaPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.media[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.URL != nil {
		item.URL = *patch.URL
	}
	if patch.Kind != nil {
		item.Kind = *patch.Kind
	}
	item.UpdatedAt = m.now()
	m.media[id] = item
	return nil
}

func (m *MemoryStore) DeleteMedia(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.media[id]; !ok {
		return ErrNotFound
	}
	delete(m.media, id)
	m.mediaOrder = without(m.mediaOrder, id)
	return nil
}

func (m *MemoryStore) CountMedia(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.media), nil
}

// callers hold m.mu
func (m *MemoryStore) usernameTaken(username, exceptID string) bool {
	for id, u := range m.users {
		if id != exceptID && u.Username == username {
			return true
		}
	}
	return false
}

func copyUser(u model.UserAccount) model.UserAccount {
	u.MediaPlaying = u.MediaPlaying.Clone()
	u.Location = cloneString(u.Location)
	return u
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
