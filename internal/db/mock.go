package db

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

// MockStore is a testify mock of Store.
type MockStore struct {
	mock.Mock
}

var _ Store = (*MockStore)(nil)

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockStore) CreateAdmin(ctx context.Context, username, passwordHash string) (model.AdminAccount, error) {
	args := m.Called(ctx, username, passwordHash)
	return args.Get(0).(model.AdminAccount), args.Error(1)
}
func (m *MockStore) GetAdminByUsername(ctx context.Context, username string) (model.AdminAccount, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.AdminAccount), args.Error(1)
}
func (m *MockStore) CountAdmins(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *MockStore) CreateUser(ctx context.Context, username, passwordHash string, location *string) (model.UserAccount, error) {
	args := m.Called(ctx, username, passwordHash, location)
	return args.Get(0).(model.UserAccount), args.Error(1)
}
func (m *MockStore) GetUserByID(ctx context.Context, id string) (model.UserAccount, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.UserAccount), args.Error(1)
}
func (m *MockStore) GetUserByUsername(ctx context.Context, username string) (model.UserAccount, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.UserAccount), args.Error(1)
}
func (m *MockStore) ListUsers(ctx context.Context) ([]model.UserAccount, error) {
	args := m.Called(ctx)
	if users, ok := args.Get(0).([]model.UserAccount); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockStore) UpdateUser(ctx context.Context, id string, patch model.UserPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}
func (m *MockStore) SetUserStatus(ctx context.Context, id string, status model.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockStore) SetUserMedia(ctx context.Context, id string, playlist model.Playlist) error {
	args := m.Called(ctx, id, playlist)
	return args.Error(0)
}
func (m *MockStore) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockStore) CountUsersByStatus(ctx context.Context, status model.Status) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}
func (m *MockStore) CreateMedia(ctx context.Context, name, url string, kind model.Kind) (model.MediaItem, error) {
	args := m.Called(ctx, name, url, kind)
	return args.Get(0).(model.MediaItem), args.Error(1)
}
func (m *MockStore) GetMediaByID(ctx context.Context, id string) (model.MediaItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.MediaItem), args.Error(1)
}
func (m *MockStore) ListMedia(ctx context.Context) ([]model.MediaItem, error) {
	args := m.Called(ctx)
	if items, ok := args.Get(0).([]model.MediaItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockStore) UpdateMedia(ctx context.Context, id string, patch model.MediaPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}
func (m *MockStore) DeleteMedia(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockStore) CountMedia(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
