package presence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/loopboard/internal/db"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

type recordingCache struct {
	invalidated []string
}

func (r *recordingCache) Invalidate(_ context.Context, userID string) {
	r.invalidated = append(r.invalidated, userID)
}

func TestPresenceTransitions(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	cache := &recordingCache{}
	svc := NewService(store, cache)

	u, err := store.CreateUser(ctx, "lobby", "h", nil)
	require.NoError(t, err)

	status := func() model.Status {
		got, err := store.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		return got.Status
	}

	require.NoError(t, svc.MarkPlaying(ctx, u.ID))
	assert.Equal(t, model.StatusPlaying, status())
	n, _ := svc.CountPlaying(ctx)
	assert.Equal(t, 1, n)

	require.NoError(t, svc.Deactivate(ctx, u.ID))
	assert.Equal(t, model.StatusDisconnect, status())

	require.NoError(t, svc.Activate(ctx, u.ID))
	assert.Equal(t, model.StatusPlaying, status())

	require.NoError(t, svc.Unload(ctx, u.ID))
	assert.Equal(t, model.StatusDisconnect, status())

	require.NoError(t, svc.SetStatus(ctx, u.ID, model.StatusPlaying))
	require.NoError(t, svc.Logout(ctx, u.ID))
	assert.Equal(t, model.StatusDisconnect, status())

	assert.Len(t, cache.invalidated, 6)
}

func TestSetStatus_Unknown(t *testing.T) {
	svc := NewService(db.NewMemoryStore(), nil)
	assert.Error(t, svc.SetStatus(context.Background(), "u1", model.Status("paused")))
}

func TestMarkPlaying_StoreFailure(t *testing.T) {
	store := new(db.MockStore)
	cache := &recordingCache{}
	store.On("SetUserStatus", mock.Anything, "u1", model.StatusPlaying).Return(errors.New("write failed"))

	err := NewService(store, cache).MarkPlaying(context.Background(), "u1")
	assert.Error(t, err)
	assert.Empty(t, cache.invalidated)
	store.AssertExpectations(t)
}

func TestDeactivate_UnknownUser(t *testing.T) {
	svc := NewService(db.NewMemoryStore(), nil)
	err := svc.Deactivate(context.Background(), "missing")
	assert.ErrorIs(t, err, db.ErrNotFound)
}
