package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

func TestMemoryStore_UserLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	u, err := s.CreateUser(ctx, "lobby", "hash", nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDisconnect, u.Status)
	assert.Empty(t, u.MediaPlaying)

	_, err = s.CreateUser(ctx, "lobby", "other", nil)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, s.SetUserStatus(ctx, u.ID, model.StatusPlaying))
	n, err := s.CountUsersByStatus(ctx, model.StatusPlaying)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.GetUserByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.SetUserStatus(ctx, u.ID, model.StatusPlaying), ErrNotFound)
}

func TestMemoryStore_PlaylistIsCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u, err := s.CreateUser(ctx, "lobby", "hash", nil)
	require.NoError(t, err)

	playlist := model.Playlist{{Name: "A", Kind: model.KindImage, URL: "https://x/a.png"}}
	require.NoError(t, s.SetUserMedia(ctx, u.ID, playlist))
	playlist[0].Name = "mutated"

	got, err := s.GetUserByUsername(ctx, "lobby")
	require.NoError(t, err)
	assert.Equal(t, "A", got.MediaPlaying[0].Name)

	got.MediaPlaying[0].Name = "mutated again"
	again, _ := s.GetUserByID(ctx, u.ID)
	assert.Equal(t, "A", again.MediaPlaying[0].Name)
}

func TestMemoryStore_RenameConflict(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	a, _ := s.CreateUser(ctx, "a", "h", nil)
	_, _ = s.CreateUser(ctx, "b", "h", nil)

	taken := "b"
	assert.ErrorIs(t, s.UpdateUser(ctx, a.ID, model.UserPatch{Username: &taken}), ErrConflict)

	same := "a"
	assert.NoError(t, s.UpdateUser(ctx, a.ID, model.UserPatch{Username: &same}))
}

func TestMemoryStore_MediaListingOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	first, _ := s.CreateMedia(ctx, "one", "https://x/1.png", model.KindImage)
	second, _ := s.CreateMedia(ctx, "two", "https://x/2.mp4", model.KindVideo)
	third, _ := s.CreateMedia(ctx, "three", "https://youtu.be/abc", model.KindYouTube)

	require.NoError(t, s.DeleteMedia(ctx, second.ID))
	items, err := s.ListMedia(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, third.ID, items[1].ID)

	name := "renamed"
	require.NoError(t, s.UpdateMedia(ctx, first.ID, model.MediaPatch{Name: &name}))
	got, _ := s.GetMediaByID(ctx, first.ID)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, model.KindImage, got.Kind)

	n, _ := s.CountMedia(ctx)
	assert.Equal(t, 2, n)
}
