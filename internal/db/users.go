package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

const userColumns = `id, username, password_hash, status, location, media_playing, created_at, updated_at`

// CreateUser inserts a display account in the disconnect state with an
// empty playlist.
func (s *pgStore) CreateUser(ctx context.Context, username, passwordHash string, location *string) (model.UserAccount, error) {
	var u model.UserAccount
	q := `
	INSERT INTO users (id, username, password_hash, status, location, media_playing, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, '[]'::jsonb, now(), now())
	RETURNING ` + userColumns + `;`
	if err := s.db.GetContext(ctx, &u, q, uuid.NewString(), username, passwordHash, model.StatusDisconnect, location); err != nil {
		log.Error().Err(err).Str("username", username).Msg("[db] failed to create user")
		return model.UserAccount{}, translate(err)
	}
	return u, nil
}

func (s *pgStore) GetUserByID(ctx context.Context, id string) (model.UserAccount, error) {
	var u model.UserAccount
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1;`, id)
	if err != nil {
		return model.UserAccount{}, translate(err)
	}
	return u, nil
}

func (s *pgStore) GetUserByUsername(ctx context.Context, username string) (model.UserAccount, error) {
	var u model.UserAccount
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE username = $1;`, username)
	if err != nil {
		return model.UserAccount{}, translate(err)
	}
	return u, nil
}

func (s *pgStore) ListUsers(ctx context.Context) ([]model.UserAccount, error) {
	users := []model.UserAccount{}
	if err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at, id;`); err != nil {
		log.Error().Err(err).Msg("[db] failed to list users")
		return nil, err
	}
	return users, nil
}

// UpdateUser applies the non-nil fields of patch and bumps updated_at.
func (s *pgStore) UpdateUser(ctx context.Context, id string, patch model.UserPatch) error {
	err := s.execOne(ctx, `
		UPDATE users
		SET username      = COALESCE($2, username),
		    password_hash = COALESCE($3, password_hash),
		    location      = COALESCE($4, location),
		    updated_at    = now()
		WHERE id = $1;`,
		id, patch.Username, patch.PasswordHash, patch.Location)
	if err != nil && err != ErrNotFound {
		log.Error().Err(err).Str("user_id", id).Msg("[db] failed to update user")
	}
	return err
}

func (s *pgStore) SetUserStatus(ctx context.Context, id string, status model.Status) error {
	err := s.execOne(ctx, `
		UPDATE users
		SET status = $2,
		    updated_at = now()
		WHERE id = $1;`,
		id, status)
	if err != nil && err != ErrNotFound {
		log.Error().Err(err).Str("user_id", id).Str("status", string(status)).Msg("[db] failed to set user status")
	}
	return err
}

// SetUserMedia overwrites media_playing with the given snapshot.
func (s *pgStore) SetUserMedia(ctx context.Context, id string, playlist model.Playlist) error {
	if playlist == nil {
		playlist = model.Playlist{}
	}
	err := s.execOne(ctx, `
		UPDATE users
		SET media_playing = $2,
		    updated_at = now()
		WHERE id = $1;`,
		id, playlist)
	if err != nil && err != ErrNotFound {
		log.Error().Err(err).Str("user_id", id).Int("items", len(playlist)).Msg("[db] failed to set user media")
	}
	return err
}

func (s *pgStore) DeleteUser(ctx context.Context, id string) error {
	err := s.execOne(ctx, `DELETE FROM users WHERE id = $1;`, id)
	if err != nil && err != ErrNotFound {
		log.Error().Err(err).Str("user_id", id).Msg("[db] failed to delete user")
	}
	return err
}

func (s *pgStore) CountUsersByStatus(ctx context.Context, status model.Status) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE status = $1;`, status); err != nil {
		log.Error().Err(err).Str("status", string(status)).Msg("[db] failed to count users")
		return 0, err
	}
	return n, nil
}
