package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

func (s *pgStore) CreateMedia(ctx context.Context, name, url string, kind model.Kind) (model.MediaItem, error) {
	var m model.MediaItem
	const q = `
	INSERT INTO media
	(id, name, url, kind, created_at, updated_at)
	VALUES
	($1, $2,   $3,  $4,   now(),      now())
	RETURNING
	id, name, url, kind, created_at, updated_at;`

	if err := s.db.GetContext(ctx, &m, q, uuid.NewString(), name, url, kind); err != nil {
		log.Error().Err(err).Str("name", name).Msg("[db] failed to create media")
		return model.MediaItem{}, translate(err)
	}
	return m, nil
}

func (s *pgStore) GetMediaByID(ctx context.Context, id string) (model.MediaItem, error) {
	var m model.MediaItem
	const q = `
	SELECT id, name, url, kind, created_at, updated_at
	FROM media
	WHERE id = $1;`
	if err := s.db.GetContext(ctx, &m, q, id); err != nil {
		return model.MediaItem{}, translate(err)
	}
	return m, nil
}

func (s *pgStore) ListMedia(ctx context.Context) ([]model.MediaItem, error) {
	all := []model.MediaItem{}
	const q = `
	SELECT
	id,
	name,
	url,
	kind,
	created_at,
	updated_at
	FROM media
	ORDER BY created_at, id;`
	if err := s.db.SelectContext(ctx, &all, q); err != nil {
		log.Error().Err(err).Msg("[db] failed to list media")
		return nil, err
	}
	return all, nil
}

func (s *pgStore) UpdateMedia(ctx context.Context, id string, patch model.MediaPatch) error {
	err := s.execOne(ctx, `
		UPDATE media
		SET
		name       = COALESCE($2, name),
		url        = COALESCE($3, url),
		kind       = COALESCE($4, kind),
		updated_at = now()
		WHERE id = $1;`,
		id, patch.Name, patch.URL, patch.Kind,
	)
	if err != nil && err != ErrNotFound {
		log.Error().Err(err).Str("media_id", id).Msg("[db] failed to update media")
	}
	return err
}

// DeleteMedia removes the catalog entry only; playlists holding a copy of
// it are left alone.
func (s *pgStore) DeleteMedia(ctx context.Context, id string) error {
	err := s.execOne(ctx, `DELETE FROM media WHERE id = $1;`, id)
	if err != nil && err != ErrNotFound {
		log.Error().Err(err).Str("media_id", id).Msg("[db] failed to delete media")
	}
	return err
}

func (s *pgStore) CountMedia(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM media;`); err != nil {
		log.Error().Err(err).Msg("[db] failed to count media")
		return 0, err
	}
	return n, nil
}
