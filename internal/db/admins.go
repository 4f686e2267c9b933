package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

// inserts a new admin, returns the stored record.
func (s *pgStore) CreateAdmin(ctx context.Context, username, passwordHash string) (model.AdminAccount, error) {
	var a model.AdminAccount
	const q = `
	INSERT INTO admins (id, username, password_hash, created_at)
	VALUES ($1, $2, $3, now())
	RETURNING id, username, password_hash, created_at;`
	if err := s.db.GetContext(ctx, &a, q, uuid.NewString(), username, passwordHash); err != nil {
		log.Error().Err(err).Str("username", username).Msg("[db] failed to create admin")
		return model.AdminAccount{}, translate(err)
	}
	return a, nil
}

// fetches an admin by username. returns ErrNotFound if missing.
func (s *pgStore) GetAdminByUsername(ctx context.Context, username string) (model.AdminAccount, error) {
	var a model.AdminAccount
	const q = `
	SELECT id, username, password_hash, created_at
	FROM admins
	WHERE username = $1;`
	if err := s.db.GetContext(ctx, &a, q, username); err != nil {
		return model.AdminAccount{}, translate(err)
	}
	return a, nil
}

func (s *pgStore) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM admins;`); err != nil {
		log.Error().Err(err).Msg("[db] failed to count admins")
		return 0, err
	}
	return n, nil
}
