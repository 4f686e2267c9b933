// exposes a Store interface that is passed to services and API modules
package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Store is the record store holding the admins, users and media
// collections. Implementations give last-write-wins semantics and no
// multi-record transactions.
type Store interface {
	Ping(ctx context.Context) error

	// admin functions
	CreateAdmin(ctx context.Context, username, passwordHash string) (model.AdminAccount, error)
	GetAdminByUsername(ctx context.Context, username string) (model.AdminAccount, error)
	CountAdmins(ctx context.Context) (int, error)

	// display user functions
	CreateUser(ctx context.Context, username, passwordHash string, location *string) (model.UserAccount, error)
	GetUserByID(ctx context.Context, id string) (model.UserAccount, error)
	GetUserByUsername(ctx context.Context, username string) (model.UserAccount, error)
	ListUsers(ctx context.Context) ([]model.UserAccount, error)
	UpdateUser(ctx context.Context, id string, patch model.UserPatch) error
	SetUserStatus(ctx context.Context, id string, status model.Status) error
	SetUserMedia(ctx context.Context, id string, playlist model.Playlist) error
	DeleteUser(ctx context.Context, id string) error
	CountUsersByStatus(ctx context.Context, status model.Status) (int, error)

	// media functions
	CreateMedia(ctx context.Context, name, url string, kind model.Kind) (model.MediaItem, error)
	GetMediaByID(ctx context.Context, id string) (model.MediaItem, error)
	ListMedia(ctx context.Context) ([]model.MediaItem, error)
	UpdateMedia(ctx context.Context, id string, patch model.MediaPatch) error
	DeleteMedia(ctx context.Context, id string) error
	CountMedia(ctx context.Context) (int, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrConflict
	}
	return err
}

// execOne runs a statement that must touch exactly one row.
func (s *pgStore) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
