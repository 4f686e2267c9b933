// Package assign computes and stores the playlists shown by display users.
package assign

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/Nixie-Tech-LLC/loopboard/internal/db"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
	"github.com/Nixie-Tech-LLC/loopboard/internal/validator"
)

// ErrPartialCommit is returned when a bulk commit reached only some users.
// Writes that succeeded stay in place.
var ErrPartialCommit = errors.New("assignment was not applied to every user")

const maxConcurrentWrites = 8

// Target is either a single user or every user.
type Target struct {
	UserID string
	All    bool
}

func User(id string) Target { return Target{UserID: id} }

var All = Target{All: true}

// UserResult is the outcome of one per-user write.
type UserResult struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

type Result struct {
	Playlist model.Playlist `json:"media_playing"`
	Users    []UserResult   `json:"users"`
}

// Invalidator drops cached poll responses for a user.
type Invalidator interface {
	Invalidate(ctx context.Context, userID string)
}

type Engine struct {
	store db.Store
	cache Invalidator
}

// NewEngine builds an engine. cache may be nil.
func NewEngine(store db.Store, cache Invalidator) *Engine {
	return &Engine{store: store, cache: cache}
}

// Commit overwrites the target's playlist with a copy of the selection.
func (e *Engine) Commit(ctx context.Context, target Target, sel *Selection) (Result, error) {
	playlist := sel.Refs()
	if playlist.HasYouTube() && len(playlist) > 1 {
		return Result{Playlist: playlist}, validator.Invalid("media_ids", "YOUTUBE", "a YouTube item must be the only entry")
	}
	if !target.All {
		if err := e.write(ctx, target.UserID, playlist); err != nil {
			return Result{Playlist: playlist, Users: []UserResult{{UserID: target.UserID, Error: err.Error()}}}, err
		}
		return Result{Playlist: playlist, Users: []UserResult{{UserID: target.UserID, OK: true}}}, nil
	}
	return e.commitAll(ctx, playlist)
}

// commitAll writes every user independently. There is no rollback.
func (e *Engine) commitAll(ctx context.Context, playlist model.Playlist) (Result, error) {
	users, err := e.store.ListUsers(ctx)
	if err != nil {
		return Result{Playlist: playlist}, fmt.Errorf("list users: %w", err)
	}

	results := make([]UserResult, len(users))
	var (
		mu   sync.Mutex
		errs error
	)

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentWrites)
	for i, u := range users {
		i, u := i, u
		g.Go(func() error {
			res := UserResult{UserID: u.ID, Username: u.Username, OK: true}
			// each user gets its own copy
			if err := e.write(ctx, u.ID, playlist.Clone()); err != nil {
				res.OK = false
				res.Error = err.Error()
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("user %s: %w", u.Username, err))
				mu.Unlock()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	out := Result{Playlist: playlist, Users: results}
	if errs != nil {
		failed := len(multierr.Errors(errs))
		log.Warn().Err(errs).Int("failed", failed).Int("total", len(users)).Msg("[assign] bulk commit incomplete")
		return out, fmt.Errorf("%w (%d of %d failed): %w", ErrPartialCommit, failed, len(users), errs)
	}
	log.Info().Int("users", len(users)).Int("items", len(playlist)).Msg("[assign] committed to all users")
	return out, nil
}

func (e *Engine) write(ctx context.Context, userID string, playlist model.Playlist) error {
	if err := e.store.SetUserMedia(ctx, userID, playlist); err != nil {
		return err
	}
	if e.cache != nil {
		e.cache.Invalidate(ctx, userID)
	}
	log.Debug().Str("user_id", userID).Int("items", len(playlist)).Msg("[assign] playlist written")
	return nil
}
