// Package presence maintains the coarse playing/disconnect flag of display
// accounts. There is no heartbeat: a client that dies without logging out
// stays "playing" until an admin deactivates it.
package presence

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/db"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

// Invalidator drops cached poll responses for a user.
type Invalidator interface {
	Invalidate(ctx context.Context, userID string)
}

type Service struct {
	store db.Store
	cache Invalidator
}

// NewService builds the presence signal. cache may be nil.
func NewService(store db.Store, cache Invalidator) *Service {
	return &Service{store: store, cache: cache}
}

// MarkPlaying is written at login, before the session is handed out.
func (s *Service) MarkPlaying(ctx context.Context, userID string) error {
	return s.set(ctx, userID, model.StatusPlaying, "login")
}

// Activate lets an admin put a deactivated display back on air.
func (s *Service) Activate(ctx context.Context, userID string) error {
	return s.set(ctx, userID, model.StatusPlaying, "activate")
}

// Deactivate is the admin kill switch. The display notices on its next poll.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	return s.set(ctx, userID, model.StatusDisconnect, "deactivate")
}

func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.set(ctx, userID, model.StatusDisconnect, "logout")
}

// Unload is the best-effort write sent while the client is going away.
func (s *Service) Unload(ctx context.Context, userID string) error {
	return s.set(ctx, userID, model.StatusDisconnect, "unload")
}

// SetStatus applies an explicit status, as sent by the admin status endpoint.
func (s *Service) SetStatus(ctx context.Context, userID string, status model.Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	if status == model.StatusPlaying {
		return s.Activate(ctx, userID)
	}
	return s.Deactivate(ctx, userID)
}

func (s *Service) CountPlaying(ctx context.Context) (int, error) {
	return s.store.CountUsersByStatus(ctx, model.StatusPlaying)
}

func (s *Service) set(ctx context.Context, userID string, status model.Status, reason string) error {
	if err := s.store.SetUserStatus(ctx, userID, status); err != nil {
		return fmt.Errorf("set status %s: %w", status, err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	log.Info().Str("user_id", userID).Str("status", string(status)).Str("reason", reason).Msg("[presence] status changed")
	return nil
}
