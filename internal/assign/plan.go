package assign

import (
	"context"
	"fmt"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

// Request replays an admin's clicks: each media id is toggled in order
// against an empty selection, or against the user's current playlist when
// FromCurrent is set.
type Request struct {
	Target      Target
	FromCurrent bool
	MediaIDs    []string
}

// Plan builds the selection for req without writing anything.
func (e *Engine) Plan(ctx context.Context, req Request) (*Selection, error) {
	sel := NewSelection()
	if req.FromCurrent && !req.Target.All {
		u, err := e.store.GetUserByID(ctx, req.Target.UserID)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", req.Target.UserID, err)
		}
		sel = FromRefs(u.MediaPlaying)
	}

	cache := make(map[string]model.MediaItem, len(req.MediaIDs))
	for _, id := range req.MediaIDs {
		item, ok := cache[id]
		if !ok {
			var err error
			item, err = e.store.GetMediaByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("media %s: %w", id, err)
			}
			cache[id] = item
		}
		sel.Toggle(item.Ref())
	}
	return sel, nil
}
