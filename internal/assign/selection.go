package assign

import "github.com/Nixie-Tech-LLC/loopboard/internal/model"

// Selection is the admin's running multi-select. It is either any number of
// non-YouTube entries in toggle order, unique by URL, or exactly one YouTube
// entry. Never both.
type Selection struct {
	items []model.MediaRef
}

func NewSelection() *Selection {
	return &Selection{}
}

// FromRefs seeds a selection with a user's current playlist.
func FromRefs(refs []model.MediaRef) *Selection {
	s := &Selection{items: make([]model.MediaRef, len(refs))}
	copy(s.items, refs)
	return s
}

// Toggle flips item in or out of the selection.
func (s *Selection) Toggle(item model.MediaRef) {
	if item.Kind == model.KindYouTube {
		if len(s.items) > 0 && s.items[0].Kind == model.KindYouTube {
			s.items = s.items[:0]
			return
		}
		s.items = []model.MediaRef{item}
		return
	}

	kept := s.items[:0]
	found := false
	for _, ref := range s.items {
		if ref.Kind == model.KindYouTube {
			continue
		}
		if ref.URL == item.URL {
			found = true
			continue
		}
		kept = append(kept, ref)
	}
	s.items = kept
	if !found {
		s.items = append(s.items, item)
	}
}

// Refs returns a copy of the selection, ready to be stored.
func (s *Selection) Refs() model.Playlist {
	out := make(model.Playlist, len(s.items))
	copy(out, s.items)
	return out
}
