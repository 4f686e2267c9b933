// Package playback drives what a display shows: a state machine fed by
// periodic re-reads of the display's own account, plus the timers that
// advance through its playlist.
package playback

import (
	"sync"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

type Phase int

const (
	Loading Phase = iota
	Disconnected
	Empty
	Presenting
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Disconnected:
		return "disconnected"
	case Empty:
		return "empty"
	case Presenting:
		return "presenting"
	}
	return "unknown"
}

// State is an immutable view of the session.
type State struct {
	Phase    Phase
	Playlist model.Playlist
	Index    int
}

// Current returns the item on screen while presenting.
func (s State) Current() (model.MediaRef, bool) {
	if s.Phase != Presenting || s.Index < 0 || s.Index >= len(s.Playlist) {
		return model.MediaRef{}, false
	}
	return s.Playlist[s.Index], true
}

func (s State) equal(o State) bool {
	return s.Phase == o.Phase && s.Index == o.Index && s.Playlist.Equal(o.Playlist)
}

// Session is the playback state machine. Poll results are applied in the
// order their fetches were started: a result older than the last applied
// one is dropped.
type Session struct {
	mu        sync.Mutex
	state     State
	issued    uint64
	applied   uint64
	presented bool
}

func NewSession() *Session {
	return &Session{state: State{Phase: Loading}}
}

// Begin issues the sequence number for a new fetch.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Apply folds a fetched snapshot into the session. It reports whether the
// result was accepted and the state after it.
func (s *Session) Apply(seq uint64, snap model.Snapshot) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied {
		return s.snapshot(), false
	}
	s.applied = seq

	next := State{Phase: Disconnected, Index: s.state.Index}
	switch {
	case snap.Status != model.StatusPlaying:
		next.Playlist = s.state.Playlist
	case len(snap.MediaPlaying) == 0:
		next.Phase = Empty
		next.Playlist = model.Playlist{}
		next.Index = 0
	default:
		next.Phase = Presenting
		next.Playlist = snap.MediaPlaying.Clone()
		if !s.presented {
			next.Index = 0
			s.presented = true
		}
		if next.Index >= len(next.Playlist) {
			next.Index = 0
		}
	}
	s.state = next
	return s.snapshot(), true
}

// Advance moves to the next item, wrapping at the end. Outside Presenting
// it does nothing.
func (s *Session) Advance() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase == Presenting && len(s.state.Playlist) > 0 {
		s.state.Index = (s.state.Index + 1) % len(s.state.Playlist)
	}
	return s.snapshot()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// callers hold s.mu
func (s *Session) snapshot() State {
	st := s.state
	if st.Playlist != nil {
		st.Playlist = st.Playlist.Clone()
	}
	return st
}
