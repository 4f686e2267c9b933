package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

type fakeTicker struct{ ch chan time.Time }

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               {}

type fakeTimer struct {
	d  time.Duration
	ch chan time.Time
}

func (f *fakeTimer) C() <-chan time.Time { return f.ch }
func (f *fakeTimer) Stop() bool          { return true }

func (f *fakeTimer) fire() { f.ch <- time.Now() }

type fakeClock struct {
	ticker *fakeTicker
	timers chan *fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		ticker: &fakeTicker{ch: make(chan time.Time)},
		timers: make(chan *fakeTimer, 16),
	}
}

func (c *fakeClock) NewTicker(time.Duration) Ticker { return c.ticker }

func (c *fakeClock) NewTimer(d time.Duration) Timer {
	t := &fakeTimer{d: d, ch: make(chan time.Time, 1)}
	c.timers <- t
	return t
}

func (c *fakeClock) tick() { c.ticker.ch <- time.Now() }

type chanRenderer struct{ ch chan State }

func (r *chanRenderer) Render(st State) { r.ch <- st }

type stubFetcher struct {
	mu   sync.Mutex
	snap model.Snapshot
	err  error
}

func (f *stubFetcher) set(snap model.Snapshot, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap, f.err = snap, err
}

func (f *stubFetcher) Fetch(context.Context) (model.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, f.err
}

type harness struct {
	clock    *fakeClock
	renders  chan State
	fetcher  *stubFetcher
	player   *Player
	cancel   context.CancelFunc
	finished chan struct{}
}

func startPlayer(t *testing.T, snap model.Snapshot) *harness {
	t.Helper()
	h := &harness{
		clock:    newFakeClock(),
		renders:  make(chan State, 32),
		fetcher:  &stubFetcher{snap: snap},
		finished: make(chan struct{}),
	}
	h.player = NewPlayer(h.fetcher, &chanRenderer{ch: h.renders}, WithClock(h.clock), WithDwell(5*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() {
		_ = h.player.Run(ctx)
		close(h.finished)
	}()
	t.Cleanup(func() {
		cancel()
		<-h.finished
	})

	require.Equal(t, Loading, h.next(t).Phase)
	return h
}

func (h *harness) next(t *testing.T) State {
	t.Helper()
	select {
	case st := <-h.renders:
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for render")
		return State{}
	}
}

func (h *harness) timer(t *testing.T) *fakeTimer {
	t.Helper()
	select {
	case tm := <-h.clock.timers:
		return tm
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dwell timer")
		return nil
	}
}

func (h *harness) noTimer(t *testing.T) {
	t.Helper()
	select {
	case <-h.clock.timers:
		t.Fatal("unexpected dwell timer")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPlayerImageDwellAdvances(t *testing.T) {
	h := startPlayer(t, playing(playlistOf(2)))

	st := h.next(t)
	require.Equal(t, Presenting, st.Phase)
	assert.Equal(t, 0, st.Index)
	tm := h.timer(t)
	assert.Equal(t, 5*time.Second, tm.d)

	tm.fire()
	assert.Equal(t, 1, h.next(t).Index)

	h.timer(t).fire()
	assert.Equal(t, 0, h.next(t).Index)
}

func TestPlayerDisconnectWithinOnePoll(t *testing.T) {
	h := startPlayer(t, playing(playlistOf(3)))
	require.Equal(t, Presenting, h.next(t).Phase)
	h.timer(t)

	h.fetcher.set(model.Snapshot{Status: model.StatusDisconnect, MediaPlaying: playlistOf(3)}, nil)
	h.clock.tick()

	st := h.next(t)
	assert.Equal(t, Disconnected, st.Phase)
	_, showing := st.Current()
	assert.False(t, showing)
}

func TestPlayerFetchErrorKeepsState(t *testing.T) {
	h := startPlayer(t, playing(playlistOf(2)))
	require.Equal(t, Presenting, h.next(t).Phase)
	h.timer(t)

	h.fetcher.set(model.Snapshot{}, errors.New("connection refused"))
	h.clock.tick()

	h.fetcher.set(playing(model.Playlist{}), nil)
	h.clock.tick()

	// the failed poll produced no render of its own
	assert.Equal(t, Empty, h.next(t).Phase)
}

func TestPlayerAccountGoneShowsEmpty(t *testing.T) {
	h := startPlayer(t, playing(playlistOf(2)))
	require.Equal(t, Presenting, h.next(t).Phase)
	h.timer(t)

	h.fetcher.set(model.Snapshot{}, fmt.Errorf("poll: %w", ErrAccountGone))
	h.clock.tick()

	st := h.next(t)
	assert.Equal(t, Empty, st.Phase)
	assert.Empty(t, st.Playlist)

	// repeated failures leave it there without re-rendering
	h.clock.tick()
	h.fetcher.set(playing(playlistOf(1)), nil)
	h.clock.tick()
	assert.Equal(t, Presenting, h.next(t).Phase)
}

func TestPlayerVideoWaitsForEnd(t *testing.T) {
	video := model.MediaRef{Name: "clip", Kind: model.KindVideo, URL: "https://x/clip.mp4"}
	image := model.MediaRef{Name: "still", Kind: model.KindImage, URL: "https://x/still.png"}
	h := startPlayer(t, playing(model.Playlist{video, image}))

	st := h.next(t)
	require.Equal(t, Presenting, st.Phase)
	h.noTimer(t)

	h.player.Next()
	assert.Equal(t, 1, h.next(t).Index)
	h.timer(t)

	// not a video on screen, so ignored
	h.player.VideoEnded()
	h.player.Next()
	assert.Equal(t, 0, h.next(t).Index)

	h.player.VideoEnded()
	assert.Equal(t, 1, h.next(t).Index)
}

func TestPlayerYouTubeOnlyAdvancesOnNext(t *testing.T) {
	yt := model.MediaRef{Name: "yt", Kind: model.KindYouTube, URL: "https://youtu.be/dQw4w9WgXcQ"}
	h := startPlayer(t, playing(model.Playlist{yt}))

	require.Equal(t, Presenting, h.next(t).Phase)
	h.noTimer(t)

	h.player.VideoEnded()
	h.clock.tick()
	h.player.Next()

	st := h.next(t)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, Presenting, st.Phase)
}

func TestPlayerRepeatedPollDoesNotRestartDwell(t *testing.T) {
	h := startPlayer(t, playing(playlistOf(2)))
	require.Equal(t, Presenting, h.next(t).Phase)
	tm := h.timer(t)

	h.clock.tick()
	h.clock.tick()
	h.noTimer(t)

	tm.fire()
	assert.Equal(t, 1, h.next(t).Index)
}

func TestPlayerStopsOnCancel(t *testing.T) {
	h := startPlayer(t, playing(nil))
	assert.Equal(t, Empty, h.next(t).Phase)
	h.cancel()
	select {
	case <-h.finished:
	case <-time.After(2 * time.Second):
		t.Fatal("player did not stop")
	}
}
