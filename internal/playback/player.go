package playback

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

// ErrAccountGone is returned by a Fetcher when the display's account no
// longer exists. The session then shows nothing, as for an empty playlist.
var ErrAccountGone = errors.New("display account no longer exists")

const (
	DefaultPollInterval = 5 * time.Second
	DefaultDwell        = 5 * time.Second
)

// Fetcher re-reads the display's own account.
type Fetcher interface {
	Fetch(ctx context.Context) (model.Snapshot, error)
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc func(ctx context.Context) (model.Snapshot, error)

func (f FetchFunc) Fetch(ctx context.Context) (model.Snapshot, error) { return f(ctx) }

// Renderer shows a state. It is called from the player goroutine only.
type Renderer interface {
	Render(State)
}

type Option func(*Player)

func WithPollInterval(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

func WithDwell(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.dwell = d
		}
	}
}

func WithClock(c Clock) Option {
	return func(p *Player) { p.clock = c }
}

// Player runs a Session: it polls on a fixed interval measured from start,
// applies results through the session's sequence check and advances the
// playlist on the dwell timer, video end or an explicit Next.
type Player struct {
	session  *Session
	fetcher  Fetcher
	renderer Renderer
	clock    Clock

	pollInterval time.Duration
	dwell        time.Duration

	videoEnded chan struct{}
	next       chan struct{}
}

func NewPlayer(fetcher Fetcher, renderer Renderer, opts ...Option) *Player {
	p := &Player{
		session:      NewSession(),
		fetcher:      fetcher,
		renderer:     renderer,
		clock:        realClock{},
		pollInterval: DefaultPollInterval,
		dwell:        DefaultDwell,
		videoEnded:   make(chan struct{}, 1),
		next:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Player) Session() *Session { return p.session }

// VideoEnded reports that the video on screen finished playing.
func (p *Player) VideoEnded() { signal(p.videoEnded) }

// Next skips to the next item. It is the only way past a YouTube item.
func (p *Player) Next() { signal(p.next) }

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

type fetchResult struct {
	seq  uint64
	snap model.Snapshot
	err  error
}

// Run blocks until ctx is done. A Disconnected session keeps polling so an
// admin can bring the display back.
func (p *Player) Run(ctx context.Context) error {
	ticker := p.clock.NewTicker(p.pollInterval)
	defer ticker.Stop()

	results := make(chan fetchResult)
	var dwell Timer
	stopDwell := func() {
		if dwell != nil {
			dwell.Stop()
			dwell = nil
		}
	}
	defer stopDwell()

	shown := p.session.State()
	p.renderer.Render(shown)

	show := func(st State, restart bool) {
		prev, _ := shown.Current()
		cur, ok := st.Current()
		if st.Phase != shown.Phase || st.Index != shown.Index || prev != cur {
			restart = true
		}
		if !restart && st.equal(shown) {
			return
		}
		if st.Phase == Disconnected && shown.Phase != Disconnected {
			log.Info().Msg("[playback] session disconnected")
		}
		shown = st
		p.renderer.Render(st)
		if !restart {
			return
		}
		stopDwell()
		if ok && cur.Kind == model.KindImage {
			dwell = p.clock.NewTimer(p.dwell)
		}
	}

	p.poll(ctx, results)
	for {
		var dwellC <-chan time.Time
		if dwell != nil {
			dwellC = dwell.C()
		}

		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C():
			p.poll(ctx, results)

		case res := <-results:
			if errors.Is(res.err, ErrAccountGone) {
				log.Warn().Err(res.err).Msg("[playback] account is gone, clearing playlist")
				if st, ok := p.session.Apply(res.seq, model.Snapshot{Status: model.StatusPlaying}); ok {
					show(st, false)
				}
				continue
			}
			if res.err != nil {
				if !errors.Is(res.err, context.Canceled) {
					log.Warn().Err(res.err).Uint64("seq", res.seq).Msg("[playback] poll failed, keeping current state")
				}
				continue
			}
			st, ok := p.session.Apply(res.seq, res.snap)
			if !ok {
				log.Debug().Uint64("seq", res.seq).Msg("[playback] dropped stale poll result")
				continue
			}
			show(st, false)

		case <-dwellC:
			dwell = nil
			show(p.session.Advance(), true)

		case <-p.videoEnded:
			if cur, ok := shown.Current(); ok && cur.Kind == model.KindVideo {
				show(p.session.Advance(), true)
			}

		case <-p.next:
			if shown.Phase == Presenting {
				show(p.session.Advance(), true)
			}
		}
	}
}

// poll starts one fetch tagged with a fresh sequence number.
func (p *Player) poll(ctx context.Context, results chan<- fetchResult) {
	seq := p.session.Begin()
	go func() {
		snap, err := p.fetcher.Fetch(ctx)
		select {
		case results <- fetchResult{seq: seq, snap: snap, err: err}:
		case <-ctx.Done():
		}
	}()
}
