package main

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
	"github.com/Nixie-Tech-LLC/loopboard/internal/playback"
)

// LogRenderer stands in for a screen. Videos are given a fixed length after
// which the player is told they ended.
type LogRenderer struct {
	player      *playback.Player
	videoLength time.Duration

	mu      sync.Mutex
	showing model.MediaRef
	index   int
	video   *time.Timer
}

func (r *LogRenderer) Render(st playback.State) {
	cur, ok := st.Current()

	r.mu.Lock()
	defer r.mu.Unlock()
	// same item re-rendered by a poll; a finished video must start over
	if ok && cur == r.showing && st.Index == r.index && (cur.Kind != model.KindVideo || r.video != nil) {
		return
	}
	if r.video != nil {
		r.video.Stop()
		r.video = nil
	}
	r.showing, r.index = cur, st.Index

	if !ok {
		log.Info().Str("phase", st.Phase.String()).Msg("[screen] idle")
		r.showing = model.MediaRef{}
		return
	}

	log.Info().Str("phase", st.Phase.String()).Int("index", st.Index).Int("of", len(st.Playlist)).
		Str("type", string(cur.Kind)).Str("name", cur.Name).Str("url", cur.URL).Msg("[screen] showing")

	if cur.Kind == model.KindYouTube {
		if id := model.YouTubeID(cur.URL); id != "" {
			log.Info().Str("embed", "https://www.youtube.com/embed/"+id+"?autoplay=1&mute=1").Msg("[screen] youtube")
		}
	}
	if cur.Kind == model.KindVideo && r.player != nil {
		var t *time.Timer
		t = time.AfterFunc(r.videoLength, func() {
			r.mu.Lock()
			if r.video == t {
				r.video = nil
			}
			r.mu.Unlock()
			r.player.VideoEnded()
		})
		r.video = t
	}
}

func (r *LogRenderer) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.video != nil {
		r.video.Stop()
		r.video = nil
	}
}
