package assign

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

func ref(name string, kind model.Kind) model.MediaRef {
	return model.MediaRef{Name: name, Kind: kind, URL: "https://media.example.com/" + name}
}

var (
	img1 = ref("m1", model.KindImage)
	vid2 = ref("m2", model.KindVideo)
	img3 = ref("m3", model.KindImage)
	yt1  = ref("y1", model.KindYouTube)
	yt2  = ref("y2", model.KindYouTube)
)

func TestToggle(t *testing.T) {
	tests := []struct {
		name    string
		start   []model.MediaRef
		toggles []model.MediaRef
		want    model.Playlist
	}{
		{"append in click order", nil, []model.MediaRef{img1, vid2}, model.Playlist{img1, vid2}},
		{"remove present item", nil, []model.MediaRef{img1, vid2, img1}, model.Playlist{vid2}},
		{"youtube replaces", []model.MediaRef{img1, vid2}, []model.MediaRef{yt1}, model.Playlist{yt1}},
		{"youtube toggles off", nil, []model.MediaRef{yt1, yt1}, model.Playlist{}},
		{"second youtube clears", nil, []model.MediaRef{yt1, yt2}, model.Playlist{}},
		{"non-youtube strips youtube", nil, []model.MediaRef{yt1, img3}, model.Playlist{img3}},
		{"seeded from current", []model.MediaRef{img1}, []model.MediaRef{vid2}, model.Playlist{img1, vid2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := FromRefs(tt.start)
			for _, r := range tt.toggles {
				s.Toggle(r)
			}
			assert.Equal(t, tt.want, s.Refs())
		})
	}
}

func TestToggle_DedupByURL(t *testing.T) {
	s := NewSelection()
	s.Toggle(img1)
	renamed := img1
	renamed.Name = "same url, new name"
	s.Toggle(renamed)
	assert.Empty(t, s.Refs())
}

func TestRefsIsCopy(t *testing.T) {
	s := NewSelection()
	s.Toggle(img1)
	out := s.Refs()
	out[0].Name = "changed"
	assert.Equal(t, "m1", s.Refs()[0].Name)
}

// Any toggle sequence leaves either only non-YouTube entries or a single
// YouTube entry.
func TestSelectionExclusivity(t *testing.T) {
	pool := []model.MediaRef{img1, vid2, img3, yt1, yt2, ref("m4", model.KindVideo)}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 500; run++ {
		s := NewSelection()
		for step := 0; step < 30; step++ {
			s.Toggle(pool[rng.Intn(len(pool))])

			refs := s.Refs()
			youtube := 0
			urls := map[string]bool{}
			for _, r := range refs {
				if r.Kind == model.KindYouTube {
					youtube++
				}
				require.False(t, urls[r.URL], "duplicate url in run %d", run)
				urls[r.URL] = true
			}
			require.LessOrEqual(t, youtube, 1, fmt.Sprintf("run %d step %d: %v", run, step, refs))
			if youtube == 1 {
				require.Len(t, refs, 1, fmt.Sprintf("run %d step %d: %v", run, step, refs))
			}
		}
	}
}

// Toggling the same non-YouTube item twice restores the prior membership
// when the selection held no YouTube entry.
func TestReToggleRestoresMembership(t *testing.T) {
	pool := []model.MediaRef{img1, vid2, img3, ref("m4", model.KindVideo), ref("m5", model.KindImage)}
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 300; run++ {
		s := NewSelection()
		for i := 0; i < rng.Intn(6); i++ {
			s.Toggle(pool[rng.Intn(len(pool))])
		}
		before := s.Refs()
		item := pool[rng.Intn(len(pool))]

		s.Toggle(item)
		s.Toggle(item)
		assert.ElementsMatch(t, before, s.Refs())
	}
}
