// Package scheduler advances a player through its playlist. Two states:
// idle (nothing to show) and playing(index). Images advance on a timer of
// exactly their configured duration; videos advance only when the media
// layer signals natural completion or an unrecoverable error.
package scheduler

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Glowcast-Media/glowcast/internal/model"
)

// logDebounce suppresses a duplicate proof-of-play entry when the signal
// that enters a playing state re-fires spuriously.
const logDebounce = time.Second

// Play identifies one entry into playing(index). The media layer hands the
// generation back when signaling completion, so a late or duplicate signal
// can never advance a play it doesn't belong to.
type Play struct {
	Item       model.PlaylistItem
	Index      int
	Generation uint64
	StartedAt  time.Time
}

// OnPlay is invoked at the moment an item begins playing. Proof-of-play is
// start-weighted: a play interrupted mid-way has already been recorded with
// its full intended duration.
type OnPlay func(play Play)

type Scheduler struct {
	mu    sync.Mutex
	clock Clock

	onPlay OnPlay

	playlist   []model.PlaylistItem
	index      int
	playing    bool
	generation uint64
	timer      Timer

	lastLoggedBooking int
	lastLoggedAt      time.Time
}

func New(clock Clock, onPlay OnPlay) *Scheduler {
	return &Scheduler{clock: clock, onPlay: onPlay}
}

// SetPlaylist replaces the playlist wholesale. A currently playing item is
// never interrupted; the next advance resolves against the new list. From
// idle, a non-empty playlist starts playing immediately.
func (s *Scheduler) SetPlaylist(items []model.PlaylistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.playlist = make([]model.PlaylistItem, len(items))
	copy(s.playlist, items)

	if !s.playing && len(s.playlist) > 0 {
		s.index = 0
		s.enterLocked()
	}
	if len(s.playlist) == 0 && !s.playing {
		log.Debug().Msg("playlist empty, waiting for content")
	}
}

// Current returns the item now playing, if any.
func (s *Scheduler) Current() (Play, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing || s.index >= len(s.playlist) {
		return Play{}, false
	}
	return Play{
		Item:       s.playlist[s.index],
		Index:      s.index,
		Generation: s.generation,
	}, true
}

// MediaEnded signals natural completion of the given play's video.
func (s *Scheduler) MediaEnded(generation uint64) {
	s.videoSignal(generation, "ended")
}

// MediaFailed signals an unrecoverable error for the given play's video.
// Treated identically to completion: advancing trades "show everything"
// for "show something".
func (s *Scheduler) MediaFailed(generation uint64) {
	s.videoSignal(generation, "error")
}

// Stop halts playback and cancels any pending timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.playing = false
	s.generation++
}

func (s *Scheduler) videoSignal(generation uint64, kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing || generation != s.generation {
		// stale signal from an item that already advanced
		return
	}
	// a replacement playlist may have shrunk below the playing index; the
	// signaled item is gone, so advance into the new list (or to idle)
	if s.index < len(s.playlist) && s.playlist[s.index].MediaType != model.MediaVideo {
		return
	}
	log.Debug().Str("signal", kind).Int("index", s.index).Msg("video finished")
	s.advanceLocked()
}

// advanceLocked moves to the next index modulo the current playlist, or to
// idle when the playlist has emptied out underneath the current item.
func (s *Scheduler) advanceLocked() {
	s.stopTimerLocked()

	if len(s.playlist) == 0 {
		s.playing = false
		s.generation++
		log.Debug().Msg("playlist empty, waiting for content")
		return
	}

	s.index = (s.index + 1) % len(s.playlist)
	s.enterLocked()
}

// enterLocked enters playing(index): records the proof-of-play entry and,
// for images, arms the advance timer.
func (s *Scheduler) enterLocked() {
	s.playing = true
	s.generation++
	generation := s.generation
	item := s.playlist[s.index]
	now := s.clock.Now()

	if item.BookingID != s.lastLoggedBooking || now.Sub(s.lastLoggedAt) >= logDebounce {
		s.lastLoggedBooking = item.BookingID
		s.lastLoggedAt = now
		if s.onPlay != nil {
			s.onPlay(Play{Item: item, Index: s.index, Generation: generation, StartedAt: now})
		}
	}

	if item.MediaType == model.MediaImage {
		d := time.Duration(item.Duration) * time.Second
		s.timer = s.clock.AfterFunc(d, func() {
			s.imageTimerFired(generation)
		})
	}
	// videos hold the state until MediaEnded/MediaFailed
}

func (s *Scheduler) imageTimerFired(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing || generation != s.generation {
		return
	}
	s.advanceLocked()
}

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
