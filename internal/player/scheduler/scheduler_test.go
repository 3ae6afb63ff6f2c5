package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Glowcast-Media/glowcast/internal/model"
)

// fakeClock drives playback timing deterministically. Advance moves time
// forward and fires due timers in order, including timers armed by the
// callbacks it runs.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := t.stopped
	t.stopped = true
	return !was
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var due *fakeTimer
		for i, t := range c.timers {
			if !t.stopped && !t.at.After(c.now) {
				due = t
				c.timers = append(c.timers[:i], c.timers[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
		if due == nil {
			return
		}
		due.f()
	}
}

type playRecorder struct {
	mu    sync.Mutex
	plays []Play
}

func (r *playRecorder) record(p Play) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plays = append(r.plays, p)
}

func (r *playRecorder) bookings() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, len(r.plays))
	for i, p := range r.plays {
		ids[i] = p.Item.BookingID
	}
	return ids
}

func (r *playRecorder) last() Play {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plays[len(r.plays)-1]
}

func image(bookingID, duration int) model.PlaylistItem {
	return model.PlaylistItem{BookingID: bookingID, MediaType: model.MediaImage, Duration: duration}
}

func video(bookingID, duration int) model.PlaylistItem {
	return model.PlaylistItem{BookingID: bookingID, MediaType: model.MediaVideo, Duration: duration}
}

func TestImagesAdvanceOnTheirOwnDuration(t *testing.T) {
	clock := newFakeClock()
	rec := &playRecorder{}
	s := New(clock, rec.record)

	s.SetPlaylist([]model.PlaylistItem{image(1, 2), image(2, 3), image(3, 5)})
	assert.Equal(t, []int{1}, rec.bookings())

	clock.Advance(2 * time.Second)
	assert.Equal(t, []int{1, 2}, rec.bookings())

	// one second shy of item 2's duration, nothing moves
	clock.Advance(2 * time.Second)
	assert.Equal(t, []int{1, 2}, rec.bookings())

	clock.Advance(1 * time.Second)
	assert.Equal(t, []int{1, 2, 3}, rec.bookings())

	// wraps back to the head
	clock.Advance(5 * time.Second)
	assert.Equal(t, []int{1, 2, 3, 1}, rec.bookings())
}

func TestSingleImageLoopsPeriodically(t *testing.T) {
	clock := newFakeClock()
	rec := &playRecorder{}
	s := New(clock, rec.record)

	s.SetPlaylist([]model.PlaylistItem{image(7, 10)})
	for i := 0; i < 3; i++ {
		clock.Advance(10 * time.Second)
	}
	assert.Equal(t, []int{7, 7, 7, 7}, rec.bookings())

	starts := make([]time.Time, len(rec.plays))
	for i, p := range rec.plays {
		starts[i] = p.StartedAt
	}
	for i := 1; i < len(starts); i++ {
		assert.Equal(t, 10*time.Second, starts[i].Sub(starts[i-1]))
	}
}

func TestVideoHoldsUntilEnded(t *testing.T) {
	clock := newFakeClock()
	rec := &playRecorder{}
	s := New(clock, rec.record)

	s.SetPlaylist([]model.PlaylistItem{video(1, 30), image(2, 5)})
	require.Equal(t, []int{1}, rec.bookings())

	// time alone never advances a video, not even far past its duration
	clock.Advance(10 * time.Minute)
	assert.Equal(t, []int{1}, rec.bookings())

	s.MediaEnded(rec.last().Generation)
	assert.Equal(t, []int{1, 2}, rec.bookings())
}

func TestVideoFailureAdvancesLikeCompletion(t *testing.T) {
	clock := newFakeClock()
	rec := &playRecorder{}
	s := New(clock, rec.record)

	s.SetPlaylist([]model.PlaylistItem{video(1, 30), image(2, 5)})
	s.MediaFailed(rec.last().Generation)
	assert.Equal(t, []int{1, 2}, rec.bookings())
}

func TestStaleVideoSignalIsIgnored(t *testing.T) {
	clock := newFakeClock()
	rec := &playRecorder{}
	s := New(clock, rec.record)

	s.SetPlaylist([]model.PlaylistItem{video(1, 30), video(2, 30), video(3, 30)})
	first := rec.last().Generation

	s.MediaEnded(first)
	require.Equal(t, []int{1, 2}, rec.bookings())

	// the media layer firing both "ended" and "error" for the same play
	// must not double-advance
	s.MediaEnded(first)
	s.MediaFailed(first)
	assert.Equal(t, []int{1, 2}, rec.bookings())
}

func TestVideoSignalIgnoredWhileImagePlaying(t *testing.T) {
	clock := newFakeClock()
	rec := &playRecorder{}
	s := New(clock, rec.record)

	s.SetPlaylist([]model.PlaylistItem{image(1, 10), image(2, 10)})
	s.MediaEnded(rec.last().Generation)
	assert.Equal(t, []int{1}, rec.bookings())
}

func TestReplaceDoesNotInterruptCurrentPlay(t *testing.T) {
	clock := newFakeClock()
	rec := &playRecorder{}
	s := New(clock, rec.record)

	s.SetPlaylist([]model.PlaylistItem{image(1, 10), image(2, 10)})
	clock.Advance(4 * time.Second)

	s.SetPlaylist([]model.PlaylistItem{image(5, 3), image(6, 3)})

	// item 1 finishes its full ten seconds first
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 1, cur.Item.BookingID)

	// the advance resolves against the new list
	clock.Advance(6 * time.Second)
	assert.Equal(t, []int{1, 6}, rec.bookings())

	clock.Advance(3 * time.Second)
	assert.Equal(t, []int{1, 6, 5}, rec.bookings())
}

func TestEmptyPlaylistIdlesThenRecovers(t *testing.T) {
	clock := newFakeClock()
	rec := &playRecorder{}
	s := New(clock, rec.record)

	s.SetPlaylist([]model.PlaylistItem{image(1, 5)})
	s.SetPlaylist(nil)

	// current item plays out, then the scheduler goes idle
	clock.Advance(5 * time.Second)
	_, ok := s.Current()
	assert.False(t, ok)

	clock.Advance(time.Hour)
	assert.Equal(t, []int{1}, rec.bookings())

	// a fresh non-empty schedule starts immediately
	s.SetPlaylist([]model.PlaylistItem{image(9, 5)})
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 9, cur.Item.BookingID)
}

func TestRapidRelogOfSameBookingIsDebounced(t *testing.T) {
	clock := newFakeClock()
	rec := &playRecorder{}
	s := New(clock, rec.record)

	// a single video that "finishes" instantly wraps onto itself within
	// the debounce window
	s.SetPlaylist([]model.PlaylistItem{video(4, 30)})
	s.MediaEnded(rec.last().Generation)

	assert.Equal(t, []int{4}, rec.bookings())
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 4, cur.Item.BookingID)

	// after the window has passed, the same booking logs again
	clock.Advance(2 * time.Second)
	s.MediaEnded(cur.Generation)
	assert.Equal(t, []int{4, 4}, rec.bookings())
}

func TestShrinkBelowPlayingIndexWrapsIntoNewList(t *testing.T) {
	clock := newFakeClock()
	rec := &playRecorder{}
	s := New(clock, rec.record)

	s.SetPlaylist([]model.PlaylistItem{video(1, 30), video(2, 30)})
	s.MediaEnded(rec.last().Generation)
	require.Equal(t, []int{1, 2}, rec.bookings())
	gen := rec.last().Generation

	// the replacement list is shorter than the playing index
	s.SetPlaylist([]model.PlaylistItem{image(5, 5)})

	// the item at that index is gone, so nothing is current
	_, ok := s.Current()
	assert.False(t, ok)

	// the video's completion wraps into the new list instead of crashing
	s.MediaEnded(gen)
	assert.Equal(t, []int{1, 2, 5}, rec.bookings())

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 5, cur.Item.BookingID)
}

func TestEmptyWhileVideoPlayingIdlesOnCompletion(t *testing.T) {
	clock := newFakeClock()
	rec := &playRecorder{}
	s := New(clock, rec.record)

	s.SetPlaylist([]model.PlaylistItem{video(3, 30)})
	gen := rec.last().Generation

	s.SetPlaylist(nil)
	_, ok := s.Current()
	assert.False(t, ok)

	s.MediaEnded(gen)
	_, ok = s.Current()
	assert.False(t, ok)
	assert.Equal(t, []int{3}, rec.bookings())

	// fresh content starts playback again
	s.SetPlaylist([]model.PlaylistItem{image(9, 5)})
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 9, cur.Item.BookingID)
}

func TestStopCancelsPendingAdvance(t *testing.T) {
	clock := newFakeClock()
	rec := &playRecorder{}
	s := New(clock, rec.record)

	s.SetPlaylist([]model.PlaylistItem{image(1, 5), image(2, 5)})
	s.Stop()

	_, ok := s.Current()
	assert.False(t, ok)

	clock.Advance(time.Minute)
	assert.Equal(t, []int{1}, rec.bookings())
}
