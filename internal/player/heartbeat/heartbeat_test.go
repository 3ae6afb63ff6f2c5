package heartbeat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	devicepackets "github.com/Glowcast-Media/glowcast/internal/http/api/device/packets"
	"github.com/Glowcast-Media/glowcast/internal/model"
	"github.com/Glowcast-Media/glowcast/internal/player/httpapi"
	"github.com/Glowcast-Media/glowcast/internal/player/state"
)

type fakeAPI struct {
	result httpapi.HeartbeatResult
	err    error

	mu    sync.Mutex
	calls int
}

func (f *fakeAPI) Heartbeat(_ context.Context, _, _ string) (httpapi.HeartbeatResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.result, f.err
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePlaylist struct {
	sets [][]model.PlaylistItem
}

func (f *fakePlaylist) SetPlaylist(items []model.PlaylistItem) {
	f.sets = append(f.sets, items)
}

func pairedStore(t *testing.T) state.Store {
	t.Helper()
	store := state.NewMemoryStore()
	require.NoError(t, store.SaveConfig(state.DeviceConfig{DeviceID: "dev-1", Token: "tok"}))
	return store
}

func TestTickUnregisteredWithoutIdentity(t *testing.T) {
	api := &fakeAPI{}
	r := NewRunner(state.NewMemoryStore(), api, &fakePlaylist{})

	assert.Equal(t, StateUnregistered, r.Tick(context.Background()))
	assert.Equal(t, 0, api.callCount(), "an unpaired device must not check in")
}

func TestTickActiveReplacesCacheAndPlaylist(t *testing.T) {
	store := pairedStore(t)
	items := []model.PlaylistItem{
		{BookingID: 1, MediaType: model.MediaImage, Duration: 10},
		{BookingID: 2, MediaType: model.MediaVideo, Duration: 30},
	}
	api := &fakeAPI{result: httpapi.HeartbeatActive{
		Screen:   devicepackets.ScreenInfo{ID: 7, Name: "lobby"},
		Schedule: items,
		Config:   devicepackets.PlayerConfig{LoopIntervalSeconds: 30},
	}}
	playlist := &fakePlaylist{}
	r := NewRunner(store, api, playlist)

	assert.Equal(t, StateActive, r.Tick(context.Background()))

	require.Len(t, playlist.sets, 1)
	assert.Equal(t, items, playlist.sets[0])

	cached, err := store.CachedSchedule()
	require.NoError(t, err)
	assert.Equal(t, 7, cached.Screen.ID)
	assert.Equal(t, items, cached.Items)
	assert.False(t, cached.FetchedAt.IsZero())
}

func TestTickActiveReplacesWholesale(t *testing.T) {
	store := pairedStore(t)
	require.NoError(t, store.SaveSchedule(state.CachedSchedule{
		Items: []model.PlaylistItem{{BookingID: 99, MediaType: model.MediaImage, Duration: 5}},
	}))

	api := &fakeAPI{result: httpapi.HeartbeatActive{
		Schedule: []model.PlaylistItem{{BookingID: 1, MediaType: model.MediaImage, Duration: 10}},
	}}
	r := NewRunner(store, api, &fakePlaylist{})

	require.Equal(t, StateActive, r.Tick(context.Background()))

	cached, err := store.CachedSchedule()
	require.NoError(t, err)
	require.Len(t, cached.Items, 1)
	assert.Equal(t, 1, cached.Items[0].BookingID, "old items must not survive a refresh")
}

func TestTickBlockedClearsPlaylistKeepsToken(t *testing.T) {
	store := pairedStore(t)
	api := &fakeAPI{result: httpapi.HeartbeatBlocked{}}
	playlist := &fakePlaylist{}
	r := NewRunner(store, api, playlist)

	assert.Equal(t, StateBlocked, r.Tick(context.Background()))

	require.Len(t, playlist.sets, 1)
	assert.Nil(t, playlist.sets[0])

	// blocking is reversible server-side; local credentials stay put
	cfg, err := store.Config()
	require.NoError(t, err)
	assert.Equal(t, "tok", cfg.Token)
}

func TestTickOfflineLeavesEverythingAlone(t *testing.T) {
	store := pairedStore(t)
	cached := state.CachedSchedule{
		Items:     []model.PlaylistItem{{BookingID: 1, MediaType: model.MediaImage, Duration: 10}},
		FetchedAt: time.Now(),
	}
	require.NoError(t, store.SaveSchedule(cached))

	api := &fakeAPI{err: errors.New("connection refused")}
	playlist := &fakePlaylist{}
	r := NewRunner(store, api, playlist)

	assert.Equal(t, StateOffline, r.Tick(context.Background()))

	// no playlist churn, no cache churn: keep playing what we have
	assert.Empty(t, playlist.sets)
	got, err := store.CachedSchedule()
	require.NoError(t, err)
	assert.Equal(t, cached.Items, got.Items)

	cfg, err := store.Config()
	require.NoError(t, err)
	assert.Equal(t, "tok", cfg.Token)
}

func TestOnStateObservesEveryTick(t *testing.T) {
	api := &fakeAPI{result: httpapi.HeartbeatBlocked{}}
	r := NewRunner(pairedStore(t), api, &fakePlaylist{})

	var seen []State
	r.OnState = func(s State) { seen = append(seen, s) }

	r.Tick(context.Background())
	r.Tick(context.Background())
	assert.Equal(t, []State{StateBlocked, StateBlocked}, seen)
}

func TestRunRefreshTriggersImmediateTick(t *testing.T) {
	api := &fakeAPI{result: httpapi.HeartbeatActive{}}
	r := NewRunner(pairedStore(t), api, &fakePlaylist{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresh := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Hour, refresh)
		close(done)
	}()

	refresh <- struct{}{}
	require.Eventually(t, func() bool { return api.callCount() >= 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
