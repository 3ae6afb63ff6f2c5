package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	devicepackets "github.com/Glowcast-Media/glowcast/internal/http/api/device/packets"
	"github.com/Glowcast-Media/glowcast/internal/model"
)

func TestDeviceConfigPaired(t *testing.T) {
	assert.False(t, DeviceConfig{}.Paired())
	assert.False(t, DeviceConfig{DeviceID: "dev-1"}.Paired())
	assert.False(t, DeviceConfig{Token: "tok"}.Paired())
	assert.True(t, DeviceConfig{DeviceID: "dev-1", Token: "tok"}.Paired())
}

func testStore(t *testing.T, store Store) {
	t.Helper()

	_, err := store.Config()
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.CachedSchedule()
	assert.ErrorIs(t, err, ErrNotFound)

	cfg := DeviceConfig{DeviceID: "dev-1", Token: "tok"}
	require.NoError(t, store.SaveConfig(cfg))
	got, err := store.Config()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	sched := CachedSchedule{
		Screen: devicepackets.ScreenInfo{ID: 7, Name: "lobby", Type: "landscape"},
		Items: []model.PlaylistItem{
			{BookingID: 1, MediaURL: "https://cdn.example.com/a.jpg", MediaType: model.MediaImage, Duration: 10},
		},
		Config:    devicepackets.PlayerConfig{LoopIntervalSeconds: 30, ReportIntervalSeconds: 30},
		FetchedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveSchedule(sched))
	gotSched, err := store.CachedSchedule()
	require.NoError(t, err)
	assert.Equal(t, sched, gotSched)

	// wholesale replacement, not a merge
	require.NoError(t, store.SaveSchedule(CachedSchedule{Screen: sched.Screen}))
	gotSched, err = store.CachedSchedule()
	require.NoError(t, err)
	assert.Empty(t, gotSched.Items)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestBadgerStore(t *testing.T) {
	store, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	testStore(t, store)
}

func TestBadgerStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenBadger(dir)
	require.NoError(t, err)
	cfg := DeviceConfig{DeviceID: "dev-1", Token: "tok"}
	require.NoError(t, store.SaveConfig(cfg))
	require.NoError(t, store.Close())

	reopened, err := OpenBadger(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Config()
	require.NoError(t, err)
	assert.Equal(t, cfg, got, "identity must survive a power cycle")
}
