package player

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	devicepackets "github.com/Glowcast-Media/glowcast/internal/http/api/device/packets"
	"github.com/Glowcast-Media/glowcast/internal/model"
	"github.com/Glowcast-Media/glowcast/internal/player/state"
)

// fakeCMS speaks the device wire contract end to end: registration, three
// pending polls, then an active pairing, heartbeats, and log ingestion.
type fakeCMS struct {
	mu       sync.Mutex
	polls    int
	received []devicepackets.PlayLogEntry
}

const (
	cmsDeviceID = "e2e-device"
	cmsToken    = "e2e-token"
)

func (f *fakeCMS) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/device/register", func(w http.ResponseWriter, r *http.Request) {
		var req devicepackets.RegisterDeviceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		deviceID := req.DeviceID
		if deviceID == "" {
			deviceID = cmsDeviceID
		}
		writeJSON(w, devicepackets.RegisterDeviceResponse{DeviceID: deviceID, PairingCode: "A1B2C3"})
	})

	mux.HandleFunc("GET /api/device/pairing/status", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.polls++
		polls := f.polls
		f.mu.Unlock()
		if polls <= 3 {
			writeJSON(w, devicepackets.PairingStatusResponse{Status: devicepackets.StatusPending})
			return
		}
		writeJSON(w, devicepackets.PairingStatusResponse{Status: devicepackets.StatusActive, Token: cmsToken})
	})

	mux.HandleFunc("POST /api/device/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		var req devicepackets.HeartbeatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.DeviceID != cmsDeviceID || req.Token != cmsToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, devicepackets.HeartbeatResponse{
			Status: devicepackets.StatusActive,
			Screen: &devicepackets.ScreenInfo{ID: 7, Name: "lobby"},
			Schedule: []model.PlaylistItem{
				{BookingID: 1, MediaURL: "https://cdn.example.com/a.jpg", MediaType: model.MediaImage, Duration: 1},
				{BookingID: 2, MediaURL: "https://cdn.example.com/b.jpg", MediaType: model.MediaImage, Duration: 1},
			},
			Config: &devicepackets.PlayerConfig{LoopIntervalSeconds: 30, ReportIntervalSeconds: 30},
		})
	})

	mux.HandleFunc("POST /api/device/logs", func(w http.ResponseWriter, r *http.Request) {
		var req devicepackets.ReportLogsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Token != cmsToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		f.received = append(f.received, req.Logs...)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeCMS) logCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.received)
}

func TestPlayerLifecycleEndToEnd(t *testing.T) {
	cms := &fakeCMS{}
	server := httptest.NewServer(cms.handler())
	defer server.Close()

	store := state.NewMemoryStore()
	var codes []string
	var codesMu sync.Mutex

	p := New(Options{
		ServerURL:           server.URL,
		Store:               store,
		PairingPollInterval: time.Millisecond,
		HeartbeatInterval:   20 * time.Millisecond,
		ReportInterval:      20 * time.Millisecond,
		OnPairingCode: func(code string) {
			codesMu.Lock()
			codes = append(codes, code)
			codesMu.Unlock()
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Run(ctx)
		close(done)
	}()

	// a two-item loop of one-second images yields a wrap within a few
	// seconds; three entries prove the loop came back around
	require.Eventually(t, func() bool { return cms.logCount() >= 3 }, 15*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("player did not shut down")
	}

	codesMu.Lock()
	require.NotEmpty(t, codes)
	assert.Equal(t, "A1B2C3", codes[0])
	codesMu.Unlock()

	cfg, err := store.Config()
	require.NoError(t, err)
	assert.Equal(t, cmsDeviceID, cfg.DeviceID)
	assert.Equal(t, cmsToken, cfg.Token)

	cached, err := store.CachedSchedule()
	require.NoError(t, err)
	assert.Equal(t, 7, cached.Screen.ID)
	require.Len(t, cached.Items, 2)

	cms.mu.Lock()
	defer cms.mu.Unlock()
	seen := map[int]bool{}
	for _, entry := range cms.received {
		assert.Equal(t, 7, entry.ScreenID)
		assert.Equal(t, 1, entry.DurationPlayed)
		assert.Contains(t, []int{1, 2}, entry.BookingID)
		seen[entry.BookingID] = true
	}
	assert.True(t, seen[1] && seen[2], "both bookings should have played")
}
