// Package heartbeat keeps the local schedule cache fresh and notices when
// the device has been blocked. Each tick resolves the device to exactly one
// of four states; only a healthy check-in is allowed to touch the cache.
package heartbeat

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Glowcast-Media/glowcast/internal/model"
	"github.com/Glowcast-Media/glowcast/internal/player/httpapi"
	"github.com/Glowcast-Media/glowcast/internal/player/state"
)

// State is the device's status as of the latest tick.
type State int

const (
	StateUnregistered State = iota
	StateActive
	StateBlocked
	StateOffline
)

func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateActive:
		return "active"
	case StateBlocked:
		return "blocked"
	case StateOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// blockedBackoff slows polling once the device is blocked: recovery needs
// an operator, not a faster retry loop.
const blockedBackoff = 10

// API is the slice of the server client the heartbeat needs.
type API interface {
	Heartbeat(ctx context.Context, deviceID, token string) (httpapi.HeartbeatResult, error)
}

// Playlist receives the schedule on every healthy check-in.
type Playlist interface {
	SetPlaylist(items []model.PlaylistItem)
}

type Runner struct {
	store    state.Store
	client   API
	playlist Playlist

	// OnState, when set, observes every tick's resolved state.
	OnState func(State)
}

func NewRunner(store state.Store, client API, playlist Playlist) *Runner {
	return &Runner{store: store, client: client, playlist: playlist}
}

// Tick performs one check-in and returns the resolved state.
func (r *Runner) Tick(ctx context.Context) State {
	st := r.tick(ctx)
	if r.OnState != nil {
		r.OnState(st)
	}
	return st
}

func (r *Runner) tick(ctx context.Context) State {
	cfg, err := r.store.Config()
	if err != nil || !cfg.Paired() {
		if err != nil && !errors.Is(err, state.ErrNotFound) {
			log.Error().Err(err).Msg("could not read device config")
		}
		return StateUnregistered
	}

	result, err := r.client.Heartbeat(ctx, cfg.DeviceID, cfg.Token)
	if err != nil {
		// fall back to the cached schedule; the token stays untouched
		log.Warn().Err(err).Msg("heartbeat failed, running from cache")
		return StateOffline
	}

	switch res := result.(type) {
	case httpapi.HeartbeatBlocked:
		log.Warn().Str("device_id", cfg.DeviceID).Msg("device blocked")
		r.playlist.SetPlaylist(nil)
		return StateBlocked

	case httpapi.HeartbeatActive:
		cached := state.CachedSchedule{
			Screen:    res.Screen,
			Items:     res.Schedule,
			Config:    res.Config,
			FetchedAt: time.Now(),
		}
		if err := r.store.SaveSchedule(cached); err != nil {
			log.Error().Err(err).Msg("could not persist schedule cache")
		}
		r.playlist.SetPlaylist(res.Schedule)
		log.Debug().Int("items", len(res.Schedule)).Msg("schedule refreshed")
		return StateActive

	default:
		log.Error().Msg("unhandled heartbeat result")
		return StateOffline
	}
}

// Run ticks on a fixed interval until ctx is cancelled. A receive on
// refresh (e.g. an MQTT push) triggers an immediate extra tick. Ticks are
// serialized by construction: a slow call delays only its own successor.
func (r *Runner) Run(ctx context.Context, interval time.Duration, refresh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	blockedTicks := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if blockedTicks > 0 {
				// blocked devices check in at a fraction of the normal rate
				if blockedTicks < blockedBackoff {
					blockedTicks++
					continue
				}
				blockedTicks = 1
			}
		case <-refresh:
		}

		switch r.Tick(ctx) {
		case StateBlocked:
			if blockedTicks == 0 {
				blockedTicks = 1
			}
		default:
			blockedTicks = 0
		}
	}
}
