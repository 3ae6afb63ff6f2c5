// Package pairing drives an unpaired device to the "active, has token"
// state with no human interaction on the device itself: register, show the
// code, poll until an operator claims it.
package pairing

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	devicepackets "github.com/Glowcast-Media/glowcast/internal/http/api/device/packets"
	"github.com/Glowcast-Media/glowcast/internal/player/state"
)

// DefaultPollInterval is how often the device asks whether it has been paired.
const DefaultPollInterval = 5 * time.Second

// API is the slice of the server client pairing needs.
type API interface {
	Register(ctx context.Context, deviceID string) (*devicepackets.RegisterDeviceResponse, error)
	PairingStatus(ctx context.Context, deviceID string) (*devicepackets.PairingStatusResponse, error)
}

type Pairer struct {
	store    state.Store
	client   API
	interval time.Duration

	// OnCode is called whenever a pairing code should be shown on screen.
	OnCode func(code string)
}

func New(store state.Store, client API, interval time.Duration) *Pairer {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Pairer{store: store, client: client, interval: interval}
}

// Run blocks until the device is paired or ctx is cancelled. On success the
// durable config holds both the device ID and the token.
func (p *Pairer) Run(ctx context.Context) (state.DeviceConfig, error) {
	cfg, err := p.store.Config()
	if err != nil && !errors.Is(err, state.ErrNotFound) {
		return state.DeviceConfig{}, err
	}
	if cfg.Paired() {
		return cfg, nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// re-registering every so often keeps the pairing session's TTL fresh;
	// the server hands back the same code while one is outstanding
	const reregisterEvery = 60

	registered := false
	pendingPolls := 0
	for {
		if !registered {
			if err := p.register(ctx, &cfg); err != nil {
				log.Warn().Err(err).Msg("registration failed, will retry")
			} else {
				registered = true
				pendingPolls = 0
			}
		} else if pendingPolls >= reregisterEvery {
			registered = false
		} else {
			done, err := p.poll(ctx, &cfg)
			if err != nil {
				log.Warn().Err(err).Msg("pairing status poll failed, will retry")
			} else if done {
				return cfg, nil
			} else {
				pendingPolls++
			}
		}

		select {
		case <-ctx.Done():
			return state.DeviceConfig{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// register announces the device. The confirmed device ID is persisted
// before anything else happens, so a crash cannot mint a second identity.
func (p *Pairer) register(ctx context.Context, cfg *state.DeviceConfig) error {
	response, err := p.client.Register(ctx, cfg.DeviceID)
	if err != nil {
		return err
	}

	if cfg.DeviceID != response.DeviceID {
		cfg.DeviceID = response.DeviceID
		if err := p.store.SaveConfig(*cfg); err != nil {
			return err
		}
	}

	log.Info().Str("device_id", cfg.DeviceID).Str("code", response.PairingCode).Msg("awaiting pairing")
	if p.OnCode != nil {
		p.OnCode(response.PairingCode)
	}
	return nil
}

func (p *Pairer) poll(ctx context.Context, cfg *state.DeviceConfig) (bool, error) {
	status, err := p.client.PairingStatus(ctx, cfg.DeviceID)
	if err != nil {
		return false, err
	}
	if status.Status != devicepackets.StatusActive || status.Token == "" {
		return false, nil
	}

	cfg.Token = status.Token
	if err := p.store.SaveConfig(*cfg); err != nil {
		return false, err
	}

	log.Info().Str("device_id", cfg.DeviceID).Msg("device paired")
	return true, nil
}
