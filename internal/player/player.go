// Package player wires the four halves of the device lifecycle together:
// pairing, heartbeat, playback scheduling, and proof-of-play reporting.
// Each runs as its own periodic goroutine; they share nothing but the
// local state store, the scheduler, and the log buffer.
package player

import (
	"context"
	"errors"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	devicepackets "github.com/Glowcast-Media/glowcast/internal/http/api/device/packets"
	"github.com/Glowcast-Media/glowcast/internal/http/middleware"
	"github.com/Glowcast-Media/glowcast/internal/player/heartbeat"
	"github.com/Glowcast-Media/glowcast/internal/player/httpapi"
	"github.com/Glowcast-Media/glowcast/internal/player/pairing"
	"github.com/Glowcast-Media/glowcast/internal/player/reporter"
	"github.com/Glowcast-Media/glowcast/internal/player/scheduler"
	"github.com/Glowcast-Media/glowcast/internal/player/state"
)

const (
	defaultHeartbeatInterval = 30 * time.Second
)

type Options struct {
	ServerURL string
	Store     state.Store
	Clock     scheduler.Clock

	PairingPollInterval time.Duration
	HeartbeatInterval   time.Duration
	ReportInterval      time.Duration

	// MQTTBrokerURL enables push-triggered refresh when set.
	MQTTBrokerURL string

	// OnPairingCode shows the code to the human walking past the screen.
	OnPairingCode func(code string)

	// OnPlay hands each play to the rendering layer, which is responsible
	// for calling MediaEnded/MediaFailed on the scheduler for videos.
	OnPlay func(play scheduler.Play)
}

type Player struct {
	opts   Options
	client *httpapi.Client
	sched  *scheduler.Scheduler
	rep    *reporter.Reporter
	runner *heartbeat.Runner
}

func New(opts Options) *Player {
	if opts.Clock == nil {
		opts.Clock = scheduler.RealClock()
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = defaultHeartbeatInterval
	}

	p := &Player{opts: opts}
	p.client = httpapi.NewClient(opts.ServerURL)
	p.rep = reporter.New(reporter.SenderFunc(p.sendLogs))
	p.sched = scheduler.New(opts.Clock, p.recordPlay)
	p.runner = heartbeat.NewRunner(opts.Store, p.client, p.sched)
	return p
}

// Scheduler exposes the playback state machine so the rendering layer can
// deliver video completion signals.
func (p *Player) Scheduler() *scheduler.Scheduler { return p.sched }

// Reporter exposes the log buffer for the debug overlay.
func (p *Player) Reporter() *reporter.Reporter { return p.rep }

// Run blocks until ctx is cancelled: pairs if needed, then runs the
// heartbeat and reporting loops while the scheduler plays.
func (p *Player) Run(ctx context.Context) error {
	pairer := pairing.New(p.opts.Store, p.client, p.opts.PairingPollInterval)
	pairer.OnCode = p.opts.OnPairingCode

	cfg, err := pairer.Run(ctx)
	if err != nil {
		return err
	}

	// boot from the last-known-good schedule; the first heartbeat will
	// replace it, and if the network is down we keep playing from cache
	if cached, err := p.opts.Store.CachedSchedule(); err == nil {
		p.sched.SetPlaylist(cached.Items)
	} else if !errors.Is(err, state.ErrNotFound) {
		log.Warn().Err(err).Msg("could not read cached schedule")
	}

	// seed one immediate tick so a freshly paired device does not wait a
	// full interval for its first schedule
	refresh := make(chan struct{}, 1)
	refresh <- struct{}{}

	var mqttClient mqtt.Client
	if p.opts.MQTTBrokerURL != "" {
		mqttClient = p.subscribeRefresh(cfg.DeviceID, refresh)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.runner.Run(ctx, p.opts.HeartbeatInterval, refresh)
	}()
	go func() {
		defer wg.Done()
		p.rep.Run(ctx, p.opts.ReportInterval)
	}()

	<-ctx.Done()
	p.sched.Stop()
	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}
	wg.Wait()
	return ctx.Err()
}

// recordPlay is the scheduler's OnPlay hook: buffer the proof-of-play
// entry, then hand the play to the renderer.
func (p *Player) recordPlay(play scheduler.Play) {
	entry := devicepackets.PlayLogEntry{
		BookingID:      play.Item.BookingID,
		Timestamp:      play.StartedAt,
		DurationPlayed: play.Item.Duration,
	}
	if cached, err := p.opts.Store.CachedSchedule(); err == nil {
		entry.ScreenID = cached.Screen.ID
	}
	p.rep.Append(entry)

	log.Info().
		Int("booking_id", play.Item.BookingID).
		Int("index", play.Index).
		Str("type", play.Item.MediaType).
		Msg("playing")

	if p.opts.OnPlay != nil {
		p.opts.OnPlay(play)
	}
}

// sendLogs delivers a batch with the device's current credentials.
func (p *Player) sendLogs(ctx context.Context, logs []devicepackets.PlayLogEntry) error {
	cfg, err := p.opts.Store.Config()
	if err != nil {
		return err
	}
	return p.client.ReportLogs(ctx, cfg.DeviceID, cfg.Token, logs)
}

// subscribeRefresh listens for server pushes on this device's command
// topic. Best effort only; the polling loop is the source of truth.
func (p *Player) subscribeRefresh(deviceID string, refresh chan<- struct{}) mqtt.Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(p.opts.MQTTBrokerURL)
	opts.SetClientID("glowcast-player-" + deviceID)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Warn().Err(token.Error()).Msg("MQTT unavailable, polling only")
		return nil
	}

	topic := middleware.RefreshTopic(deviceID)
	token := client.Subscribe(topic, 1, func(_ mqtt.Client, _ mqtt.Message) {
		select {
		case refresh <- struct{}{}:
		default:
		}
	})
	if token.Wait() && token.Error() != nil {
		log.Warn().Err(token.Error()).Str("topic", topic).Msg("could not subscribe for refresh pushes")
		client.Disconnect(250)
		return nil
	}

	log.Info().Str("topic", topic).Msg("subscribed for refresh pushes")
	return client
}
