package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Glowcast-Media/glowcast/internal/model"
	"github.com/Glowcast-Media/glowcast/internal/player"
	"github.com/Glowcast-Media/glowcast/internal/player/scheduler"
	"github.com/Glowcast-Media/glowcast/internal/player/state"
)

func main() {
	// .env is optional; real deployments set variables directly
	_ = godotenv.Load()

	env := LoadEnvironment()

	if env.Environment == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	store, err := state.OpenBadger(env.DataDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", env.DataDir).Msg("could not open state store")
	}
	defer store.Close()

	// Headless renderer: a real device hands plays to its media engine and
	// signals back when a video finishes. Here we simulate the engine by
	// completing videos after their reported duration.
	var p *player.Player
	p = player.New(player.Options{
		ServerURL:           env.ServerURL,
		Store:               store,
		PairingPollInterval: time.Duration(env.PairingPollSeconds) * time.Second,
		HeartbeatInterval:   time.Duration(env.HeartbeatIntervalSeconds) * time.Second,
		ReportInterval:      time.Duration(env.ReportIntervalSeconds) * time.Second,
		MQTTBrokerURL:       env.MQTTBrokerURL,
		OnPairingCode: func(code string) {
			log.Info().Str("code", code).Msg("pairing code")
		},
		OnPlay: func(play scheduler.Play) {
			completeVideo(p.Scheduler(), play)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("player stopped")
	}
	log.Info().Msg("shutting down")
}

func completeVideo(sched *scheduler.Scheduler, play scheduler.Play) {
	if play.Item.MediaType != model.MediaVideo {
		return
	}
	gen := play.Generation
	time.AfterFunc(time.Duration(play.Item.Duration)*time.Second, func() {
		sched.MediaEnded(gen)
	})
}
