package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Glowcast-Media/glowcast/internal/db"
	"github.com/Glowcast-Media/glowcast/internal/http/middleware"
	redisclient "github.com/Glowcast-Media/glowcast/internal/redis"
)

func main() {
	// .env is optional; real deployments set variables directly
	_ = godotenv.Load()

	env := LoadEnvironment()

	if env.Environment == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	redisclient.Init(env.RedisAddress, env.RedisUsername, env.RedisPassword)

	// the push channel is optional; polling alone keeps devices converging
	var notifier *middleware.Notifier
	if env.MQTTBrokerURL != "" {
		n, err := middleware.NewNotifier(env.MQTTBrokerURL, "glowcast-server")
		if err != nil {
			log.Warn().Err(err).Msg("MQTT unavailable, running without push")
		} else {
			notifier = n
			defer notifier.Close()
		}
	}

	store := db.NewStore()

	r := gin.Default()
	RegisterRoutes(r, env, store, notifier)

	log.Info().Str("address", env.ServerAddress).Msg("listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
