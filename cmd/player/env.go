package main

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

type Environment struct {
	Environment string
	ServerURL   string
	DataDir     string

	MQTTBrokerURL string

	PairingPollSeconds       int
	HeartbeatIntervalSeconds int
	ReportIntervalSeconds    int
}

// LoadEnvironment reads and validates env vars.
func LoadEnvironment() Environment {
	env := Environment{
		Environment: os.Getenv("APP_ENV"),
		ServerURL:   os.Getenv("SERVER_URL"),
		DataDir:     os.Getenv("DATA_DIR"),

		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),

		PairingPollSeconds:       intEnv("PAIRING_POLL_SECONDS", 5),
		HeartbeatIntervalSeconds: intEnv("HEARTBEAT_INTERVAL_SECONDS", 30),
		ReportIntervalSeconds:    intEnv("REPORT_INTERVAL_SECONDS", 30),
	}

	if env.DataDir == "" {
		env.DataDir = "./data"
	}

	if env.ServerURL == "" {
		log.Fatal().Msg("missing required environment variable SERVER_URL")
	}

	return env
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Fatal().Str("var", key).Str("value", raw).Msg("invalid integer environment variable")
	}
	return n
}
