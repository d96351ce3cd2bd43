package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

type Config struct {
	SlackBotToken string
	SlackAppToken string
	// RedisURL is the default idea store backend.
	RedisURL string
	// DatabaseURL switches the idea store to Postgres when set.
	DatabaseURL string
	// AnnounceSubmissions controls whether a channel-wide message is posted
	// for each submitted idea, in addition to the ephemeral acknowledgment.
	AnnounceSubmissions bool
}

// Load reads configuration from the environment. The Slack tokens are
// required; everything else has a usable default.
func Load() (Config, error) {
	cfg := Config{
		SlackBotToken:       os.Getenv("SLACK_BOT_TOKEN"),
		SlackAppToken:       os.Getenv("SLACK_APP_TOKEN"),
		RedisURL:            getenv("REDIS_URL", "redis://localhost:6379/0"),
		DatabaseURL:         getenv("DATABASE_URL", ""),
		AnnounceSubmissions: getenvBool("SEND_CHANNEL_MESSAGE_ON_SUBMISSIONS", false),
	}

	if cfg.SlackBotToken == "" {
		return Config{}, fmt.Errorf("SLACK_BOT_TOKEN environment variable is not set")
	}
	if cfg.SlackAppToken == "" {
		return Config{}, fmt.Errorf("SLACK_APP_TOKEN environment variable is not set")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		log.Printf("optional environment variable %s is not set, defaulting to %v", key, fallback)
		return fallback
	}
	return strings.EqualFold(value, "true")
}
