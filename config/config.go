// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// For required giveaway credentials, use ValidateGiveawayReady.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// SourceYouTube and SourceTwitch are the accepted CHAT_SOURCE values.
const (
	SourceYouTube = "youtube"
	SourceTwitch  = "twitch"
)

type Config struct {
	// Chat ingestion
	ChatSource string // "youtube" or "twitch"

	// YouTube
	YTVideoID string
	YTAPIKey  string

	// Twitch
	TwitchChannel     string
	TwitchBotUsername string
	TwitchOAuthToken  string

	// Roblox
	RobloxCookie string
	MaxPrice     int64

	// Round mechanics
	RoundDuration time.Duration
	Cooldown      time.Duration
	PollInterval  time.Duration
	CommandPrefix string
	MaxWins       int

	// HTTP
	HTTPAddr string

	// Database (optional round journal)
	DBDsn string
}

// Load reads environment variables and applies defaults. It doesn't fail if
// giveaway creds are missing; use ValidateGiveawayReady() before starting
// rounds. An empty DB_DSN disables the round journal.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.ChatSource = os.Getenv("CHAT_SOURCE")
	if cfg.ChatSource == "" {
		cfg.ChatSource = SourceYouTube
	}
	if cfg.ChatSource != SourceYouTube && cfg.ChatSource != SourceTwitch {
		return nil, fmt.Errorf("invalid CHAT_SOURCE %q: want %s or %s", cfg.ChatSource, SourceYouTube, SourceTwitch)
	}

	cfg.YTVideoID = os.Getenv("YT_VIDEO_ID")
	cfg.YTAPIKey = os.Getenv("YT_API_KEY")

	cfg.TwitchChannel = os.Getenv("TWITCH_CHANNEL")
	cfg.TwitchBotUsername = os.Getenv("TWITCH_BOT_USERNAME")
	cfg.TwitchOAuthToken = os.Getenv("TWITCH_OAUTH_TOKEN")

	cfg.RobloxCookie = os.Getenv("ROBLOX_COOKIE")

	var err error
	if cfg.MaxPrice, err = envInt64("MAX_PRICE", 10); err != nil {
		return nil, err
	}
	if cfg.MaxPrice < 1 {
		return nil, fmt.Errorf("MAX_PRICE must be at least 1, got %d", cfg.MaxPrice)
	}

	if cfg.RoundDuration, err = envDuration("ROUND_DURATION", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Cooldown, err = envDuration("ROUND_COOLDOWN", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = envDuration("CHAT_POLL_INTERVAL", time.Second); err != nil {
		return nil, err
	}

	cfg.CommandPrefix = os.Getenv("COMMAND_PREFIX")
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = "join"
	}

	maxWins, err := envInt64("MAX_WINS_PER_USER", 2)
	if err != nil {
		return nil, err
	}
	cfg.MaxWins = int(maxWins)

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.DBDsn = os.Getenv("DB_DSN")

	return cfg, nil
}

// ValidateGiveawayReady checks the fields required to run rounds: a Roblox
// session cookie plus the credentials for the selected chat source.
func (c *Config) ValidateGiveawayReady() error {
	if c.RobloxCookie == "" {
		return fmt.Errorf("missing roblox env: require ROBLOX_COOKIE")
	}
	switch c.ChatSource {
	case SourceYouTube:
		if c.YTVideoID == "" || c.YTAPIKey == "" {
			return fmt.Errorf("missing youtube env: require YT_VIDEO_ID, YT_API_KEY")
		}
	case SourceTwitch:
		if c.TwitchChannel == "" {
			return fmt.Errorf("missing twitch env: require TWITCH_CHANNEL")
		}
	}
	if c.RoundDuration <= 0 {
		return fmt.Errorf("ROUND_DURATION must be positive, got %s", c.RoundDuration)
	}
	return nil
}

func envInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s (Go duration, e.g. 10m): %w", key, err)
	}
	return d, nil
}
