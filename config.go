package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/heydabop/scramble/game"
	"github.com/heydabop/scramble/store"
)

type config struct {
	Token          string
	Driver         string
	DatabaseURL    string
	WordsFile      string
	AlternatesFile string
	// Channels maps each guild to the one channel the game runs in.
	Channels     map[string]string
	AcumenSource string
	TickInterval time.Duration
	HTTPAddr     string
	LogLevel     string
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func loadConfig() (config, error) {
	cfg := config{
		Token:          os.Getenv("DISCORD_TOKEN"),
		Driver:         getEnv("DATABASE_DRIVER", store.DriverSQLite),
		DatabaseURL:    getEnv("DATABASE_URL", "data/scramble.db"),
		WordsFile:      getEnv("WORDS_FILE", "data/words.csv"),
		AlternatesFile: getEnv("ALTERNATES_FILE", "data/alternates.txt"),
		AcumenSource:   getEnv("ACUMEN_SOURCE", game.AcumenGaussian),
		HTTPAddr:       os.Getenv("HTTP_ADDR"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Channels, err = parseChannels(os.Getenv("ANAGRAM_CHANNELS")); err != nil {
		return cfg, err
	}
	if cfg.TickInterval, err = time.ParseDuration(getEnv("TICK_INTERVAL", "2s")); err != nil {
		return cfg, fmt.Errorf("TICK_INTERVAL: %w", err)
	}
	if cfg.AcumenSource != game.AcumenGaussian && cfg.AcumenSource != game.AcumenQueue {
		return cfg, fmt.Errorf("ACUMEN_SOURCE must be %q or %q, got %q", game.AcumenGaussian, game.AcumenQueue, cfg.AcumenSource)
	}
	return cfg, nil
}

// parseChannels reads "guild:channel,guild:channel".
func parseChannels(s string) (map[string]string, error) {
	channels := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		guild, channel, ok := strings.Cut(pair, ":")
		guild, channel = strings.TrimSpace(guild), strings.TrimSpace(channel)
		if !ok || guild == "" || channel == "" {
			return nil, fmt.Errorf("ANAGRAM_CHANNELS: bad entry %q, want guild:channel", pair)
		}
		if _, dup := channels[guild]; dup {
			return nil, fmt.Errorf("ANAGRAM_CHANNELS: guild %s listed twice", guild)
		}
		channels[guild] = channel
	}
	return channels, nil
}

func setupLogging(level string, pretty bool) {
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp})
	}
}
