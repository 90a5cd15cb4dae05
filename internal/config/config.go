package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"savethebirds/internal/gamedata"
)

type Config struct {
	Port            string        `env:"PORT"             envDefault:"8080"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	SQLitePath      string        `env:"SQLITE_PATH"`
	LeaderboardDir  string        `env:"LEADERBOARD_DIR"  envDefault:"./data"`
	LeaderboardKey  string        `env:"LEADERBOARD_KEY"  envDefault:"leaderboard"`
	LevelDuration   int           `env:"LEVEL_DURATION"   envDefault:"30"` // seconds
	BirdsPerLevel   int           `env:"BIRDS_PER_LEVEL"  envDefault:"5"`
	LevelUpDelay    time.Duration `env:"LEVEL_UP_DELAY"   envDefault:"2s"`
	SessionTTL      time.Duration `env:"SESSION_TTL"      envDefault:"1h"`
	MaxSessions     int           `env:"MAX_SESSIONS"     envDefault:"10000"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	DefaultLanguage string        `env:"DEFAULT_LANG"     envDefault:"en"`
}

func Defaults() Config {
	return Config{
		Port:            "8080",
		LeaderboardDir:  "./data",
		LeaderboardKey:  "leaderboard",
		LevelDuration:   30,
		BirdsPerLevel:   5,
		LevelUpDelay:    2 * time.Second,
		SessionTTL:      time.Hour,
		MaxSessions:     10000,
		LogLevel:        "info",
		DefaultLanguage: "en",
	}
}

// Load reads the environment. On a malformed value it returns the defaults along
// with the parse error so the caller can log it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Defaults(), fmt.Errorf("parse env: %w", err)
	}
	if cfg.LevelDuration <= 0 {
		cfg.LevelDuration = 30
	}
	if cfg.BirdsPerLevel <= 0 {
		cfg.BirdsPerLevel = 5
	}
	if cfg.MaxSessions < 0 {
		cfg.MaxSessions = 0
	}
	cfg.LeaderboardKey = strings.TrimSpace(cfg.LeaderboardKey)
	if cfg.LevelUpDelay < 0 {
		cfg.LevelUpDelay = 2 * time.Second
	}
	return cfg, nil
}

// Backend names the leaderboard storage chosen by the configuration.
func (c Config) Backend() string {
	switch {
	case c.DatabaseURL != "":
		return "postgres"
	case c.SQLitePath != "":
		return "sqlite"
	default:
		return "file"
	}
}

// Game returns the runtime settings for one game session.
func (c Config) Game() gamedata.Config {
	return gamedata.Config{
		LevelDuration: c.LevelDuration,
		BirdsPerLevel: c.BirdsPerLevel,
		LevelUpDelay:  c.LevelUpDelay,
		TickInterval:  time.Second,
	}
}
