package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"minesweeper/internal/game"
	"minesweeper/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	GinMode       string
	LogLevel      string
	LogJSON       bool
	StaticDir     string
	AllowedOrigin string

	// Game
	DefaultDifficulty string
	CustomDifficulty  *game.Difficulty
	TickInterval      time.Duration
	JWTSecret         string

	// Rate limiting
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	APIRateLimit   int
	APIRateWindow  time.Duration
	GameRateLimit  int
	GameRateWindow time.Duration
}

// Load reads .env (if present) and the process environment. Invalid
// configuration is fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds a validated Config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		AppPort:           "8080",
		GinMode:           getenv("GIN_MODE"),
		LogLevel:          "info",
		LogJSON:           getenv("LOG_JSON") == "true",
		StaticDir:         getenv("STATIC_DIR"),
		AllowedOrigin:     getenv("ALLOWED_ORIGIN"),
		DefaultDifficulty: game.DifficultyEasy,
		TickInterval:      time.Second,
		JWTSecret:         getenv("JWT_SECRET"),
		RedisAddr:         getenv("REDIS_ADDR"),
		RedisPassword:     getenv("REDIS_PASSWORD"),
		APIRateLimit:      120,
		APIRateWindow:     time.Minute,
		GameRateLimit:     600, // reveal/flag actions per window
		GameRateWindow:    time.Minute,
	}

	if v := getenv("APP_PORT"); v != "" {
		cfg.AppPort = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getenv("DEFAULT_DIFFICULTY"); v != "" {
		cfg.DefaultDifficulty = strings.ToLower(v)
	}

	// 0 turns the server clock off; clients then drive time through the tick endpoint
	if v := getenv("TICK_INTERVAL_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("TICK_INTERVAL_MS: invalid value %q", v)
		}
		cfg.TickInterval = time.Duration(n) * time.Millisecond
	}

	if v := getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("REDIS_DB: invalid value %q", v)
		}
		cfg.RedisDB = n
	}

	if v := getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.APIRateLimit = n
		}
	}
	if v := getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.APIRateWindow = time.Duration(n) * time.Second
		}
	}
	if v := getenv("GAME_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.GameRateLimit = n
		}
	}
	if v := getenv("GAME_RATE_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.GameRateWindow = time.Duration(n) * time.Second
		}
	}

	custom, err := customDifficulty(getenv)
	if err != nil {
		return nil, err
	}
	cfg.CustomDifficulty = custom

	// the default difficulty has to exist once the custom one is registered
	if _, err := cfg.Catalog(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// customDifficulty reads CUSTOM_ROWS, CUSTOM_COLS and CUSTOM_MINES. All three
// must be set together.
func customDifficulty(getenv func(string) string) (*game.Difficulty, error) {
	keys := []string{"CUSTOM_ROWS", "CUSTOM_COLS", "CUSTOM_MINES"}
	vals := make([]int, len(keys))
	set := 0
	for i, k := range keys {
		v := getenv(k)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid value %q", k, v)
		}
		vals[i] = n
		set++
	}

	switch set {
	case 0:
		return nil, nil
	case len(keys):
	default:
		return nil, fmt.Errorf("custom difficulty needs %s", strings.Join(keys, ", "))
	}

	d := game.Difficulty{Name: game.DifficultyCustom, Rows: vals[0], Cols: vals[1], Mines: vals[2]}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Catalog builds the difficulty catalog and checks that the default
// difficulty is part of it.
func (c *Config) Catalog() (*game.Catalog, error) {
	var extra []game.Difficulty
	if c.CustomDifficulty != nil {
		extra = append(extra, *c.CustomDifficulty)
	}
	cat, err := game.NewCatalog(extra...)
	if err != nil {
		return nil, err
	}
	if _, err := cat.Lookup(c.DefaultDifficulty); err != nil {
		return nil, fmt.Errorf("DEFAULT_DIFFICULTY: %w", err)
	}
	return cat, nil
}
