package config

import (
	"errors"
	"testing"
	"time"

	"minesweeper/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, game.DifficultyEasy, cfg.DefaultDifficulty)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Nil(t, cfg.CustomDifficulty)
	assert.Equal(t, 120, cfg.APIRateLimit)
	assert.Equal(t, time.Minute, cfg.GameRateWindow)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envFrom(map[string]string{
		"APP_PORT":                "9000",
		"LOG_LEVEL":               "DEBUG",
		"LOG_JSON":                "true",
		"DEFAULT_DIFFICULTY":      "Hard",
		"TICK_INTERVAL_MS":        "0",
		"REDIS_ADDR":              "localhost:6379",
		"REDIS_DB":                "2",
		"API_RATE_LIMIT":          "5",
		"API_RATE_WINDOW_SECONDS": "10",
		"GAME_RATE_LIMIT":         "-3",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, game.DifficultyHard, cfg.DefaultDifficulty)
	assert.Equal(t, time.Duration(0), cfg.TickInterval)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 5, cfg.APIRateLimit)
	assert.Equal(t, 10*time.Second, cfg.APIRateWindow)
	assert.Equal(t, 600, cfg.GameRateLimit, "non-positive limits keep the default")
}

func TestFromEnvCustomDifficulty(t *testing.T) {
	cfg, err := FromEnv(envFrom(map[string]string{
		"CUSTOM_ROWS":        "10",
		"CUSTOM_COLS":        "12",
		"CUSTOM_MINES":       "20",
		"DEFAULT_DIFFICULTY": "custom",
	}))
	require.NoError(t, err)
	require.NotNil(t, cfg.CustomDifficulty)
	assert.Equal(t, game.Difficulty{Name: game.DifficultyCustom, Rows: 10, Cols: 12, Mines: 20}, *cfg.CustomDifficulty)

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Len(t, cat.List(), 4)
}

func TestFromEnvRejectsTooManyMines(t *testing.T) {
	_, err := FromEnv(envFrom(map[string]string{
		"CUSTOM_ROWS":  "4",
		"CUSTOM_COLS":  "4",
		"CUSTOM_MINES": "16",
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, game.ErrTooManyMines))
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := []map[string]string{
		{"CUSTOM_ROWS": "4", "CUSTOM_COLS": "4"},
		{"CUSTOM_ROWS": "four", "CUSTOM_COLS": "4", "CUSTOM_MINES": "1"},
		{"DEFAULT_DIFFICULTY": "custom"},
		{"DEFAULT_DIFFICULTY": "nightmare"},
		{"TICK_INTERVAL_MS": "-1"},
		{"REDIS_DB": "x"},
	}
	for _, env := range cases {
		_, err := FromEnv(envFrom(env))
		assert.Error(t, err, "env %v", env)
	}
}
