package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/coaching")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Empty(t, cfg.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 30*time.Second, cfg.SlotLockTTL)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.False(t, cfg.TelegramEnabled())
	assert.False(t, cfg.RecordingSweepEnabled())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Seoul", loc.String())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/coaching")
	t.Setenv("SLOT_LOCK_TTL", "5s")
	t.Setenv("GOOGLE_ACCESS_TOKEN", "token")
	t.Setenv("RECORDINGS_INSTRUCTOR_ID", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.SlotLockTTL)
	assert.Equal(t, int64(42), cfg.RecordingsInstructorID)
	assert.True(t, cfg.RecordingSweepEnabled())
}

func TestLoad_RequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	require.NoError(t, os.Unsetenv("DB_DSN"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownTimezone(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/coaching")
	t.Setenv("DEFAULT_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}
