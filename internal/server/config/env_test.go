package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv(t *testing.T) {
	oldLoad := loadDotEnv
	loaded := false
	loadDotEnv = func() { loaded = true }
	t.Cleanup(func() { loadDotEnv = oldLoad })

	t.Setenv("EVENTSYNC_HTTP_ADDR", ":7070")
	t.Setenv("EVENTSYNC_DB_DRIVER", "sqlite")
	t.Setenv("EVENTSYNC_TOKEN_TTL", "90m")
	t.Setenv("EVENTSYNC_BATCH_LIMIT", "50")
	t.Setenv("EVENTSYNC_ARCHIVE_SWEEP_LIMIT", "not-a-number")
	t.Setenv("EVENTSYNC_SHUTDOWN_TIMEOUT", "garbage")
	t.Setenv("EVENTSYNC_SECRET_KEY", "")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.True(t, loaded)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 90*time.Minute, cfg.TokenValidityDuration)
	assert.Equal(t, 50, cfg.BatchLimit)
	assert.Equal(t, 450, cfg.ArchiveSweepLimit)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "secretKey", cfg.SecretKey)
}
