package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv is a seam for tests. A missing .env file is fine.
var loadDotEnv = func() { _ = godotenv.Load() }

const envPrefix = "EVENTSYNC_"

// parseEnv overlays EVENTSYNC_* variables, after loading .env from the
// working directory. Variables already set in the process win over .env.
// Malformed numbers and durations are ignored.
func parseEnv(c *Config) {
	loadDotEnv()

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	str("HTTP_ADDR", &c.HTTPAddr)
	str("DB_DRIVER", &c.DBDriver)
	str("DATABASE_DSN", &c.DatabaseDSN)
	str("SECRET_KEY", &c.SecretKey)
	dur("TOKEN_TTL", &c.TokenValidityDuration)
	num("BATCH_LIMIT", &c.BatchLimit)
	str("ARCHIVE_BACKEND", &c.ArchiveBackend)
	str("S3_ROOT_USER", &c.S3RootUser)
	str("S3_ROOT_PASSWORD", &c.S3RootPassword)
	str("S3_BUCKET", &c.S3Bucket)
	str("S3_REGION", &c.S3Region)
	str("S3_BASE_ENDPOINT", &c.S3BaseEndpoint)
	str("ARCHIVE_SCHEDULE", &c.ArchiveSchedule)
	str("TIMEZONE", &c.Timezone)
	num("ARCHIVE_LOOKBACK_YEARS", &c.ArchiveLookbackYears)
	num("ARCHIVE_SWEEP_LIMIT", &c.ArchiveSweepLimit)
	dur("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout)
	str("LOG_LEVEL", &c.LogLevel)
}
