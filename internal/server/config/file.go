package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/eventsync/internal/flagx"
	"github.com/dmitrijs2005/eventsync/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config file, shared by JSON and
// YAML. Durations use timex.Duration so "12h" and nanosecond integers both
// work. Unset fields leave the current value alone.
type FileConfig struct {
	HTTPAddr              string         `json:"http_addr" yaml:"http_addr"`
	DBDriver              string         `json:"db_driver" yaml:"db_driver"`
	DatabaseDSN           string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey             string         `json:"secret_key" yaml:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration" yaml:"token_validity_duration"`
	BatchLimit            *int           `json:"batch_limit" yaml:"batch_limit"`
	ArchiveBackend        string         `json:"archive_backend" yaml:"archive_backend"`
	S3RootUser            string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region              string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	ArchiveSchedule       string         `json:"archive_schedule" yaml:"archive_schedule"`
	Timezone              string         `json:"timezone" yaml:"timezone"`
	ArchiveLookbackYears  int            `json:"archive_lookback_years" yaml:"archive_lookback_years"`
	ArchiveSweepLimit     int            `json:"archive_sweep_limit" yaml:"archive_sweep_limit"`
	ShutdownTimeout       timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel              string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c/-config, if any, into config.
// flagx decides the format from the extension. An unreadable or malformed
// file panics.
func parseFile(config *Config) {
	file := flagx.ConfigFileFlag()
	if file.Path == "" {
		return
	}

	raw, err := os.ReadFile(file.Path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch file.Format {
	case flagx.FormatYAML:
		err = yaml.Unmarshal(raw, c)
	default:
		err = json.Unmarshal(raw, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&config.HTTPAddr, c.HTTPAddr)
	set(&config.DBDriver, c.DBDriver)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.BatchLimit != nil {
		config.BatchLimit = *c.BatchLimit
	}
	set(&config.ArchiveBackend, c.ArchiveBackend)
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	set(&config.ArchiveSchedule, c.ArchiveSchedule)
	set(&config.Timezone, c.Timezone)
	if c.ArchiveLookbackYears != 0 {
		config.ArchiveLookbackYears = c.ArchiveLookbackYears
	}
	if c.ArchiveSweepLimit != 0 {
		config.ArchiveSweepLimit = c.ArchiveSweepLimit
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	set(&config.LogLevel, c.LogLevel)
}
