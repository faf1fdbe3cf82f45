package config

import (
	"os"
	"strconv"
	"time"
)

// FromEnv overlays SLUICE_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	envBool("SLUICE_LEDGER_REQUIRE_FUTURE_START", &cfg.Ledger.RequireFutureStart)
	envBool("SLUICE_LEDGER_ALLOW_SENDER_WITHDRAW", &cfg.Ledger.AllowSenderWithdraw)
	envString("SLUICE_LEDGER_STORE", &cfg.Ledger.Store)
	envString("SLUICE_LEDGER_SQLITE_PATH", &cfg.Ledger.SQLitePath)
	if v := os.Getenv("SLUICE_LEDGER_LIST_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ledger.ListLimit = n
		}
	}

	envString("SLUICE_AUTH_SECRET", &cfg.Auth.Secret)
	envString("SLUICE_AUTH_ISSUER", &cfg.Auth.Issuer)
	envString("SLUICE_AUTH_AUDIENCE", &cfg.Auth.Audience)
	envDuration("SLUICE_AUTH_TOKEN_TTL", &cfg.Auth.TokenTTL)

	envString("SLUICE_RAIL_CUSTODY", &cfg.Rail.Custody)
	envBool("SLUICE_RAIL_ALLOW_MINT", &cfg.Rail.AllowMint)

	envString("SLUICE_EVENTS_TOPIC", &cfg.Events.Topic)
	envDuration("SLUICE_EVENTS_RETENTION", &cfg.Events.RetentionAge)
	if v := os.Getenv("SLUICE_EVENTS_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Events.MaxBytes = n
		}
	}

	envString("SLUICE_FSYNC", &cfg.Storage.Fsync)
	envDuration("SLUICE_FSYNC_INTERVAL", &cfg.Storage.FsyncInterval)

	envString("SLUICE_LOG_LEVEL", &cfg.Log.Level)
	envString("SLUICE_LOG_FORMAT", &cfg.Log.Format)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envDuration(key string, dst *Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}
