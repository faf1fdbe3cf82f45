package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	logpkg "github.com/rzbill/sluice/pkg/log"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	Ledger  LedgerConfig  `json:"ledger" yaml:"ledger"`
	Auth    AuthConfig    `json:"auth" yaml:"auth"`
	Rail    RailConfig    `json:"rail" yaml:"rail"`
	Events  EventsConfig  `json:"events" yaml:"events"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Log     logpkg.Config `json:"log" yaml:"log"`
}

// LedgerConfig holds the stream policy knobs.
type LedgerConfig struct {
	// RequireFutureStart rejects streams whose start lies before the current time.
	RequireFutureStart bool `json:"requireFutureStart" yaml:"requireFutureStart"`
	// AllowSenderWithdraw lets the sender trigger a withdrawal paid to the recipient.
	AllowSenderWithdraw bool `json:"allowSenderWithdraw" yaml:"allowSenderWithdraw"`
	// Store selects the stream store backend: pebble or sqlite.
	Store      string `json:"store" yaml:"store"`
	SQLitePath string `json:"sqlitePath" yaml:"sqlitePath"`
	// ListLimit caps expanded listings.
	ListLimit int `json:"listLimit" yaml:"listLimit"`
}

type AuthConfig struct {
	Secret   string   `json:"secret" yaml:"secret"`
	Issuer   string   `json:"issuer" yaml:"issuer"`
	Audience string   `json:"audience" yaml:"audience"`
	TokenTTL Duration `json:"tokenTTL" yaml:"tokenTTL"`
}

type RailConfig struct {
	// Custody is the address holding streamed value; empty derives one.
	Custody   string `json:"custody" yaml:"custody"`
	AllowMint bool   `json:"allowMint" yaml:"allowMint"`
}

type EventsConfig struct {
	Topic        string   `json:"topic" yaml:"topic"`
	RetentionAge Duration `json:"retentionAge" yaml:"retentionAge"`
	MaxBytes     int64    `json:"maxBytes" yaml:"maxBytes"`
}

type StorageConfig struct {
	Fsync         string   `json:"fsync" yaml:"fsync"` // always|interval|never
	FsyncInterval Duration `json:"fsyncInterval" yaml:"fsyncInterval"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Ledger: LedgerConfig{
			AllowSenderWithdraw: true,
			Store:               "pebble",
			ListLimit:           100,
		},
		Auth: AuthConfig{
			Issuer:   "sluice",
			TokenTTL: Duration(24 * time.Hour),
		},
		Events: EventsConfig{
			Topic:        "ledger/events",
			RetentionAge: Duration(7 * 24 * time.Hour),
		},
		Storage: StorageConfig{
			Fsync:         "interval",
			FsyncInterval: Duration(5 * time.Millisecond),
		},
		Log: logpkg.Config{Level: "info", Format: "text"},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse yaml %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse json %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the runtime cannot honor.
func (c Config) Validate() error {
	switch c.Ledger.Store {
	case "pebble", "":
	case "sqlite":
		if c.Ledger.SQLitePath == "" {
			return errors.New("config: ledger.sqlitePath is required for the sqlite store")
		}
	default:
		return fmt.Errorf("config: unknown ledger.store %q", c.Ledger.Store)
	}
	switch c.Storage.Fsync {
	case "", "always", "interval", "never":
	default:
		return fmt.Errorf("config: unknown storage.fsync %q", c.Storage.Fsync)
	}
	if c.Ledger.ListLimit < 0 {
		return errors.New("config: ledger.listLimit must be >= 0")
	}
	if c.Events.MaxBytes < 0 {
		return errors.New("config: events.maxBytes must be >= 0")
	}
	return nil
}

// Duration is a time.Duration that reads and writes as "1h30m" in files.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML accepts the same text form as UnmarshalText.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}
