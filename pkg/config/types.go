package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent reportkit configuration stored as
// config.toml in the .reportkit/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Report  ReportConfig  `toml:"report"`
	Storage StorageConfig `toml:"storage"`
	Email   EmailConfig   `toml:"email"`
	Relay   RelayConfig   `toml:"relay"`
	Events  EventsConfig  `toml:"events"`
}

// ReportConfig holds defaults for newly generated reports.
type ReportConfig struct {
	Name  string `toml:"name,omitempty"`
	Count int    `toml:"count,omitempty"`
}

// StorageConfig selects where saved report definitions live.
type StorageConfig struct {
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EmailConfig holds settings for sending reports by email, both for the
// CLI client (relay_url, simulate_on_failure) and the relay itself
// (from, resend_api_key).
type EmailConfig struct {
	RelayURL          string `toml:"relay_url,omitempty"`
	SimulateOnFailure bool   `toml:"simulate_on_failure,omitempty"`
	From              string `toml:"from,omitempty"`
	ResendAPIKey      string `toml:"resend_api_key,omitempty"`
}

// RelayConfig holds relay server settings.
type RelayConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// EventsConfig holds report event stream settings. Events are disabled
// when no brokers are configured.
type EventsConfig struct {
	KafkaBrokers string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string `toml:"kafka_topic,omitempty"`
}

// Brokers splits the comma-separated broker list.
func (e EventsConfig) Brokers() []string {
	return SplitList(e.KafkaBrokers)
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ValidStorageDrivers returns the supported storage.driver values.
func ValidStorageDrivers() []string {
	return []string{DriverMemory, DriverSQLite, DriverPostgres}
}

func validateDriver(v string) error {
	switch v {
	case DriverMemory, DriverSQLite, DriverPostgres:
		return nil
	default:
		return fmt.Errorf("invalid value for storage.driver: %q (available: %s)", v, strings.Join(ValidStorageDrivers(), ", "))
	}
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get    func(c *Config) string
	set    func(c *Config, v string) error
	secret bool
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"report.name": {
		get: func(c *Config) string { return c.Report.Name },
		set: func(c *Config, v string) error { c.Report.Name = v; return nil },
	},
	"report.count": {
		get: func(c *Config) string {
			if c.Report.Count == 0 {
				return ""
			}
			return strconv.Itoa(c.Report.Count)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for report.count: %w", err)
			}
			if n < 10 || n > 1000 {
				return fmt.Errorf("invalid value for report.count: %d is outside 10-1000", n)
			}
			c.Report.Count = n
			return nil
		},
	},
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error {
			if err := validateDriver(v); err != nil {
				return err
			}
			c.Storage.Driver = v
			return nil
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get:    func(c *Config) string { return c.Storage.PostgresDSN },
		set:    func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
		secret: true,
	},
	"email.relay_url": {
		get: func(c *Config) string { return c.Email.RelayURL },
		set: func(c *Config, v string) error { c.Email.RelayURL = v; return nil },
	},
	"email.simulate_on_failure": {
		get: func(c *Config) string { return strconv.FormatBool(c.Email.SimulateOnFailure) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for email.simulate_on_failure: %w", err)
			}
			c.Email.SimulateOnFailure = b
			return nil
		},
	},
	"email.from": {
		get: func(c *Config) string { return c.Email.From },
		set: func(c *Config, v string) error { c.Email.From = v; return nil },
	},
	"email.resend_api_key": {
		get:    func(c *Config) string { return c.Email.ResendAPIKey },
		set:    func(c *Config, v string) error { c.Email.ResendAPIKey = v; return nil },
		secret: true,
	},
	"relay.listen": {
		get: func(c *Config) string { return c.Relay.Listen },
		set: func(c *Config, v string) error { c.Relay.Listen = v; return nil },
	},
	"events.kafka_brokers": {
		get: func(c *Config) string { return c.Events.KafkaBrokers },
		set: func(c *Config, v string) error { c.Events.KafkaBrokers = v; return nil },
	},
	"events.kafka_topic": {
		get: func(c *Config) string { return c.Events.KafkaTopic },
		set: func(c *Config, v string) error { c.Events.KafkaTopic = v; return nil },
	},
}
