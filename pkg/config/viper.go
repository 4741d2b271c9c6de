package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/reportkit/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the REPORTKIT_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (REPORTKIT_RELAY_LISTEN, REPORTKIT_STORAGE_DRIVER, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: REPORTKIT_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix("REPORTKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The Resend SDK convention is an unprefixed RESEND_API_KEY.
	_ = v.BindEnv("email.resend_api_key", "REPORTKIT_EMAIL_RESEND_API_KEY", "RESEND_API_KEY")

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Report
	v.SetDefault("report.name", d.Report.Name)
	v.SetDefault("report.count", d.Report.Count)

	// Storage
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	// Email
	v.SetDefault("email.relay_url", d.Email.RelayURL)
	v.SetDefault("email.simulate_on_failure", d.Email.SimulateOnFailure)
	v.SetDefault("email.from", d.Email.From)
	v.SetDefault("email.resend_api_key", d.Email.ResendAPIKey)

	// Relay
	v.SetDefault("relay.listen", d.Relay.Listen)

	// Events
	v.SetDefault("events.kafka_brokers", d.Events.KafkaBrokers)
	v.SetDefault("events.kafka_topic", d.Events.KafkaTopic)
}

// FromViper reads the fully layered configuration out of v.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Report: ReportConfig{
			Name:  v.GetString("report.name"),
			Count: v.GetInt("report.count"),
		},
		Storage: StorageConfig{
			Driver:      v.GetString("storage.driver"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		Email: EmailConfig{
			RelayURL:          v.GetString("email.relay_url"),
			SimulateOnFailure: v.GetBool("email.simulate_on_failure"),
			From:              v.GetString("email.from"),
			ResendAPIKey:      v.GetString("email.resend_api_key"),
		},
		Relay: RelayConfig{
			Listen: v.GetString("relay.listen"),
		},
		Events: EventsConfig{
			KafkaBrokers: v.GetString("events.kafka_brokers"),
			KafkaTopic:   v.GetString("events.kafka_topic"),
		},
	}
}
