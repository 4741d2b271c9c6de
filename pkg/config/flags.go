package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline, so the same logical flag
// (e.g. --sqlite on "reportkit generate" and "reportkit serve") cannot drift.
type Flag struct {
	// Name is the long flag name (e.g. "sqlite").
	Name string

	// Shorthand is the one-letter short flag (e.g. "s"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "storage.sqlite_path").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddIntFlag, AddBoolFlag
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagReportName    = "name"
	FlagReportCount   = "count"
	FlagStorageDriver = "storage"
	FlagSQLite        = "sqlite"
	FlagPostgres      = "postgres"
	FlagRelayURL      = "relay-url"
	FlagSimulateEmail = "simulate-email"
	FlagEmailFrom     = "from"
	FlagListen        = "listen"
	FlagKafkaBrokers  = "kafka-brokers"
	FlagKafkaTopic    = "kafka-topic"
)

// Registry holds the flag definitions shared by reportkit commands.
var Registry = FlagSet{
	FlagReportName:    {Name: "name", ViperKey: "report.name", Description: "Report name"},
	FlagReportCount:   {Name: "count", Shorthand: "n", ViperKey: "report.count", Description: "Number of records to generate (10-1000)"},
	FlagStorageDriver: {Name: "storage", ViperKey: "storage.driver", Description: "Saved report storage (memory, sqlite, postgres)"},
	FlagSQLite:        {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to SQLite database (default: .reportkit/reportkit.sqlite)"},
	FlagPostgres:      {Name: "postgres", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string"},
	FlagRelayURL:      {Name: "relay-url", ViperKey: "email.relay_url", Description: "Email relay service URL"},
	FlagSimulateEmail: {Name: "simulate-email", ViperKey: "email.simulate_on_failure", Description: "Report a simulated success when the relay is unreachable"},
	FlagEmailFrom:     {Name: "from", ViperKey: "email.from", Description: "Sender address for report emails"},
	FlagListen:        {Name: "listen", Shorthand: "l", ViperKey: "relay.listen", Description: "Address for the relay server to listen on"},
	FlagKafkaBrokers:  {Name: "kafka-brokers", ViperKey: "events.kafka_brokers", Description: "Comma-separated Kafka brokers for report events (empty disables events)"},
	FlagKafkaTopic:    {Name: "kafka-topic", ViperKey: "events.kafka_topic", Description: "Kafka topic for report events"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, key string, target *int) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaults returns a viper holding only NewDefaultConfig values.
func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}

// FromCommand layers config for cmd: it resolves the config directory from
// the persistent --config-dir flag, binds the listed registry flags and
// returns the merged Config.
func FromCommand(cmd *cobra.Command, registryKeys ...string) (*Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := InitViper(configDir)
	if err != nil {
		return nil, err
	}

	BindRegisteredFlags(v, cmd, Registry, registryKeys)

	cfg := FromViper(v)
	if err := validateDriver(cfg.Storage.Driver); err != nil {
		return nil, err
	}
	return cfg, nil
}
