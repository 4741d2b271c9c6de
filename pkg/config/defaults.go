package config

const (
	defaultReportName  = "New Custom Report"
	defaultReportCount = 100

	defaultStorageDriver = DriverSQLite

	defaultRelayListen = ":3001"
	defaultRelayURL    = "http://localhost:3001"
	defaultEmailFrom   = "Custom Reports <reports@example.com>"

	defaultKafkaTopic = "reportkit.reports"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Report: ReportConfig{
			Name:  defaultReportName,
			Count: defaultReportCount,
		},
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		Email: EmailConfig{
			RelayURL: defaultRelayURL,
			From:     defaultEmailFrom,
		},
		Relay: RelayConfig{
			Listen: defaultRelayListen,
		},
		Events: EventsConfig{
			KafkaTopic: defaultKafkaTopic,
		},
	}
}
