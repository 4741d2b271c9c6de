// Package api provides the reportkit relay server: it turns send-report
// requests into emails and serves the metric catalog and saved reports.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":3001")
	ListenAddr string

	// From is the sender address for report emails.
	From string

	// AllowOrigins is the CORS allow list. Defaults to "*".
	AllowOrigins string
}
