package credentials

// Credentials is the content of credentials.toml.
type Credentials struct {
	Version  int                          `toml:"version"`
	Services map[string]ServiceCredential `toml:"services"`
}

// ServiceCredential holds the API key for one external service.
type ServiceCredential struct {
	APIKey string `toml:"api_key"`
}
