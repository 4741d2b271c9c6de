// Package credentials keeps API keys for external services in
// credentials.toml, next to config.toml but outside of it, so config files
// can be shared without leaking secrets.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/reportkit/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0

	// Resend is the mail provider used by the relay.
	Resend = "resend"
)

var serviceEnvVars = map[string]string{
	Resend: "RESEND_API_KEY",
}

// Manager reads and writes credentials.toml in the .reportkit/ directory.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a Manager. A non-empty override is used as the
// .reportkit/ directory; otherwise dotdir resolution applies and
// ~/.reportkit/ is created when nothing is found.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{ddm: dotdir.NewManager()}

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	if target == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home dir: %w", err)
		}
		target = filepath.Join(home, ".reportkit")
		if err := os.MkdirAll(target, 0o755); err != nil {
			return nil, fmt.Errorf("creating reportkit dir: %w", err)
		}
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)
	return mgr, nil
}

// Load reads credentials.toml. A missing file yields empty credentials.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{
				Version:  currentVersion,
				Services: make(map[string]ServiceCredential),
			}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	if creds.Services == nil {
		creds.Services = make(map[string]ServiceCredential)
	}

	return creds, nil
}

// Save writes credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

// SetKey stores an API key for service.
func (m *Manager) SetKey(service, key string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Services[service] = ServiceCredential{APIKey: key}
	return m.Save(creds)
}

// GetKey returns the stored key for service, or "" when none is stored.
func (m *Manager) GetKey(service string) (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}
	return creds.Services[service].APIKey, nil
}

// RemoveKey deletes the stored key for service.
func (m *Manager) RemoveKey(service string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	delete(creds.Services, service)
	return m.Save(creds)
}

// ListServices returns the services with stored keys, sorted.
func (m *Manager) ListServices() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	services := make([]string, 0, len(creds.Services))
	for name := range creds.Services {
		services = append(services, name)
	}
	sort.Strings(services)
	return services, nil
}

// GetTarget returns the path of credentials.toml.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

// EnvVarForService returns the environment variable that also supplies
// the key for service.
func EnvVarForService(service string) string {
	return serviceEnvVars[service]
}

// SupportedServices lists the services a key can be stored for.
func SupportedServices() []string {
	return []string{Resend}
}

// IsSupportedService reports whether service is in SupportedServices.
func IsSupportedService(service string) bool {
	return slices.Contains(SupportedServices(), service)
}
