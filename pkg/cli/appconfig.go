package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// AppConfig is the persisted application configuration.
type AppConfig struct {
	// ClientID and ClientSecret identify the OAuth client used for the
	// Drive appdata scope. Environment variables take precedence.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`

	// Timezone is the IANA zone reminders are computed in. Empty means
	// the system local zone.
	Timezone string `yaml:"timezone"`

	// Notifications mirrors the browser notification grant: reminders
	// only fire when it is true.
	Notifications bool `yaml:"notifications"`

	// DocumentName overrides the remote document name.
	DocumentName string `yaml:"document_name,omitempty"`
}

// LoadAppConfig loads the YAML config, returning defaults when the file
// does not exist yet.
func LoadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &AppConfig{}, nil
		}
		return nil, goerr.Wrap(err, "failed to read config", goerr.V("path", path))
	}

	var app AppConfig
	if err := yaml.Unmarshal(data, &app); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config", goerr.V("path", path))
	}
	return &app, nil
}

// Save writes the config with 0600 permissions via an atomic rename.
func (a *AppConfig) Save(path string) error {
	data, err := yaml.Marshal(a)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal config")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return goerr.Wrap(err, "failed to create config directory", goerr.V("dir", dir))
	}

	tmp, err := os.CreateTemp(dir, ".overleg-config-*.tmp")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return goerr.Wrap(err, "failed to write config")
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close temp file")
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return goerr.Wrap(err, "failed to chmod config")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return goerr.Wrap(err, "failed to replace config", goerr.V("path", path))
	}
	return nil
}
