package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingCredentials indicates no credentials entry exists for a backend.
var ErrMissingCredentials = errors.New("missing backend credentials")

// BackendCredentials holds the secrets needed to reach one provider API.
type BackendCredentials struct {
	APIKey       string `json:"api_key"`
	Organisation string `json:"organisation,omitempty"`
	BaseURL      string `json:"base_url,omitempty"`
}

// Credentials maps backend names to their credentials, matching the layout of
// a key.json file: {"openai": {"api_key": "..."}}.
type Credentials map[string]BackendCredentials

// LoadCredentials reads a key.json credentials file. A missing file yields an
// empty credential set so that runs with the mock backend need no key file.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return creds, nil
}

// For returns the credentials for a backend.
func (c Credentials) For(backend string) (BackendCredentials, error) {
	entry, ok := c[backend]
	if !ok {
		return BackendCredentials{}, fmt.Errorf("%w: %q", ErrMissingCredentials, backend)
	}
	if strings.TrimSpace(entry.APIKey) == "" {
		return BackendCredentials{}, fmt.Errorf("%w: %q has no api_key", ErrMissingCredentials, backend)
	}
	return entry, nil
}

// WithOverrides returns a copy with non-empty override fields applied on top
// of the file-based entries, used for environment variable overrides.
func (c Credentials) WithOverrides(backend string, override BackendCredentials) Credentials {
	merged := make(Credentials, len(c)+1)
	for name, entry := range c {
		merged[name] = entry
	}
	entry := merged[backend]
	if override.APIKey != "" {
		entry.APIKey = override.APIKey
	}
	if override.Organisation != "" {
		entry.Organisation = override.Organisation
	}
	if override.BaseURL != "" {
		entry.BaseURL = override.BaseURL
	}
	merged[backend] = entry
	return merged
}
