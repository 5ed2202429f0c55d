// Package credentials resolves the insight API key.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// ErrNotFound means no API key is configured anywhere. Callers fall back to mock insights.
var ErrNotFound = errors.New("api key not found")

// Source names where a key was found.
type Source string

const (
	SourceEnv     Source = "env"
	SourceKeyring Source = "keyring"
)

// Lookup describes where to look for the key.
type Lookup struct {
	EnvVar         string
	KeyringService string
	KeyringUser    string
}

// Resolve returns the API key from the environment variable, then the system keyring.
// A keyring that is unavailable is treated like an empty one.
func Resolve(l Lookup) (string, Source, error) {
	if l.EnvVar != "" {
		if v := strings.TrimSpace(os.Getenv(l.EnvVar)); v != "" {
			return v, SourceEnv, nil
		}
	}

	if l.KeyringService == "" || l.KeyringUser == "" {
		return "", "", ErrNotFound
	}

	v, err := keyring.Get(l.KeyringService, l.KeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", "", ErrNotFound
		}
		return "", "", fmt.Errorf("%w: keyring: %v", ErrNotFound, err)
	}
	if v = strings.TrimSpace(v); v == "" {
		return "", "", ErrNotFound
	}
	return v, SourceKeyring, nil
}

// Store saves key in the system keyring.
func Store(l Lookup, key string) error {
	if err := keyring.Set(l.KeyringService, l.KeyringUser, strings.TrimSpace(key)); err != nil {
		return fmt.Errorf("store api key: %w", err)
	}
	return nil
}
