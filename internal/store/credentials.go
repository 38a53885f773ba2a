package store

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-caltemp/internal/config"
)

// Keyring keeps the OpenRouter API key in the OS secret store
// (Keychain, Credential Manager, Secret Service).
type Keyring struct {
	Service string
	User    string
}

// NewKeyring returns the application's keyring entry.
func NewKeyring() Keyring {
	return Keyring{Service: config.KeyringService, User: config.KeyringUser}
}

// APIKey returns the stored key, or "" when none is stored.
func (k Keyring) APIKey() (string, error) {
	key, err := keyring.Get(k.Service, k.User)
	if errors.Is(err, keyring.ErrNotFound) {
		slog.Debug(config.MsgKeyMissing, config.LogKeyComponent, config.CompStore)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrKeyringRead, err)
	}
	return key, nil
}

// SetAPIKey stores key, replacing any previous value.
func (k Keyring) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New(config.ErrEmptyAPIKey)
	}
	if err := keyring.Set(k.Service, k.User, key); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyringWrite, err)
	}
	return nil
}

// DeleteAPIKey removes the stored key. Deleting a missing key is not an error.
func (k Keyring) DeleteAPIKey() error {
	err := keyring.Delete(k.Service, k.User)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%s: %w", config.ErrKeyringDelete, err)
	}
	return nil
}
