package session

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "paperpush-cli"

// KeyringStore persists session fields in the OS keychain/credential manager.
// Entries are namespaced by server so several backends can be logged in at once.
type KeyringStore struct {
	server string
}

// NewKeyringStore creates a keyring-backed store for the given server
func NewKeyringStore(server string) *KeyringStore {
	return &KeyringStore{server: server}
}

// keyringKey returns a unique keyring entry name per server and field
func (k *KeyringStore) keyringKey(key string) string {
	return fmt.Sprintf("%s-%s", key, k.server)
}

func (k *KeyringStore) Get(key string) (string, error) {
	value, err := keyring.Get(keyringService, k.keyringKey(key))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load %s from keyring: %w", key, err)
	}
	return value, nil
}

func (k *KeyringStore) Set(key, value string) error {
	if err := keyring.Set(keyringService, k.keyringKey(key), value); err != nil {
		return fmt.Errorf("failed to save %s to keyring: %w", key, err)
	}
	return nil
}

func (k *KeyringStore) Delete(key string) error {
	if err := keyring.Delete(keyringService, k.keyringKey(key)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
	}
	return nil
}
