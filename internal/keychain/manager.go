// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores sfkit secrets in the OS credential store: the technical
// account private key and passphrase, and the notification webhook URL.
//
// macOS uses the security command directly and falls back to the keyring
// library; Windows uses Credential Manager and Linux the Secret Service or pass.
// Values are never written to disk by sfkit itself.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// ErrNotFound is returned when a secret is absent or empty.
var ErrNotFound = errors.New("secret not found in keychain")

// Manager provides thread-safe access to the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
}

// keychainBackend defines the interface for keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "sfkit"

// Keys used for storing secrets in the OS keychain.
const (
	KeyTechPrivateKey = "tech_private_key"
	KeyTechPassphrase = "tech_key_passphrase"
	KeyWebhookURL     = "webhook_url"
)

// Keys lists every key sfkit writes, in display order.
var Keys = []string{KeyTechPrivateKey, KeyTechPassphrase, KeyWebhookURL}

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	if runtime.GOOS == "darwin" {
		backend, err := newSecurityBackend()
		if err == nil {
			return &Manager{backend: backend}, nil
		}
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return NewManagerWithRing(ring), nil
}

// NewManagerWithRing wraps an already opened keyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance, creating it on first
// use. A failed initialization is retried on the next call.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only; there is
// no encrypted-file fallback.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	case "linux":
		allowedBackends = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on this OS")
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. On macOS 26.0+, install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

// Save stores value under key.
func (m *Manager) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Set(key, value)
	}
	return m.ring.Set(keyring.Item{Key: key, Label: ServiceName + " " + key, Data: []byte(value)})
}

// Load returns the value stored under key, or ErrNotFound.
func (m *Manager) Load(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var value string
	if m.backend != nil {
		v, err := m.backend.Get(key)
		if err != nil {
			return "", err
		}
		value = v
	} else {
		it, err := m.ring.Get(key)
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		if err != nil {
			return "", err
		}
		value = string(it.Data)
	}
	if value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// Has reports whether a non-empty value is stored under key.
func (m *Manager) Has(key string) bool {
	_, err := m.Load(key)
	return err == nil
}

// Delete removes key. Missing keys are not an error.
func (m *Manager) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Delete(key)
	}
	if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// ClearAll removes every sfkit secret from the keychain.
func (m *Manager) ClearAll() error {
	var errs []error
	for _, k := range Keys {
		if err := m.Delete(k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
