package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zalando/go-keyring"

	"taskman/internal/config"
)

// KeyringService is the service name tokens are filed under in the OS keychain.
const KeyringService = "taskman"

var (
	// ErrSecretNotFound is returned when no token is stored for a profile.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrSecretStoreUnavailable is returned when the secret store cannot be
	// used at all. Tokens are never written anywhere else in that case.
	ErrSecretStoreUnavailable = errors.New("secret store unavailable")
)

// SecretStore keeps one token per profile.
type SecretStore interface {
	Get(profile string) (string, error)
	Set(profile, secret string) error
	Delete(profile string) error
}

// SecretsFor returns the token store selected by cfg.TokenStore.
func SecretsFor(cfg *config.Config) SecretStore {
	if cfg.TokenStore == config.TokenStoreFile {
		return NewFileSecrets(cfg.CredentialsPath())
	}
	return NewKeyring()
}

// Keyring stores tokens in the OS keychain (Secret Service, macOS
// Keychain, Windows Credential Manager).
type Keyring struct {
	Service string
}

// NewKeyring returns a keychain-backed store.
func NewKeyring() *Keyring {
	return &Keyring{Service: KeyringService}
}

func (k *Keyring) Get(profile string) (string, error) {
	s, err := keyring.Get(k.Service, profile)
	if err != nil {
		return "", keyringError(err)
	}
	return s, nil
}

func (k *Keyring) Set(profile, secret string) error {
	if err := keyring.Set(k.Service, profile, secret); err != nil {
		return keyringError(err)
	}
	return nil
}

func (k *Keyring) Delete(profile string) error {
	if err := keyring.Delete(k.Service, profile); err != nil {
		return keyringError(err)
	}
	return nil
}

func keyringError(err error) error {
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrSecretNotFound
	}
	return fmt.Errorf("%w: %v", ErrSecretStoreUnavailable, err)
}

// FileSecrets stores tokens in a 0600 JSON file. It is only used when the
// user selects token_store: file.
type FileSecrets struct {
	mu   sync.Mutex
	path string
}

// NewFileSecrets returns a file-backed store at path.
func NewFileSecrets(path string) *FileSecrets {
	return &FileSecrets{path: path}
}

func (f *FileSecrets) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSecretStoreUnavailable, err)
	}
	secrets := map[string]string{}
	if err := json.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("%w: invalid %s: %v", ErrSecretStoreUnavailable, filepath.Base(f.path), err)
	}
	return secrets, nil
}

func (f *FileSecrets) write(secrets map[string]string) error {
	if len(secrets) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrSecretStoreUnavailable, err)
		}
		return nil
	}
	data, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("%w: %v", ErrSecretStoreUnavailable, err)
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", ErrSecretStoreUnavailable, err)
	}
	return nil
}

func (f *FileSecrets) Get(profile string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	secrets, err := f.read()
	if err != nil {
		return "", err
	}
	s, ok := secrets[profile]
	if !ok {
		return "", ErrSecretNotFound
	}
	return s, nil
}

func (f *FileSecrets) Set(profile, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	secrets, err := f.read()
	if err != nil {
		return err
	}
	secrets[profile] = secret
	return f.write(secrets)
}

func (f *FileSecrets) Delete(profile string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	secrets, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := secrets[profile]; !ok {
		return ErrSecretNotFound
	}
	delete(secrets, profile)
	return f.write(secrets)
}

// MemorySecrets is an in-process store, used in tests.
type MemorySecrets struct {
	mu      sync.Mutex
	secrets map[string]string
}

// NewMemorySecrets returns an empty in-memory store.
func NewMemorySecrets() *MemorySecrets {
	return &MemorySecrets{secrets: map[string]string{}}
}

func (m *MemorySecrets) Get(profile string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.secrets[profile]
	if !ok {
		return "", ErrSecretNotFound
	}
	return s, nil
}

func (m *MemorySecrets) Set(profile, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[profile] = secret
	return nil
}

func (m *MemorySecrets) Delete(profile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.secrets[profile]; !ok {
		return ErrSecretNotFound
	}
	delete(m.secrets, profile)
	return nil
}
