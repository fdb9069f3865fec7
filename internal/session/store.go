// Package session persists named profiles between invocations.
//
// Profile metadata (API URL, user id, email) lives in one JSON file with a
// current_profile pointer. Tokens never go into that file; they are kept in
// a SecretStore keyed by profile name.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultProfile is the profile name used when none is given at login.
const DefaultProfile = "default"

var (
	// ErrNoConfig is returned when the profiles file does not exist.
	ErrNoConfig = errors.New("no saved profiles")

	// ErrProfileNotFound is returned when a named profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")
)

// Profile is one saved login.
type Profile struct {
	Name   string `json:"-"`
	APIURL string `json:"api_url"`
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`

	// Token is loaded from and saved to the SecretStore.
	Token string `json:"-"`
}

type state struct {
	CurrentProfile string             `json:"current_profile"`
	Profiles       map[string]Profile `json:"profiles"`
}

// Store reads and writes the profiles file.
type Store struct {
	path    string
	secrets SecretStore
}

// NewStore returns a Store for the profiles file at path. secrets may be
// nil, in which case every operation touching a token fails with
// ErrSecretStoreUnavailable.
func NewStore(path string, secrets SecretStore) *Store {
	return &Store{path: path, secrets: secrets}
}

// Path returns the profiles file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns a profile with its token. An empty name loads the current
// profile. A profile without a stored token loads with an empty Token.
func (s *Store) Load(name string) (*Profile, error) {
	st, err := s.read()
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = st.CurrentProfile
	}
	p, ok := st.Profiles[name]
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, displayName(name))
	}
	p.Name = name

	secrets, err := s.secretStore()
	if err != nil {
		return nil, err
	}
	token, err := secrets.Get(name)
	if err != nil && !errors.Is(err, ErrSecretNotFound) {
		return nil, err
	}
	p.Token = token
	return &p, nil
}

// Save stores p under name and makes it the current profile. The token is
// written first so a secret store failure leaves the file untouched.
func (s *Store) Save(name string, p Profile) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("profile name required")
	}

	if p.Token != "" {
		secrets, err := s.secretStore()
		if err != nil {
			return err
		}
		if err := secrets.Set(name, p.Token); err != nil {
			return err
		}
	}

	st, err := s.read()
	if errors.Is(err, ErrNoConfig) {
		st = &state{}
	} else if err != nil {
		return err
	}
	if st.Profiles == nil {
		st.Profiles = map[string]Profile{}
	}

	p.Name = ""
	p.Token = ""
	st.Profiles[name] = p
	st.CurrentProfile = name
	return s.write(st)
}

// Switch makes name the current profile.
func (s *Store) Switch(name string) error {
	st, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := st.Profiles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, displayName(name))
	}
	st.CurrentProfile = name
	return s.write(st)
}

// List returns the saved profile names, sorted.
func (s *Store) List() ([]string, error) {
	st, err := s.read()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(st.Profiles))
	for name := range st.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Current returns the current profile name.
func (s *Store) Current() (string, error) {
	st, err := s.read()
	if err != nil {
		return "", err
	}
	return st.CurrentProfile, nil
}

// Delete removes a profile and its token. An empty name deletes the
// current profile. When the current profile is removed the first remaining
// profile, by name, becomes current; the file is removed with the last one.
func (s *Store) Delete(name string) error {
	st, err := s.read()
	if err != nil {
		return err
	}
	if name == "" {
		name = st.CurrentProfile
	}
	if _, ok := st.Profiles[name]; !ok || name == "" {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, displayName(name))
	}

	if err := s.deleteSecret(name); err != nil {
		return err
	}

	delete(st.Profiles, name)
	if len(st.Profiles) == 0 {
		return s.removeFile()
	}
	if st.CurrentProfile == name {
		names := make([]string, 0, len(st.Profiles))
		for n := range st.Profiles {
			names = append(names, n)
		}
		sort.Strings(names)
		st.CurrentProfile = names[0]
	}
	return s.write(st)
}

// Clear removes every profile and token. Clearing with no profiles file is
// not an error.
func (s *Store) Clear() error {
	st, err := s.read()
	if errors.Is(err, ErrNoConfig) {
		return nil
	}
	if err != nil {
		return err
	}
	for name := range st.Profiles {
		if err := s.deleteSecret(name); err != nil {
			return err
		}
	}
	return s.removeFile()
}

func (s *Store) secretStore() (SecretStore, error) {
	if s.secrets == nil {
		return nil, fmt.Errorf("%w: no secret store configured", ErrSecretStoreUnavailable)
	}
	return s.secrets, nil
}

func (s *Store) deleteSecret(name string) error {
	secrets, err := s.secretStore()
	if err != nil {
		return err
	}
	if err := secrets.Delete(name); err != nil && !errors.Is(err, ErrSecretNotFound) {
		return err
	}
	return nil
}

func (s *Store) read() (*state, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(s.path), err)
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(s.path), err)
	}
	if st.Profiles == nil {
		st.Profiles = map[string]Profile{}
	}
	return &st, nil
}

// write replaces the file atomically with mode 0600.
func (s *Store) write(st *state) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".profiles-*.json")
	if err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save profiles: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save profiles: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}
	return nil
}

func (s *Store) removeFile() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", filepath.Base(s.path), err)
	}
	return nil
}

func displayName(name string) string {
	if name == "" {
		return "(none)"
	}
	return name
}
