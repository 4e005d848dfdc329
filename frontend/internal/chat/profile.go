package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/itchan-dev/parley/shared/domain"
	"github.com/itchan-dev/parley/shared/logger"
	"github.com/itchan-dev/parley/shared/utils"
)

const profileVersion = 1

var ErrInvalidProfile = errors.New("invalid profile")

type storedProfile struct {
	Version int            `json:"version"`
	Profile domain.Profile `json:"profile"`
}

// ProfileStore keeps the user profile in a JSON file tagged with a schema
// version. Files of another version are ignored.
type ProfileStore struct {
	path string
	mu   sync.Mutex
}

// DefaultProfilePath is parley/profile.json under the user config dir.
func DefaultProfilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "parley", "profile.json"), nil
}

func NewProfileStore(path string) *ProfileStore {
	return &ProfileStore{path: path}
}

func (s *ProfileStore) Path() string { return s.path }

// Load returns the stored profile, or an empty one if nothing usable is stored.
func (s *ProfileStore) Load() (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Profile{}, nil
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("read profile: %w", err)
	}

	var stored storedProfile
	if err := json.Unmarshal(data, &stored); err != nil {
		logger.Log.Warn("profile file is corrupt, starting fresh", "path", s.path, "error", err)
		return domain.Profile{}, nil
	}
	if stored.Version != profileVersion {
		logger.Log.Warn("profile has unknown version, starting fresh", "path", s.path, "version", stored.Version)
		return domain.Profile{}, nil
	}
	return stored.Profile, nil
}

// Save validates p and replaces the stored profile.
func (s *ProfileStore) Save(p domain.Profile) error {
	if err := utils.Validate(&p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	data, err := json.MarshalIndent(storedProfile{Version: profileVersion, Profile: p}, "", "  ")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".profile-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Reset forgets the stored profile.
func (s *ProfileStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
