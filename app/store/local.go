package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sweepboard/app/interfaces"

	"gopkg.in/yaml.v3"
)

// LocalViewStore persists view state to a YAML file on disk. It is the
// fallback when no session token is configured, and the offline safety net
// when the remote store is unreachable.
type LocalViewStore struct {
	path string
}

// NewLocalViewStore creates a local store writing to the given file path.
func NewLocalViewStore(path string) *LocalViewStore {
	return &LocalViewStore{path: path}
}

// DefaultLocalPath returns the view-state file location beside the binary,
// mirroring where the settings file lives.
func DefaultLocalPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exe), "sweepboard.views.yml"), nil
}

// Load reads the persisted state. A missing file is not an error; it yields
// the default state. A corrupt file also degrades to defaults since view
// state is always recoverable by the user.
func (s *LocalViewStore) Load() (*interfaces.ViewState, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultViewState(), nil
		}
		return DefaultViewState(), err
	}
	var state interfaces.ViewState
	if err := yaml.Unmarshal(b, &state); err != nil {
		return DefaultViewState(), nil
	}
	return Normalize(&state), nil
}

// Save writes the state to disk, creating the parent directory if needed.
func (s *LocalViewStore) Save(state *interfaces.ViewState) error {
	b, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal view state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}
