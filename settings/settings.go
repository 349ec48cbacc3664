// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package settings persists client preferences (theme, reduce haptics) as a
// YAML file in the user's config directory.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ErrInvalidTheme is returned for any theme other than light or dark.
var ErrInvalidTheme = errors.New("invalid theme")

// Settings are the user's client preferences
type Settings struct {
	// Theme is light or dark. Empty means follow the terminal background.
	Theme string `yaml:"theme,omitempty"`
	// ReduceHaptics silences the bell on upvote
	ReduceHaptics bool `yaml:"reduce_haptics"`
}

// Validate checks that the settings are usable
func (s Settings) Validate() error {
	if s.Theme != "" && s.Theme != ThemeLight && s.Theme != ThemeDark {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, s.Theme)
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/featurevotes/settings.yaml, or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "featurevotes", "settings.yaml"), nil
}

// Load reads settings from path. A missing file yields the zero Settings.
func Load(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Save writes settings to path, creating parent directories as needed.
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// Store holds the current settings and writes every change through to disk.
type Store struct {
	path string

	mu  sync.Mutex
	cur Settings
}

// Open loads the store at path. An unreadable or invalid file falls back to
// defaults and the error is returned alongside a usable store.
func Open(path string) (*Store, error) {
	s, err := Load(path)
	return &Store{path: path, cur: s}, err
}

func (st *Store) Path() string {
	return st.path
}

func (st *Store) Get() Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cur
}

// SetTheme switches the theme. The in-memory value is left unchanged if the
// save fails.
func (st *Store) SetTheme(theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	return st.update(func(s *Settings) { s.Theme = theme })
}

// SetReduceHaptics toggles the bell. The in-memory value is left unchanged
// if the save fails.
func (st *Store) SetReduceHaptics(on bool) error {
	return st.update(func(s *Settings) { s.ReduceHaptics = on })
}

func (st *Store) update(fn func(*Settings)) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	next := st.cur
	fn(&next)
	if err := Save(st.path, next); err != nil {
		return err
	}
	st.cur = next
	return nil
}
