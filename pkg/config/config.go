// Package config stores named connection profiles on disk.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"serial-monitor/pkg/serial"
	"serial-monitor/pkg/session"
)

// Profile is a saved connection: the line parameters plus the session
// options that go with them.
type Profile struct {
	Name       string        `json:"name"`
	Serial     serial.Config `json:"serial"`
	EOL        string        `json:"eol"`
	ExitChar   string        `json:"exit_char"`
	Echo       bool          `json:"echo"`
	CreatedAt  time.Time     `json:"created_at"`
	LastUsedAt time.Time     `json:"last_used_at"`
}

// Validate checks the profile, including its session options.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if err := p.Serial.Validate(); err != nil {
		return fmt.Errorf("invalid serial config: %w", err)
	}
	if _, err := p.Session(); err != nil {
		return err
	}
	return nil
}

// Session builds the session options the profile describes.
func (p Profile) Session() (session.Config, error) {
	cfg := session.DefaultConfig()
	cfg.Echo = p.Echo

	if p.EOL != "" {
		eol, err := session.ParseLineEnding(p.EOL)
		if err != nil {
			return session.Config{}, err
		}
		cfg.EOL = eol
	}
	if p.ExitChar != "" {
		if len(p.ExitChar) != 1 {
			return session.Config{}, fmt.Errorf("invalid exit character %q", p.ExitChar)
		}
		cfg.ExitChar = rune(p.ExitChar[0])
	}

	return cfg, cfg.Validate()
}

// Manager defines the profile storage operations.
type Manager interface {
	Save(profile Profile) error
	Load(name string) (Profile, error)
	List() ([]Profile, error)
	Delete(name string) error
	Exists(name string) bool
}

// storage is the on-disk format.
type storage struct {
	Profiles map[string]Profile `json:"profiles"`
	Version  string             `json:"version"`
}

// FileManager implements Manager with a JSON file.
type FileManager struct {
	dir  string
	file string
}

// DefaultDir returns the per-user profile directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, "serial-monitor"), nil
}

// NewFileManager returns a manager storing profiles under dir.
func NewFileManager(dir string) *FileManager {
	return &FileManager{dir: dir, file: "profiles.json"}
}

// Save stores the profile, preserving the creation time of an existing
// profile with the same name.
func (m *FileManager) Save(profile Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	st, err := m.load()
	if err != nil {
		return err
	}

	now := time.Now()
	profile.CreatedAt = now
	profile.LastUsedAt = now
	if existing, ok := st.Profiles[profile.Name]; ok {
		profile.CreatedAt = existing.CreatedAt
	}

	st.Profiles[profile.Name] = profile
	return m.save(st)
}

// Load returns the named profile and records its use.
func (m *FileManager) Load(name string) (Profile, error) {
	if name == "" {
		return Profile{}, fmt.Errorf("profile name cannot be empty")
	}

	st, err := m.load()
	if err != nil {
		return Profile{}, err
	}

	profile, ok := st.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile '%s' not found", name)
	}

	// Refreshing last-used is best effort.
	profile.LastUsedAt = time.Now()
	st.Profiles[name] = profile
	m.save(st)

	return profile, nil
}

// List returns all profiles, sorted by name.
func (m *FileManager) List() ([]Profile, error) {
	st, err := m.load()
	if err != nil {
		return nil, err
	}

	profiles := make([]Profile, 0, len(st.Profiles))
	for _, p := range st.Profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })

	return profiles, nil
}

// Delete removes the named profile.
func (m *FileManager) Delete(name string) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	st, err := m.load()
	if err != nil {
		return err
	}

	if _, ok := st.Profiles[name]; !ok {
		return fmt.Errorf("profile '%s' not found", name)
	}

	delete(st.Profiles, name)
	return m.save(st)
}

// Exists reports whether the named profile is stored.
func (m *FileManager) Exists(name string) bool {
	if name == "" {
		return false
	}
	st, err := m.load()
	if err != nil {
		return false
	}
	_, ok := st.Profiles[name]
	return ok
}

func (m *FileManager) path() string {
	return filepath.Join(m.dir, m.file)
}

func (m *FileManager) load() (storage, error) {
	data, err := os.ReadFile(m.path())
	if err != nil {
		if os.IsNotExist(err) {
			return storage{Profiles: make(map[string]Profile), Version: "1.0"}, nil
		}
		return storage{}, fmt.Errorf("failed to read profile file: %w", err)
	}

	var st storage
	if err := json.Unmarshal(data, &st); err != nil {
		return storage{}, fmt.Errorf("failed to parse profile file: %w", err)
	}
	if st.Profiles == nil {
		st.Profiles = make(map[string]Profile)
	}

	return st, nil
}

func (m *FileManager) save(st storage) error {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	// Write to a temporary file first, then rename for atomic replacement.
	tempPath := m.path() + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary profile file: %w", err)
	}
	if err := os.Rename(tempPath, m.path()); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace profile file: %w", err)
	}

	return nil
}
