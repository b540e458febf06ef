// Package config persists project-level speck configuration.
//
// speck.json lives under .speck/ at the repository root and records
// which upstream release is currently installed, so the upgrade
// pipeline knows the previous version when staging a new one.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// SpeckDir is the project directory that marks a speck project.
	SpeckDir = ".speck"
	// ConfigFile is the filename for project configuration.
	ConfigFile = "speck.json"
	// DefaultUpstreamRepo is the companion project whose releases the
	// upgrade pipeline consumes, as "owner/name".
	DefaultUpstreamRepo = "github/spec-kit"
	// DefaultTokenEnv is the environment variable consulted for an
	// optional GitHub API token.
	DefaultTokenEnv = "SPECK_GITHUB_TOKEN"
)

// ProjectConfig is the root configuration, persisted as speck.json.
type ProjectConfig struct {
	Name             string `json:"name"`
	InstalledVersion string `json:"installed_version"` // upstream release currently applied, "" before first sync
	UpstreamRepo     string `json:"upstream_repo"`     // "owner/name"
	TokenEnv         string `json:"token_env"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// NewProjectConfig creates a config with defaults for a fresh project.
func NewProjectConfig(name string) *ProjectConfig {
	now := time.Now().UTC().Format(time.RFC3339)
	return &ProjectConfig{
		Name:         name,
		UpstreamRepo: DefaultUpstreamRepo,
		TokenEnv:     DefaultTokenEnv,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// --- Path helpers ---

// SpeckPath returns the absolute path to the .speck/ directory.
func SpeckPath(projectRoot string) string {
	return filepath.Join(projectRoot, SpeckDir)
}

// ConfigPath returns the absolute path to speck.json.
func ConfigPath(projectRoot string) string {
	return filepath.Join(projectRoot, SpeckDir, ConfigFile)
}

// Exists reports whether a speck project is initialized at the root.
func Exists(projectRoot string) bool {
	_, err := os.Stat(ConfigPath(projectRoot))
	return err == nil
}

// FindProjectRoot walks up from the current working directory looking
// for an existing .speck/speck.json. If none is found, returns cwd —
// the caller decides what to do. This allows tools to work from any
// subdirectory of the project.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		if Exists(current) {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return dir, nil
		}
		current = parent
	}
}

// --- Store ---

// Store defines the persistence interface for project configuration.
// Abstracted for testability (DIP).
type Store interface {
	Load(projectRoot string) (*ProjectConfig, error)
	Save(projectRoot string, cfg *ProjectConfig) error
}

// FileStore implements Store using the local filesystem.
type FileStore struct{}

// NewFileStore creates a filesystem-backed config store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Load reads speck.json for a project.
func (fs *FileStore) Load(projectRoot string) (*ProjectConfig, error) {
	data, err := os.ReadFile(ConfigPath(projectRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no speck project at %s (run speck_init first)", projectRoot)
		}
		return nil, fmt.Errorf("reading speck.json: %w", err)
	}

	var cfg ProjectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing speck.json: %w", err)
	}
	if cfg.UpstreamRepo == "" {
		cfg.UpstreamRepo = DefaultUpstreamRepo
	}
	if cfg.TokenEnv == "" {
		cfg.TokenEnv = DefaultTokenEnv
	}
	return &cfg, nil
}

// Save writes speck.json, creating .speck/ as needed.
func (fs *FileStore) Save(projectRoot string, cfg *ProjectConfig) error {
	cfg.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling speck.json: %w", err)
	}

	if err := os.MkdirAll(SpeckPath(projectRoot), 0o755); err != nil {
		return fmt.Errorf("creating .speck directory: %w", err)
	}
	return os.WriteFile(ConfigPath(projectRoot), data, 0o644)
}
