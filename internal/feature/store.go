package feature

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// FeaturesDir is the subdirectory under .speck/ where active
	// features live.
	FeaturesDir = "features"
	// HistoryDir is the subdirectory under .speck/ where archived
	// features live.
	HistoryDir = "history"
	// FeatureConfigFile is the filename for feature records.
	FeatureConfigFile = "feature.json"
)

// Store defines the persistence interface for feature records.
// Abstracted for testability (DIP).
type Store interface {
	Create(projectRoot string, track Track, description string) (*FeatureRecord, error)
	Load(projectRoot, featureID string) (*FeatureRecord, error)
	LoadActive(projectRoot string) (*FeatureRecord, error)
	Save(projectRoot string, f *FeatureRecord) error
	Archive(projectRoot, featureID string) error
	List(projectRoot string) ([]FeatureRecord, error)
}

// FileStore implements Store using the local filesystem.
type FileStore struct{}

// NewFileStore creates a filesystem-backed feature store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// FeaturesPath returns the absolute path to the .speck/features/ directory.
func FeaturesPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".speck", FeaturesDir)
}

// HistoryPath returns the absolute path to the .speck/history/ directory.
func HistoryPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".speck", HistoryDir)
}

// FeaturePath returns the absolute path to a specific feature's directory.
func FeaturePath(projectRoot, featureID string) string {
	return filepath.Join(FeaturesPath(projectRoot), featureID)
}

// FeatureConfigPath returns the absolute path to a feature's feature.json.
func FeatureConfigPath(projectRoot, featureID string) string {
	return filepath.Join(FeaturePath(projectRoot, featureID), FeatureConfigFile)
}

// Create builds a new feature record with the next sequential ID
// ("NNN-slug"), creates its directory, and persists it. The first
// stage starts in_progress.
func (fs *FileStore) Create(projectRoot string, track Track, description string) (*FeatureRecord, error) {
	flow, err := StageFlow(track)
	if err != nil {
		return nil, err
	}

	featuresDir := FeaturesPath(projectRoot)
	if err := os.MkdirAll(featuresDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating features directory: %w", err)
	}

	num, err := fs.nextNumber(projectRoot)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	stages := make([]StageEntry, len(flow))
	for i, s := range flow {
		stages[i] = StageEntry{Name: s, Status: "pending"}
	}
	stages[0].Status = "in_progress"
	stages[0].StartedAt = now

	f := &FeatureRecord{
		ID:           fmt.Sprintf("%03d-%s", num, Slugify(description)),
		Track:        track,
		Description:  description,
		Stages:       stages,
		CurrentStage: flow[0],
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := os.MkdirAll(FeaturePath(projectRoot, f.ID), 0o755); err != nil {
		return nil, fmt.Errorf("creating feature directory: %w", err)
	}
	if err := fs.writeConfig(projectRoot, f); err != nil {
		return nil, err
	}
	return f, nil
}

// nextNumber scans features/ and history/ for the highest NNN- prefix
// and returns the next one. Starts at 1 on a fresh project.
func (fs *FileStore) nextNumber(projectRoot string) (int, error) {
	max := 0
	for _, dir := range []string{FeaturesPath(projectRoot), HistoryPath(projectRoot)} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, fmt.Errorf("reading %s: %w", dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			prefix, _, ok := strings.Cut(entry.Name(), "-")
			if !ok {
				continue
			}
			n, err := strconv.Atoi(prefix)
			if err != nil {
				continue
			}
			if n > max {
				max = n
			}
		}
	}
	return max + 1, nil
}

// Load reads a specific feature record by ID.
func (fs *FileStore) Load(projectRoot, featureID string) (*FeatureRecord, error) {
	path := FeatureConfigPath(projectRoot, featureID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("feature %q not found", featureID)
		}
		return nil, fmt.Errorf("reading feature config: %w", err)
	}

	var f FeatureRecord
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing feature.json for %q: %w", featureID, err)
	}
	return &f, nil
}

// LoadActive scans all features and returns the one with status
// "active". Returns nil (not an error) if no active feature exists.
func (fs *FileStore) LoadActive(projectRoot string) (*FeatureRecord, error) {
	featuresDir := FeaturesPath(projectRoot)
	entries, err := os.ReadDir(featuresDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading features directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		f, err := fs.Load(projectRoot, entry.Name())
		if err != nil {
			continue // skip unreadable features
		}
		if f.Status == StatusActive {
			return f, nil
		}
	}

	return nil, nil
}

// Save updates an existing feature record.
func (fs *FileStore) Save(projectRoot string, f *FeatureRecord) error {
	f.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return fs.writeConfig(projectRoot, f)
}

// Archive moves a completed feature from features/ to history/.
func (fs *FileStore) Archive(projectRoot, featureID string) error {
	f, err := fs.Load(projectRoot, featureID)
	if err != nil {
		return err
	}

	if f.Status == StatusActive {
		return fmt.Errorf("cannot archive active feature %q — complete it first", featureID)
	}

	srcDir := FeaturePath(projectRoot, featureID)
	historyDir := HistoryPath(projectRoot)
	if err := os.MkdirAll(historyDir, 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	dstDir := filepath.Join(historyDir, featureID)
	if _, err := os.Stat(dstDir); err == nil {
		return fmt.Errorf("feature %q already exists in history", featureID)
	}

	// Update status before moving.
	f.Status = StatusArchived
	f.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := fs.writeConfig(projectRoot, f); err != nil {
		return fmt.Errorf("updating feature status: %w", err)
	}

	if err := os.Rename(srcDir, dstDir); err != nil {
		return fmt.Errorf("moving feature to history: %w", err)
	}

	return nil
}

// List returns all features from both features/ and history/ directories.
func (fs *FileStore) List(projectRoot string) ([]FeatureRecord, error) {
	var result []FeatureRecord

	featuresDir := FeaturesPath(projectRoot)
	if entries, err := os.ReadDir(featuresDir); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			f, err := fs.Load(projectRoot, entry.Name())
			if err != nil {
				continue
			}
			result = append(result, *f)
		}
	}

	historyDir := HistoryPath(projectRoot)
	if entries, err := os.ReadDir(historyDir); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			configPath := filepath.Join(historyDir, entry.Name(), FeatureConfigFile)
			data, err := os.ReadFile(configPath)
			if err != nil {
				continue
			}
			var f FeatureRecord
			if err := json.Unmarshal(data, &f); err != nil {
				continue
			}
			result = append(result, f)
		}
	}

	return result, nil
}

// writeConfig marshals and writes a feature record to its feature.json.
func (fs *FileStore) writeConfig(projectRoot string, f *FeatureRecord) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling feature config: %w", err)
	}

	path := FeatureConfigPath(projectRoot, f.ID)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating feature directory: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
