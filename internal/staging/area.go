package staging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// StagingDirName is the staging area location relative to the
// repository root.
var StagingDirName = filepath.Join(".speck", "staging")

// Area is the fixed staging area for one repository. It is passed
// explicitly into every operation rather than living as a hidden
// global; the engine performs no locking, so serializing access to an
// Area is the caller's job.
type Area struct {
	// Root is the staging area directory (<repoRoot>/.speck/staging).
	Root string

	// RepoRoot anchors the four production roots that committed files
	// land under.
	RepoRoot string
}

// NewArea returns the staging area for a repository root.
func NewArea(repoRoot string) *Area {
	return &Area{
		Root:     filepath.Join(repoRoot, StagingDirName),
		RepoRoot: repoRoot,
	}
}

// SessionDir returns the session root directory for a target version.
func (a *Area) SessionDir(targetVersion string) string {
	return filepath.Join(a.Root, targetVersion)
}

// CreateSession creates the version-named session root, its four
// category subdirectories, and an initial staging.json with status
// "staging". previousVersion may be empty (recorded as null).
//
// On any I/O failure the partially created root is removed best-effort
// before the error is returned, so a failed create never leaves a
// staging.json that parses as a valid session.
func (a *Area) CreateSession(targetVersion, previousVersion string) (*Session, error) {
	if targetVersion == "" {
		return nil, &ValidationError{Reason: "target version is required"}
	}

	rootDir := a.SessionDir(targetVersion)
	if _, err := os.Stat(filepath.Join(rootDir, MetadataFile)); err == nil {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("staging session for %q already exists at %s", targetVersion, rootDir),
		}
	}

	session := a.newSession(rootDir, targetVersion)

	var prev *string
	if previousVersion != "" {
		prev = &previousVersion
	}
	session.Metadata = Metadata{
		Status:          StatusStaging,
		TargetVersion:   targetVersion,
		PreviousVersion: prev,
		StartTime:       timeNow().UTC().Format(timeLayout),
		// AgentResults zero value marshals as {"agent1":null,"agent2":null}.
	}

	for _, c := range Categories {
		if err := os.MkdirAll(session.CategoryDir(c), 0o755); err != nil {
			_ = os.RemoveAll(rootDir)
			return nil, fmt.Errorf("creating staging directory for %s: %w", c, err)
		}
	}

	if err := session.writeMetadata(); err != nil {
		_ = os.RemoveAll(rootDir)
		return nil, err
	}

	return session, nil
}

// LoadSession reconstructs a session for a target version from its
// persisted staging.json. Returns *NotFoundError if the file is absent
// and *ParseError if it is malformed.
func (a *Area) LoadSession(targetVersion string) (*Session, error) {
	return a.loadDir(a.SessionDir(targetVersion))
}

// loadDir reconstructs a session from an existing session root.
func (a *Area) loadDir(rootDir string) (*Session, error) {
	path := filepath.Join(rootDir, MetadataFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: rootDir}
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	session := a.newSession(rootDir, meta.TargetVersion)
	session.Metadata = meta
	return session, nil
}

// newSession builds the in-memory handle with its derived paths.
func (a *Area) newSession(rootDir, targetVersion string) *Session {
	return &Session{
		area:          a,
		RootDir:       rootDir,
		TargetVersion: targetVersion,
		ScriptsDir:    filepath.Join(rootDir, string(CategoryScripts)),
		CommandsDir:   filepath.Join(rootDir, string(CategoryCommands)),
		AgentsDir:     filepath.Join(rootDir, string(CategoryAgents)),
		SkillsDir:     filepath.Join(rootDir, string(CategorySkills)),
	}
}

// SetAgentResult records the raw result reported by one of the two
// transformation agents and re-persists the metadata. The engine never
// inspects the content. phase is 1 or 2.
func (s *Session) SetAgentResult(phase int, result json.RawMessage) error {
	switch phase {
	case 1:
		s.Metadata.AgentResults.Agent1 = result
	case 2:
		s.Metadata.AgentResults.Agent2 = result
	default:
		return &ValidationError{Reason: fmt.Sprintf("unknown agent phase %d", phase)}
	}
	return s.writeMetadata()
}

// writeMetadata persists the entire staging.json using a
// write-to-temp-then-rename so a crash mid-write cannot leave a
// truncated or corrupt metadata file.
func (s *Session) writeMetadata() error {
	data, err := json.MarshalIndent(&s.Metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling staging metadata: %w", err)
	}

	tmp := filepath.Join(s.RootDir, "."+MetadataFile+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing staging metadata: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.RootDir, MetadataFile)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing staging metadata: %w", err)
	}
	return nil
}
