// Package staging implements the transformation staging engine for the
// upgrade pipeline.
//
// An upgrade rewrites upstream scripts and commands into speck's own
// formats. That rewrite is performed by two external AI agents, each
// potentially taking minutes and possibly running in separate process
// invocations. The engine gives their output an isolated place to land
// (a versioned staging session), tracks workflow progress as persisted
// state rather than in-process control flow, and applies the result to
// the live production tree with rollback and crash recovery.
//
// This package follows the same design principles as the feature pipeline:
// - SRP: types, state machine, and each engine component in separate files
// - DIP: every operation takes an explicit *Area; no hidden globals
// - No content inspection: the engine tracks presence and location of
//   staged files, never what the agents wrote into them
//
// Atomicity is emulated, not guaranteed: metadata writes are
// temp-file-then-rename, conflict detection is advisory rather than
// locking, and per-file commit is an unconditional overwrite so a
// retried commit after partial failure is safe.
package staging

import (
	"encoding/json"
	"path/filepath"
)

// --- Category enum ---

// Category identifies which kind of artifact a staged file is.
// It is determined solely by the top-level staging subdirectory
// the file lives under.
type Category string

const (
	CategoryScripts  Category = "scripts"
	CategoryCommands Category = "commands"
	CategoryAgents   Category = "agents"
	CategorySkills   Category = "skills"
)

// Categories lists all categories in their canonical order.
var Categories = []Category{CategoryScripts, CategoryCommands, CategoryAgents, CategorySkills}

// productionRoots maps each category to its production root, relative
// to the repository root. Production paths are always computed from
// this table, never persisted — so a discovered file and its commit
// destination can never drift apart.
var productionRoots = map[Category]string{
	CategoryScripts:  filepath.Join(".speck", "scripts"),
	CategoryCommands: filepath.Join(".claude", "commands", "speck"),
	CategoryAgents:   filepath.Join(".claude", "agents"),
	CategorySkills:   filepath.Join(".claude", "skills"),
}

// ProductionRoot returns the production root for a category,
// relative to the repository root.
func ProductionRoot(c Category) string {
	return productionRoots[c]
}

// --- Status enum ---

// Status tracks where a staging session is in the upgrade workflow.
// The transition graph lives in state.go.
type Status string

const (
	// StatusNone is the not-found sentinel returned when no session
	// exists for a version. It is never persisted.
	StatusNone Status = ""

	StatusStaging        Status = "staging"
	StatusAgent1Complete Status = "agent1-complete"
	StatusAgent2Complete Status = "agent2-complete"
	StatusReady          Status = "ready"
	StatusCommitted      Status = "committed"
	StatusRolledBack     Status = "rolled-back"
	StatusFailed         Status = "failed"
)

// IsTerminal reports whether a status ends the session lifecycle.
// A terminal session no longer owns an on-disk staging root.
func (s Status) IsTerminal() bool {
	return s == StatusCommitted || s == StatusRolledBack || s == StatusFailed
}

// --- Persisted metadata ---

// MetadataFile is the filename for session metadata under the root.
const MetadataFile = "staging.json"

// AgentResults holds the raw results reported by the two external
// transformation agents. Each is null until the caller sets it; the
// engine never looks inside.
type AgentResults struct {
	Agent1 json.RawMessage `json:"agent1"`
	Agent2 json.RawMessage `json:"agent2"`
}

// BaselineEntry records the observed metadata of one production file.
// Absent paths are simply not in the baseline map — absence is the
// "does not exist" case, so Exists is always true in persisted entries.
type BaselineEntry struct {
	Exists bool   `json:"exists"`
	Mtime  *int64 `json:"mtime"` // unix milliseconds
	Size   *int64 `json:"size"`
}

// Baseline is a snapshot of production file metadata, captured
// mid-workflow and compared against the live tree before commit.
type Baseline struct {
	CapturedAt string                   `json:"capturedAt"` // RFC3339
	Files      map[string]BaselineEntry `json:"files"`      // keyed by production-relative path
}

// Metadata is the persisted session state, stored as staging.json
// under the session root. It is always rewritten whole (never patched)
// via a temp-file-then-rename so a crash mid-write cannot leave a
// truncated file.
type Metadata struct {
	Status             Status       `json:"status"`
	TargetVersion      string       `json:"targetVersion"`
	PreviousVersion    *string      `json:"previousVersion"`
	StartTime          string       `json:"startTime"` // RFC3339
	AgentResults       AgentResults `json:"agentResults"`
	ProductionBaseline *Baseline    `json:"productionBaseline"`
}

// --- In-memory session handle ---

// Session is the in-memory handle for one staging session. It owns the
// on-disk tree under RootDir exclusively while the session is
// non-terminal; committing or rolling back always deletes RootDir.
type Session struct {
	area *Area

	// RootDir is the version-named session directory under the
	// staging area.
	RootDir string

	TargetVersion string

	// Category subdirectories under RootDir. Derived from RootDir at
	// load time, never independently mutated.
	ScriptsDir  string
	CommandsDir string
	AgentsDir   string
	SkillsDir   string

	Metadata Metadata
}

// CategoryDir returns the staging subdirectory for a category.
func (s *Session) CategoryDir(c Category) string {
	switch c {
	case CategoryScripts:
		return s.ScriptsDir
	case CategoryCommands:
		return s.CommandsDir
	case CategoryAgents:
		return s.AgentsDir
	case CategorySkills:
		return s.SkillsDir
	}
	return ""
}

// --- Derived per-file types ---

// StagedFile describes one regular file an agent wrote into the
// staging tree, and where it will land on commit. It is derived by
// discovery and never persisted.
type StagedFile struct {
	Category       Category `json:"category"`
	RelativePath   string   `json:"relativePath"`   // within the category, slash-separated
	StagingPath    string   `json:"stagingPath"`    // absolute
	ProductionPath string   `json:"productionPath"` // absolute, computed
}

// --- Conflicts ---

// ConflictKind classifies how a production path drifted from the
// captured baseline.
type ConflictKind string

const (
	ConflictCreated  ConflictKind = "created-since-baseline"
	ConflictDeleted  ConflictKind = "deleted-since-baseline"
	ConflictModified ConflictKind = "modified-since-baseline"
)

// FileConflict reports one production path whose live state differs
// from the captured baseline. Conflicts are advisory: the engine never
// blocks on them, the caller presents them to the user.
type FileConflict struct {
	Path          string         `json:"path"` // production-relative
	BaselineState *BaselineEntry `json:"baselineState"`
	CurrentState  *BaselineEntry `json:"currentState"`
	Kind          ConflictKind   `json:"kind"`
}
