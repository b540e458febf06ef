// Package feature handles the spec-driven feature workflow.
//
// A feature walks from a natural-language description to implemented
// code through a sequence of documented stages (specify, clarify, plan,
// tasks, analyze, implement). The stage content is generated by the AI
// assistant; this package owns the records, the stage flow, and the
// state machine that sequences them.
//
// Design principles:
// - SRP: types, flows, store, and state machine in separate files
// - DIP: Store is an interface; tools depend on the abstraction
// - OCP: new tracks can be added without modifying existing flows
package feature

import (
	"fmt"
	"strings"
)

// --- Track enum ---

// Track controls how much documentation rigor a feature gets.
type Track string

const (
	TrackQuick    Track = "quick"    // skip clarify and analyze
	TrackStandard Track = "standard" // the default spec-driven flow
	TrackThorough Track = "thorough" // full flow including analyze
)

// validTracks is the set of allowed tracks.
var validTracks = map[Track]bool{
	TrackQuick:    true,
	TrackStandard: true,
	TrackThorough: true,
}

// ValidateTrack returns an error if the track is not recognized.
func ValidateTrack(tr Track) error {
	if !validTracks[tr] {
		return fmt.Errorf("invalid track %q: must be one of: quick, standard, thorough", tr)
	}
	return nil
}

// --- Stage enum ---

// Stage represents a discrete phase in a feature's workflow.
// Not every feature goes through every stage — the flow is determined
// by its Track.
type Stage string

const (
	StageSpecify   Stage = "specify"   // requirements spec from the description
	StageClarify   Stage = "clarify"   // ambiguity resolution Q&A
	StagePlan      Stage = "plan"      // technical implementation plan
	StageTasks     Stage = "tasks"     // dependency-ordered task breakdown
	StageAnalyze   Stage = "analyze"   // cross-artifact consistency check
	StageImplement Stage = "implement" // execution record
)

// --- Feature status enum ---

// FeatureStatus tracks the overall lifecycle of a feature.
type FeatureStatus string

const (
	StatusActive    FeatureStatus = "active"
	StatusCompleted FeatureStatus = "completed"
	StatusArchived  FeatureStatus = "archived"
)

// --- Core data structures ---

// StageEntry tracks progress for a single stage within a feature.
type StageEntry struct {
	Name        Stage  `json:"name"`
	Status      string `json:"status"` // pending | in_progress | completed
	StartedAt   string `json:"started_at,omitempty"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// FeatureRecord is the root data structure for a feature, persisted as
// feature.json under .speck/features/<id>/. The ID doubles as the
// suggested git branch name (e.g. "003-staging-engine").
type FeatureRecord struct {
	ID           string        `json:"id"`
	Track        Track         `json:"track"`
	Description  string        `json:"description"`
	Stages       []StageEntry  `json:"stages"`
	CurrentStage Stage         `json:"current_stage"`
	Status       FeatureStatus `json:"status"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
}

// --- Slug generation ---

const maxSlugLen = 44

// Slugify converts a description string into a branch/filesystem-safe
// slug. Example: "Add orphan detection to staging" → "add-orphan-detection-to-staging"
//
// Rules:
//   - Lowercase
//   - Spaces and underscores become hyphens
//   - Non-alphanumeric characters (except hyphens) are removed
//   - Consecutive hyphens are collapsed
//   - Leading/trailing hyphens are trimmed
//   - Truncated to 44 characters (at a word boundary if possible)
//   - Empty input returns "unnamed-feature"
func Slugify(description string) string {
	if strings.TrimSpace(description) == "" {
		return "unnamed-feature"
	}

	s := strings.ToLower(strings.TrimSpace(description))

	var b strings.Builder
	prevHyphen := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevHyphen = false
		case r == ' ' || r == '_' || r == '-':
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")

	if slug == "" {
		return "unnamed-feature"
	}

	if len(slug) <= maxSlugLen {
		return slug
	}

	// Truncate at word boundary if possible.
	truncated := slug[:maxSlugLen]
	if lastHyphen := strings.LastIndex(truncated, "-"); lastHyphen > maxSlugLen/2 {
		truncated = truncated[:lastHyphen]
	}

	return strings.TrimRight(truncated, "-")
}
