// Package upgrade sequences the spec-kit upgrade workflow on top of
// the staging engine: create a session, hand rewrite work to the two
// external agents, capture the production baseline, surface conflicts,
// then commit or roll back. The engine enforces each transition; this
// package decides the order and records the outcome.
package upgrade

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nprbst/speck-sub002/internal/config"
	"github.com/nprbst/speck-sub002/internal/history"
	"github.com/nprbst/speck-sub002/internal/staging"
	"github.com/nprbst/speck-sub002/internal/upstream"
)

// ReleaseSource lists upstream releases. *upstream.Client satisfies it.
type ReleaseSource interface {
	LatestRelease(ctx context.Context) (*upstream.Release, error)
}

// RunRecorder persists finished runs. *history.Store satisfies it.
type RunRecorder interface {
	Record(run *history.Run) error
}

// Workflow drives upgrade sessions for one project.
type Workflow struct {
	root string
	area *staging.Area
	cfg  config.Store
	runs RunRecorder
}

// New creates a workflow rooted at the project directory.
func New(projectRoot string, cfg config.Store, runs RunRecorder) *Workflow {
	return &Workflow{
		root: projectRoot,
		area: staging.NewArea(projectRoot),
		cfg:  cfg,
		runs: runs,
	}
}

// Area exposes the underlying staging area for read-only inspection.
func (w *Workflow) Area() *staging.Area {
	return w.area
}

// CheckResult reports whether a newer upstream release exists.
type CheckResult struct {
	InstalledVersion string `json:"installed_version"`
	LatestVersion    string `json:"latest_version"`
	UpdateAvailable  bool   `json:"update_available"`
	ReleaseURL       string `json:"release_url,omitempty"`
}

// Check compares the installed upstream version against the latest
// release.
func (w *Workflow) Check(ctx context.Context, src ReleaseSource) (*CheckResult, error) {
	cfg, err := w.cfg.Load(w.root)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	rel, err := src.LatestRelease(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking upstream releases: %w", err)
	}

	return &CheckResult{
		InstalledVersion: cfg.InstalledVersion,
		LatestVersion:    rel.Tag,
		UpdateAvailable:  rel.Tag != cfg.InstalledVersion,
		ReleaseURL:       rel.HTMLURL,
	}, nil
}

// StartResult is a freshly created session plus the instructions for
// the first agent.
type StartResult struct {
	Session *staging.Session
	Prompt  string
}

// Start creates a staging session for targetVersion. The previous
// version is taken from project config. Start refuses to run while any
// non-terminal session exists; those must be committed or rolled back
// first (sessions are strictly sequential, and an orphan from a dead
// process counts).
func (w *Workflow) Start(targetVersion string) (*StartResult, error) {
	orphans, err := w.area.Orphans()
	if err != nil {
		return nil, fmt.Errorf("scanning for open sessions: %w", err)
	}
	if len(orphans) > 0 {
		versions := make([]string, len(orphans))
		for i, s := range orphans {
			versions[i] = fmt.Sprintf("%s (%s)", s.TargetVersion, s.Metadata.Status)
		}
		return nil, &staging.ValidationError{
			Reason: fmt.Sprintf("open staging session(s) exist: %s; commit or roll back first", strings.Join(versions, ", ")),
		}
	}

	cfg, err := w.cfg.Load(w.root)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	session, err := w.area.CreateSession(targetVersion, cfg.InstalledVersion)
	if err != nil {
		return nil, err
	}

	return &StartResult{
		Session: session,
		Prompt:  Agent1Prompt(session),
	}, nil
}

// AdvanceResult reports the session state after an agent phase
// finishes. NextPrompt is set after phase 1; Files and Conflicts are
// set after phase 2, once the session is ready.
type AdvanceResult struct {
	Status     staging.Status
	NextPrompt string
	Files      []staging.StagedFile
	Conflicts  []staging.FileConflict
}

// Advance records an agent's result and moves the session forward.
// Phase 1 acknowledges the script rewrite; phase 2 acknowledges the
// command rewrite, captures the baseline, and reports conflicts.
func (w *Workflow) Advance(targetVersion string, phase int, result json.RawMessage) (*AdvanceResult, error) {
	session, err := w.area.LoadSession(targetVersion)
	if err != nil {
		return nil, err
	}

	switch phase {
	case 1:
		if err := session.SetAgentResult(1, result); err != nil {
			return nil, err
		}
		if err := session.UpdateStatus(staging.StatusAgent1Complete); err != nil {
			return nil, err
		}
		return &AdvanceResult{
			Status:     session.Metadata.Status,
			NextPrompt: Agent2Prompt(session),
		}, nil

	case 2:
		if err := session.SetAgentResult(2, result); err != nil {
			return nil, err
		}
		if err := session.UpdateStatus(staging.StatusAgent2Complete); err != nil {
			return nil, err
		}
		if err := normalizeStagedCommands(session); err != nil {
			return nil, err
		}
		if err := session.CaptureBaseline(); err != nil {
			return nil, err
		}
		if err := session.UpdateStatus(staging.StatusReady); err != nil {
			return nil, err
		}

		files, err := session.ListStagedFiles()
		if err != nil {
			return nil, err
		}
		conflicts, err := session.DetectConflicts()
		if err != nil {
			return nil, err
		}
		return &AdvanceResult{
			Status:    session.Metadata.Status,
			Files:     files,
			Conflicts: conflicts,
		}, nil

	default:
		return nil, &staging.ValidationError{
			Reason: fmt.Sprintf("unknown agent phase %d (want 1 or 2)", phase),
		}
	}
}

// Commit applies a ready session to production, records the run, and
// bumps the installed version in project config.
func (w *Workflow) Commit(ctx context.Context, targetVersion string) (*history.Run, error) {
	session, err := w.area.LoadSession(targetVersion)
	if err != nil {
		return nil, err
	}

	files, err := session.ListStagedFiles()
	if err != nil {
		return nil, err
	}
	conflicts := 0
	if session.Metadata.ProductionBaseline != nil {
		cs, err := session.DetectConflicts()
		if err != nil {
			return nil, err
		}
		conflicts = len(cs)
	}

	if err := session.Commit(ctx); err != nil {
		return nil, err
	}

	run := &history.Run{
		TargetVersion:   targetVersion,
		PreviousVersion: session.Metadata.PreviousVersion,
		Outcome:         history.OutcomeCommitted,
		FilesApplied:    len(files),
		ConflictsSeen:   conflicts,
		StartedAt:       session.Metadata.StartTime,
	}
	if err := w.runs.Record(run); err != nil {
		return nil, fmt.Errorf("recording committed run: %w", err)
	}

	cfg, err := w.cfg.Load(w.root)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	cfg.InstalledVersion = targetVersion
	if err := w.cfg.Save(w.root, cfg); err != nil {
		return nil, fmt.Errorf("saving project config: %w", err)
	}

	return run, nil
}

// Rollback discards a session and records the run.
func (w *Workflow) Rollback(targetVersion string) (*history.Run, error) {
	session, err := w.area.LoadSession(targetVersion)
	if err != nil {
		return nil, err
	}

	if err := session.Rollback(); err != nil {
		return nil, err
	}

	run := &history.Run{
		TargetVersion:   targetVersion,
		PreviousVersion: session.Metadata.PreviousVersion,
		Outcome:         history.OutcomeRolledBack,
		StartedAt:       session.Metadata.StartTime,
	}
	if err := w.runs.Record(run); err != nil {
		return nil, fmt.Errorf("recording rolled-back run: %w", err)
	}
	return run, nil
}

// Fail marks a session failed (an agent reported an unrecoverable
// error) and records the run. The staging root is kept for debugging;
// retrying the same version requires removing it manually.
func (w *Workflow) Fail(targetVersion string) (*history.Run, error) {
	session, err := w.area.LoadSession(targetVersion)
	if err != nil {
		return nil, err
	}

	if err := session.UpdateStatus(staging.StatusFailed); err != nil {
		return nil, err
	}

	run := &history.Run{
		TargetVersion:   targetVersion,
		PreviousVersion: session.Metadata.PreviousVersion,
		Outcome:         history.OutcomeFailed,
		StartedAt:       session.Metadata.StartTime,
	}
	if err := w.runs.Record(run); err != nil {
		return nil, fmt.Errorf("recording failed run: %w", err)
	}
	return run, nil
}
