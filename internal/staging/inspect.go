package staging

import "errors"

// --- Read-only accessors ---

// Status returns the current status of the session for a target
// version, or StatusNone (the not-found sentinel, not an error) when
// no session exists.
func (a *Area) Status(targetVersion string) (Status, error) {
	session, err := a.LoadSession(targetVersion)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return StatusNone, nil
		}
		return StatusNone, err
	}
	return session.Metadata.Status, nil
}

// Report is a composed diagnostic view of one staging session.
type Report struct {
	Metadata  Metadata       `json:"metadata"`
	Files     []StagedFile   `json:"files"`
	Conflicts []FileConflict `json:"conflicts,omitempty"`
}

// Inspect composes the persisted metadata, the discovered staged
// files, and (when a baseline has been captured) the current conflict
// report into a single diagnostic view. It introduces no new
// invariants over its parts.
func (a *Area) Inspect(targetVersion string) (*Report, error) {
	session, err := a.LoadSession(targetVersion)
	if err != nil {
		return nil, err
	}

	files, err := session.ListStagedFiles()
	if err != nil {
		return nil, err
	}

	report := &Report{Metadata: session.Metadata, Files: files}

	if session.Metadata.ProductionBaseline != nil {
		conflicts, err := session.DetectConflicts()
		if err != nil {
			return nil, err
		}
		report.Conflicts = conflicts
	}

	return report, nil
}
