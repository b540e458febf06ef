package feature

import "fmt"

// --- State machine for the feature workflow ---
//
// Stage order is read from FeatureRecord.Stages, which is set at
// creation time based on the feature's Track.

// CurrentStageIndex returns the ordinal position of the current stage
// within the feature's stage list, or -1 if not found.
func CurrentStageIndex(f *FeatureRecord) int {
	for i, entry := range f.Stages {
		if entry.Name == f.CurrentStage {
			return i
		}
	}
	return -1
}

// IsLastStage returns true if the current stage is the final stage
// (implement).
func IsLastStage(f *FeatureRecord) bool {
	idx := CurrentStageIndex(f)
	return idx >= 0 && idx == len(f.Stages)-1
}

// CanAdvance checks whether the feature can move past the current
// stage. Returns an error if advancement is not possible.
func CanAdvance(f *FeatureRecord) error {
	if f.Status != StatusActive {
		return fmt.Errorf("feature %q is not active (status: %s)", f.ID, f.Status)
	}

	idx := CurrentStageIndex(f)
	if idx < 0 {
		return fmt.Errorf("unknown current stage %q in feature %q", f.CurrentStage, f.ID)
	}

	if idx >= len(f.Stages)-1 {
		return fmt.Errorf("already at the final stage %q in feature %q", f.CurrentStage, f.ID)
	}

	return nil
}

// Advance moves the feature to the next stage. It validates the
// transition first, marks the current stage completed, and moves on.
func Advance(f *FeatureRecord) error {
	if err := CanAdvance(f); err != nil {
		return err
	}

	idx := CurrentStageIndex(f)
	now := timeNow().UTC().Format("2006-01-02T15:04:05Z07:00")

	f.Stages[idx].Status = "completed"
	f.Stages[idx].CompletedAt = now

	nextIdx := idx + 1
	f.Stages[nextIdx].Status = "in_progress"
	f.Stages[nextIdx].StartedAt = now

	f.CurrentStage = f.Stages[nextIdx].Name
	f.UpdatedAt = now

	// Moving onto the final stage (implement) does not auto-complete;
	// completion happens when implement itself finishes, via Complete.

	return nil
}

// Complete marks the feature as completed. Called after the final
// stage (implement) content has been saved.
func Complete(f *FeatureRecord) error {
	if f.Status != StatusActive {
		return fmt.Errorf("feature %q is not active (status: %s)", f.ID, f.Status)
	}

	idx := CurrentStageIndex(f)
	if idx < 0 {
		return fmt.Errorf("unknown current stage %q in feature %q", f.CurrentStage, f.ID)
	}

	if !IsLastStage(f) {
		return fmt.Errorf("cannot complete feature %q: not at the final stage (current: %s)", f.ID, f.CurrentStage)
	}

	now := timeNow().UTC().Format("2006-01-02T15:04:05Z07:00")

	f.Stages[idx].Status = "completed"
	f.Stages[idx].CompletedAt = now

	f.Status = StatusCompleted
	f.UpdatedAt = now

	return nil
}
