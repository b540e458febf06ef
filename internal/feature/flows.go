package feature

import "fmt"

// FlowRegistry defines the stage sequence for each track. Every flow
// ends with StageImplement; what varies is how much documentation
// happens before code gets written.
var FlowRegistry = map[Track][]Stage{
	TrackQuick:    {StageSpecify, StagePlan, StageTasks, StageImplement},
	TrackStandard: {StageSpecify, StageClarify, StagePlan, StageTasks, StageImplement},
	TrackThorough: {StageSpecify, StageClarify, StagePlan, StageTasks, StageAnalyze, StageImplement},
}

// StageFlow returns the ordered list of stages for a track.
func StageFlow(tr Track) ([]Stage, error) {
	if err := ValidateTrack(tr); err != nil {
		return nil, err
	}

	flow, ok := FlowRegistry[tr]
	if !ok {
		return nil, fmt.Errorf("no flow defined for track %q", tr)
	}

	// Return a copy to prevent mutation of the registry.
	result := make([]Stage, len(flow))
	copy(result, flow)
	return result, nil
}

// stageFilenames maps stages to their artifact filenames within the
// feature directory.
var stageFilenames = map[Stage]string{
	StageSpecify:   "spec.md",
	StageClarify:   "clarify.md",
	StagePlan:      "plan.md",
	StageTasks:     "tasks.md",
	StageAnalyze:   "analyze.md",
	StageImplement: "implement.md",
}

// StageFilename returns the artifact filename for a given stage.
// Returns empty string for unknown stages.
func StageFilename(stage Stage) string {
	return stageFilenames[stage]
}
