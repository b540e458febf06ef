package feature

import "testing"

// --- ValidateTrack ---

func TestValidateTrack_Known(t *testing.T) {
	for _, tr := range []Track{TrackQuick, TrackStandard, TrackThorough} {
		if err := ValidateTrack(tr); err != nil {
			t.Errorf("ValidateTrack(%s) failed: %v", tr, err)
		}
	}
}

func TestValidateTrack_Unknown(t *testing.T) {
	if err := ValidateTrack(Track("exhaustive")); err == nil {
		t.Error("ValidateTrack should reject unknown tracks")
	}
}

// --- Slugify ---

func TestSlugify_Basic(t *testing.T) {
	got := Slugify("Add orphan detection to staging")
	if got != "add-orphan-detection-to-staging" {
		t.Errorf("Slugify = %q", got)
	}
}

func TestSlugify_SpecialCharacters(t *testing.T) {
	got := Slugify("Fix: staging.json (atomic) writes!")
	if got != "fix-stagingjson-atomic-writes" {
		t.Errorf("Slugify = %q", got)
	}
}

func TestSlugify_CollapsesHyphens(t *testing.T) {
	got := Slugify("a -- b __ c")
	if got != "a-b-c" {
		t.Errorf("Slugify = %q", got)
	}
}

func TestSlugify_Empty(t *testing.T) {
	if got := Slugify("   "); got != "unnamed-feature" {
		t.Errorf("Slugify of blank = %q", got)
	}
}

func TestSlugify_TruncatesAtWordBoundary(t *testing.T) {
	got := Slugify("this is a very long feature description that keeps going and going")
	if len(got) > maxSlugLen {
		t.Errorf("Slugify length = %d, want <= %d", len(got), maxSlugLen)
	}
	if got[len(got)-1] == '-' {
		t.Errorf("Slugify should not end with a hyphen: %q", got)
	}
}

// --- StageFlow ---

func TestStageFlow_Standard(t *testing.T) {
	flow, err := StageFlow(TrackStandard)
	if err != nil {
		t.Fatalf("StageFlow: %v", err)
	}
	want := []Stage{StageSpecify, StageClarify, StagePlan, StageTasks, StageImplement}
	if len(flow) != len(want) {
		t.Fatalf("flow = %v, want %v", flow, want)
	}
	for i := range want {
		if flow[i] != want[i] {
			t.Errorf("flow[%d] = %s, want %s", i, flow[i], want[i])
		}
	}
}

func TestStageFlow_ReturnsCopy(t *testing.T) {
	flow, _ := StageFlow(TrackQuick)
	flow[0] = Stage("mutated")
	again, _ := StageFlow(TrackQuick)
	if again[0] != StageSpecify {
		t.Error("mutating a returned flow must not affect the registry")
	}
}

func TestStageFilename_AllStagesMapped(t *testing.T) {
	for _, flow := range FlowRegistry {
		for _, s := range flow {
			if StageFilename(s) == "" {
				t.Errorf("stage %s has no artifact filename", s)
			}
		}
	}
}
