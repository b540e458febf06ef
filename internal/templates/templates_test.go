package templates

import (
	"strings"
	"testing"
)

// --- NewRenderer ---

func TestNewRenderer_Succeeds(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() failed: %v", err)
	}
	if r == nil {
		t.Fatal("NewRenderer() returned nil")
	}
}

// --- Render: Spec ---

func TestRender_Spec(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	data := SpecData{
		Name:            "Orphan Detection",
		FeatureID:       "004-orphan-detection",
		Overview:        "Sessions abandoned by a crashed process must be discoverable.",
		UserScenarios:   "A user restarts speck after a crash and is told about the orphan.",
		Requirements:    "- Scan the staging area\n- Report non-terminal sessions",
		SuccessCriteria: "Orphans listed within one command",
		OutOfScope:      "Automatic resume",
		OpenQuestions:   "None",
	}

	result, err := r.Render(Spec, data)
	if err != nil {
		t.Fatalf("Render(Spec) failed: %v", err)
	}

	checks := []string{
		"# Orphan Detection — Feature Specification",
		"`004-orphan-detection`",
		"## Overview",
		"crashed process",
		"## Requirements",
		"Scan the staging area",
		"## Out of Scope",
		"Automatic resume",
		"speck", // Attribution link.
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("Spec output missing: %q", check)
		}
	}
}

// --- Render: Plan ---

func TestRender_Plan(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	data := PlanData{
		Name:             "Orphan Detection",
		FeatureID:        "004-orphan-detection",
		Summary:          "Add a scanner over the staging area.",
		TechnicalContext: "Go, filesystem-backed sessions",
		Architecture:     "One pass over staging subdirectories",
		Structure:        "internal/staging/orphans.go",
		Risks:            "Corrupt metadata must be skipped, not fatal",
	}

	result, err := r.Render(Plan, data)
	if err != nil {
		t.Fatalf("Render(Plan) failed: %v", err)
	}

	for _, check := range []string{"Implementation Plan", "## Architecture", "staging subdirectories"} {
		if !strings.Contains(result, check) {
			t.Errorf("Plan output missing: %q", check)
		}
	}
}

// --- Render: Tasks ---

func TestRender_Tasks(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	data := TasksData{
		Name:      "Orphan Detection",
		FeatureID: "004-orphan-detection",
		Phases:    "1. Scanner\n2. CLI surface",
		Tasks:     "- [ ] T001 Walk staging area\n- [ ] T002 Report orphans",
		Notes:     "Scanner must tolerate corrupt sessions",
	}

	result, err := r.Render(Tasks, data)
	if err != nil {
		t.Fatalf("Render(Tasks) failed: %v", err)
	}

	for _, check := range []string{"Task Breakdown", "T001 Walk staging area", "## Notes"} {
		if !strings.Contains(result, check) {
			t.Errorf("Tasks output missing: %q", check)
		}
	}
}

func TestRender_UnknownKind(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	if _, err := r.Render(Kind("bogus"), nil); err == nil {
		t.Error("Render of unknown kind should fail")
	}
}
