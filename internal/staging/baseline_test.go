package staging

import (
	"testing"
)

func TestCaptureBaseline_EmptyProductionTree(t *testing.T) {
	area := newTestArea(t)
	session, err := area.CreateSession("v2.1.0", "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := session.CaptureBaseline(); err != nil {
		t.Fatalf("CaptureBaseline on empty tree should succeed, got: %v", err)
	}

	baseline := session.Metadata.ProductionBaseline
	if baseline == nil {
		t.Fatal("baseline should be set after capture")
	}
	if len(baseline.Files) != 0 {
		t.Errorf("baseline files = %d entries, want 0", len(baseline.Files))
	}
	if baseline.CapturedAt != "2026-02-23T12:00:00Z" {
		t.Errorf("capturedAt = %s, want frozen clock value", baseline.CapturedAt)
	}
}

func TestCaptureBaseline_RecordsExistingFiles(t *testing.T) {
	area := newTestArea(t)
	writeFile(t, productionFile(area, CategoryScripts, "check-prerequisites.ts"), "export {}\n")
	writeFile(t, productionFile(area, CategoryCommands, "specify.md"), "# specify\n")
	writeFile(t, productionFile(area, CategoryScripts, "common/paths.ts"), "export const x = 1\n")

	session, err := area.CreateSession("v2.1.0", "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := session.CaptureBaseline(); err != nil {
		t.Fatalf("CaptureBaseline: %v", err)
	}

	files := session.Metadata.ProductionBaseline.Files
	if len(files) != 3 {
		t.Fatalf("baseline has %d entries, want 3: %v", len(files), files)
	}

	entry, ok := files[".speck/scripts/common/paths.ts"]
	if !ok {
		t.Fatal("nested script missing from baseline")
	}
	if !entry.Exists {
		t.Error("recorded entry should have exists=true")
	}
	if entry.Mtime == nil || entry.Size == nil {
		t.Fatal("recorded entry should have mtime and size")
	}
	if *entry.Size != int64(len("export const x = 1\n")) {
		t.Errorf("size = %d, want %d", *entry.Size, len("export const x = 1\n"))
	}
}

func TestCaptureBaseline_Persisted(t *testing.T) {
	area := newTestArea(t)
	writeFile(t, productionFile(area, CategoryAgents, "converter.md"), "agent\n")

	session, err := area.CreateSession("v2.1.0", "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := session.CaptureBaseline(); err != nil {
		t.Fatalf("CaptureBaseline: %v", err)
	}

	meta := readMetadata(t, session)
	if meta.ProductionBaseline == nil {
		t.Fatal("baseline should be persisted into staging.json")
	}
	if _, ok := meta.ProductionBaseline.Files[".claude/agents/converter.md"]; !ok {
		t.Errorf("persisted baseline missing agent file, got: %v", meta.ProductionBaseline.Files)
	}
}

func TestCaptureBaseline_IgnoresUnrelatedPaths(t *testing.T) {
	area := newTestArea(t)
	writeFile(t, productionFile(area, CategoryScripts, "a.ts"), "a\n")
	// Files outside the four production roots are not baseline material.
	writeFile(t, area.RepoRoot+"/README.md", "readme\n")
	writeFile(t, area.RepoRoot+"/src/main.go", "package main\n")

	session, err := area.CreateSession("v2.1.0", "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := session.CaptureBaseline(); err != nil {
		t.Fatalf("CaptureBaseline: %v", err)
	}

	files := session.Metadata.ProductionBaseline.Files
	if len(files) != 1 {
		t.Errorf("baseline has %d entries, want 1 (only the script): %v", len(files), files)
	}
}
