package staging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// --- CreateSession ---

func TestCreateSession_CreatesLayout(t *testing.T) {
	area := newTestArea(t)
	session, err := area.CreateSession("v2.1.0", "v2.0.0")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if session.RootDir != area.SessionDir("v2.1.0") {
		t.Errorf("RootDir = %s, want %s", session.RootDir, area.SessionDir("v2.1.0"))
	}
	for _, c := range Categories {
		info, err := os.Stat(session.CategoryDir(c))
		if err != nil || !info.IsDir() {
			t.Errorf("category directory for %s missing: %v", c, err)
		}
	}
	if _, err := os.Stat(filepath.Join(session.RootDir, MetadataFile)); err != nil {
		t.Errorf("staging.json missing: %v", err)
	}
}

func TestCreateSession_InitialMetadata(t *testing.T) {
	area := newTestArea(t)
	session, err := area.CreateSession("v2.1.0", "v2.0.0")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	meta := readMetadata(t, session)
	if meta.Status != StatusStaging {
		t.Errorf("status = %s, want staging", meta.Status)
	}
	if meta.TargetVersion != "v2.1.0" {
		t.Errorf("targetVersion = %s, want v2.1.0", meta.TargetVersion)
	}
	if meta.PreviousVersion == nil || *meta.PreviousVersion != "v2.0.0" {
		t.Errorf("previousVersion = %v, want v2.0.0", meta.PreviousVersion)
	}
	if meta.StartTime != "2026-02-23T12:00:00Z" {
		t.Errorf("startTime = %s, want frozen clock value", meta.StartTime)
	}
	if !isNullRaw(meta.AgentResults.Agent1) || !isNullRaw(meta.AgentResults.Agent2) {
		t.Error("agent results should start null")
	}
	if meta.ProductionBaseline != nil {
		t.Error("productionBaseline should start null")
	}
}

func TestCreateSession_NullPreviousVersion(t *testing.T) {
	area := newTestArea(t)
	session, err := area.CreateSession("v1.0.0", "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(session.RootDir, MetadataFile))
	if err != nil {
		t.Fatalf("reading staging.json: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("parsing staging.json: %v", err)
	}
	if string(raw["previousVersion"]) != "null" {
		t.Errorf("previousVersion = %s, want null", raw["previousVersion"])
	}
}

func TestCreateSession_ExistingSessionRejected(t *testing.T) {
	area := newTestArea(t)
	if _, err := area.CreateSession("v2.1.0", ""); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	_, err := area.CreateSession("v2.1.0", "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("second CreateSession should return *ValidationError, got %v", err)
	}
}

func TestCreateSession_EmptyVersionRejected(t *testing.T) {
	area := newTestArea(t)
	if _, err := area.CreateSession("", ""); err == nil {
		t.Fatal("CreateSession with empty version should fail")
	}
}

// --- LoadSession ---

func TestLoadSession_Roundtrip(t *testing.T) {
	area := newTestArea(t)
	created, err := area.CreateSession("v2.1.0", "v2.0.0")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := created.UpdateStatus(StatusAgent1Complete); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	loaded, err := area.LoadSession("v2.1.0")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if loaded.Metadata.Status != StatusAgent1Complete {
		t.Errorf("loaded status = %s, want agent1-complete", loaded.Metadata.Status)
	}
	if loaded.TargetVersion != "v2.1.0" {
		t.Errorf("loaded targetVersion = %s, want v2.1.0", loaded.TargetVersion)
	}
	if loaded.ScriptsDir != filepath.Join(loaded.RootDir, "scripts") {
		t.Errorf("ScriptsDir = %s, want derived from RootDir", loaded.ScriptsDir)
	}
}

func TestLoadSession_Missing(t *testing.T) {
	area := newTestArea(t)
	_, err := area.LoadSession("v9.9.9")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("LoadSession of missing session should return *NotFoundError, got %v", err)
	}
}

func TestLoadSession_Corrupt(t *testing.T) {
	area := newTestArea(t)
	dir := area.SessionDir("v2.1.0")
	writeFile(t, filepath.Join(dir, MetadataFile), "{not json")

	_, err := area.LoadSession("v2.1.0")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("LoadSession of corrupt metadata should return *ParseError, got %v", err)
	}
}

// --- SetAgentResult ---

func TestSetAgentResult_PersistsRawContent(t *testing.T) {
	area := newTestArea(t)
	session, err := area.CreateSession("v2.1.0", "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	result := json.RawMessage(`{"filesWritten":12,"notes":"scripts converted"}`)
	if err := session.SetAgentResult(1, result); err != nil {
		t.Fatalf("SetAgentResult: %v", err)
	}

	// The metadata file is written indented, which reformats the raw
	// message. Compare compacted bytes, not the literal text.
	meta := readMetadata(t, session)
	var got bytes.Buffer
	if err := json.Compact(&got, meta.AgentResults.Agent1); err != nil {
		t.Fatalf("agent1 result is not valid JSON: %v", err)
	}
	if got.String() != string(result) {
		t.Errorf("agent1 result = %s, want %s", got.String(), result)
	}
	if !isNullRaw(meta.AgentResults.Agent2) {
		t.Error("agent2 result should remain null")
	}
}

func TestSetAgentResult_UnknownPhase(t *testing.T) {
	area := newTestArea(t)
	session, err := area.CreateSession("v2.1.0", "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := session.SetAgentResult(3, json.RawMessage(`{}`)); err == nil {
		t.Fatal("phase 3 should be rejected")
	}
}
