package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nprbst/speck-sub002/internal/config"
	"github.com/nprbst/speck-sub002/internal/feature"
	"github.com/nprbst/speck-sub002/internal/staging"
	"github.com/nprbst/speck-sub002/internal/templates"
)

// --- Test helpers ---

// setupProject creates a temp dir with an initialized speck project
// and changes cwd to it so findProjectRoot resolves there.
func setupProject(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	store := config.NewFileStore()
	cfg := config.NewProjectConfig("test-project")
	if err := store.Save(tmpDir, cfg); err != nil {
		t.Fatalf("setup: save config: %v", err)
	}

	t.Chdir(tmpDir)
	return tmpDir
}

func newRenderer(t *testing.T) *templates.Renderer {
	t.Helper()
	r, err := templates.NewRenderer()
	if err != nil {
		t.Fatalf("setup: renderer: %v", err)
	}
	return r
}

func callTool(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// --- InitTool ---

func TestInitTool_Handle_Success(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	tool := NewInitTool(config.NewFileStore())
	result, err := tool.Handle(context.Background(), callTool(map[string]interface{}{
		"name": "my-app",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	if !config.Exists(tmpDir) {
		t.Error("speck.json should exist after init")
	}
	if !strings.Contains(getResultText(result), "my-app") {
		t.Error("result should contain the project name")
	}
}

func TestInitTool_Handle_AlreadyInitialized(t *testing.T) {
	setupProject(t)

	tool := NewInitTool(config.NewFileStore())
	result, err := tool.Handle(context.Background(), callTool(map[string]interface{}{
		"name": "again",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("expected an error result for re-init")
	}
}

func TestInitTool_Handle_MissingName(t *testing.T) {
	t.Chdir(t.TempDir())

	tool := NewInitTool(config.NewFileStore())
	result, err := tool.Handle(context.Background(), callTool(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("expected an error result for missing name")
	}
}

// --- SpecifyTool ---

func TestSpecifyTool_Handle_CreatesFeatureAndSpec(t *testing.T) {
	tmpDir := setupProject(t)

	tool := NewSpecifyTool(feature.NewFileStore(), newRenderer(t))
	result, err := tool.Handle(context.Background(), callTool(map[string]interface{}{
		"description": "User authentication with magic links",
		"track":       "quick",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	specPath := filepath.Join(tmpDir, ".speck", "features", "001-user-authentication-with-magic-links", "spec.md")
	data, err := os.ReadFile(specPath)
	if err != nil {
		t.Fatalf("spec.md not created: %v", err)
	}
	if !strings.Contains(string(data), "User authentication with magic links") {
		t.Error("spec.md should carry the description")
	}
}

func TestSpecifyTool_Handle_InvalidTrack(t *testing.T) {
	setupProject(t)

	tool := NewSpecifyTool(feature.NewFileStore(), newRenderer(t))
	result, err := tool.Handle(context.Background(), callTool(map[string]interface{}{
		"description": "something",
		"track":       "yolo",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("expected an error result for an invalid track")
	}
}

// --- PlanTool / TasksTool / CompleteTool ---

func specifyFeature(t *testing.T, track string) {
	t.Helper()
	tool := NewSpecifyTool(feature.NewFileStore(), newRenderer(t))
	result, err := tool.Handle(context.Background(), callTool(map[string]interface{}{
		"description": "test feature",
		"track":       track,
	}))
	if err != nil || isErrorResult(result) {
		t.Fatalf("setup: specify failed: %v %s", err, getResultText(result))
	}
}

func TestPlanTool_Handle_StandardTrackNeedsClarifications(t *testing.T) {
	setupProject(t)
	specifyFeature(t, "standard")

	tool := NewPlanTool(feature.NewFileStore(), newRenderer(t))

	result, err := tool.Handle(context.Background(), callTool(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected an error result without clarifications")
	}

	result, err = tool.Handle(context.Background(), callTool(map[string]interface{}{
		"clarifications": "Q: scope? A: small.",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success with clarifications, got: %s", getResultText(result))
	}
}

func TestPlanTool_Handle_QuickTrackSkipsClarify(t *testing.T) {
	tmpDir := setupProject(t)
	specifyFeature(t, "quick")

	tool := NewPlanTool(feature.NewFileStore(), newRenderer(t))
	result, err := tool.Handle(context.Background(), callTool(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success on quick track, got: %s", getResultText(result))
	}

	planPath := filepath.Join(tmpDir, ".speck", "features", "001-test-feature", "plan.md")
	if _, err := os.Stat(planPath); err != nil {
		t.Errorf("plan.md not created: %v", err)
	}
}

func TestTasksTool_Handle_WrongStage(t *testing.T) {
	setupProject(t)
	specifyFeature(t, "quick")

	tool := NewTasksTool(feature.NewFileStore(), newRenderer(t))
	result, err := tool.Handle(context.Background(), callTool(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("expected an error result before speck_plan has run")
	}
}

func TestFeatureFlow_QuickTrackEndToEnd(t *testing.T) {
	tmpDir := setupProject(t)
	specifyFeature(t, "quick")

	store := feature.NewFileStore()
	renderer := newRenderer(t)

	planTool := NewPlanTool(store, renderer)
	if result, err := planTool.Handle(context.Background(), callTool(nil)); err != nil || isErrorResult(result) {
		t.Fatalf("plan failed: %v %s", err, getResultText(result))
	}

	tasksTool := NewTasksTool(store, renderer)
	if result, err := tasksTool.Handle(context.Background(), callTool(nil)); err != nil || isErrorResult(result) {
		t.Fatalf("tasks failed: %v %s", err, getResultText(result))
	}

	completeTool := NewCompleteTool(store)
	result, err := completeTool.Handle(context.Background(), callTool(map[string]interface{}{
		"summary": "Implemented everything.",
	}))
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got: %s", getResultText(result))
	}

	// Archived to history, no longer active.
	if _, err := os.Stat(filepath.Join(tmpDir, ".speck", "history", "001-test-feature")); err != nil {
		t.Errorf("feature not archived: %v", err)
	}
	active, err := store.LoadActive(tmpDir)
	if err != nil {
		t.Fatalf("LoadActive failed: %v", err)
	}
	if active != nil {
		t.Errorf("expected no active feature after completion, got %s", active.ID)
	}
}

func TestStageTools_Handle_NoActiveFeature(t *testing.T) {
	setupProject(t)

	store := feature.NewFileStore()
	renderer := newRenderer(t)

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"plan":     NewPlanTool(store, renderer).Handle,
		"tasks":    NewTasksTool(store, renderer).Handle,
		"complete": NewCompleteTool(store).Handle,
	}

	for name, handle := range handlers {
		result, err := handle(context.Background(), callTool(map[string]interface{}{
			"summary": "n/a",
		}))
		if err != nil {
			t.Fatalf("%s: Handle failed: %v", name, err)
		}
		if !isErrorResult(result) {
			t.Errorf("%s: expected an error result with no active feature", name)
		}
		if !strings.Contains(getResultText(result), "speck_specify") {
			t.Errorf("%s: error should point at speck_specify: %s", name, getResultText(result))
		}
	}
}

// --- Upgrade tools ---

// readySession drives a staging session to ready without the MCP layer.
func readySession(t *testing.T, root, version string) *staging.Session {
	t.Helper()
	area := staging.NewArea(root)
	s, err := area.CreateSession(version, "")
	if err != nil {
		t.Fatalf("setup: create session: %v", err)
	}
	path := filepath.Join(s.ScriptsDir, "setup.ts")
	if err := os.WriteFile(path, []byte("export {}"), 0o644); err != nil {
		t.Fatalf("setup: stage file: %v", err)
	}
	for _, st := range []staging.Status{
		staging.StatusAgent1Complete, staging.StatusAgent2Complete,
	} {
		if err := s.UpdateStatus(st); err != nil {
			t.Fatalf("setup: advance to %s: %v", st, err)
		}
	}
	if err := s.CaptureBaseline(); err != nil {
		t.Fatalf("setup: baseline: %v", err)
	}
	if err := s.UpdateStatus(staging.StatusReady); err != nil {
		t.Fatalf("setup: ready: %v", err)
	}
	return s
}

func TestUpgradeStatusTool_Handle_NoSessions(t *testing.T) {
	setupProject(t)

	tool := NewUpgradeStatusTool()
	result, err := tool.Handle(context.Background(), callTool(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(getResultText(result), "No open upgrade sessions") {
		t.Errorf("unexpected output: %s", getResultText(result))
	}
}

func TestUpgradeStatusTool_Handle_ReportsSession(t *testing.T) {
	tmpDir := setupProject(t)
	readySession(t, tmpDir, "v2.1.0")

	tool := NewUpgradeStatusTool()

	result, err := tool.Handle(context.Background(), callTool(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(getResultText(result), "v2.1.0") {
		t.Errorf("open session list missing version: %s", getResultText(result))
	}

	result, err = tool.Handle(context.Background(), callTool(map[string]interface{}{
		"target_version": "v2.1.0",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "ready") || !strings.Contains(text, "setup.ts") {
		t.Errorf("session report incomplete: %s", text)
	}
}

func TestUpgradeStatusTool_Handle_UnknownVersion(t *testing.T) {
	setupProject(t)

	tool := NewUpgradeStatusTool()
	result, err := tool.Handle(context.Background(), callTool(map[string]interface{}{
		"target_version": "v9.9.9",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(getResultText(result), "No staging session") {
		t.Errorf("unexpected output: %s", getResultText(result))
	}
}

func TestUpgradeCommitTool_Handle_AppliesAndWritesManifest(t *testing.T) {
	tmpDir := setupProject(t)
	readySession(t, tmpDir, "v2.1.0")

	tool := NewUpgradeCommitTool(config.NewFileStore())
	result, err := tool.Handle(context.Background(), callTool(map[string]interface{}{
		"target_version": "v2.1.0",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got: %s", getResultText(result))
	}

	if _, err := os.Stat(filepath.Join(tmpDir, ".speck", "scripts", "setup.ts")); err != nil {
		t.Errorf("staged file not applied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, ".claude-plugin", "plugin.json")); err != nil {
		t.Errorf("plugin manifest not written: %v", err)
	}

	cfg, err := config.NewFileStore().Load(tmpDir)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if cfg.InstalledVersion != "v2.1.0" {
		t.Errorf("installed version not bumped: %q", cfg.InstalledVersion)
	}
}

func TestUpgradeRollbackTool_Handle(t *testing.T) {
	tmpDir := setupProject(t)
	s := readySession(t, tmpDir, "v2.1.0")

	tool := NewUpgradeRollbackTool(config.NewFileStore())
	result, err := tool.Handle(context.Background(), callTool(map[string]interface{}{
		"target_version": "v2.1.0",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got: %s", getResultText(result))
	}

	if _, err := os.Stat(s.RootDir); !os.IsNotExist(err) {
		t.Error("staging root should be removed after rollback")
	}
}

func TestUpgradeAdvanceTool_Handle_InvalidResultJSON(t *testing.T) {
	tmpDir := setupProject(t)
	area := staging.NewArea(tmpDir)
	if _, err := area.CreateSession("v2.1.0", ""); err != nil {
		t.Fatalf("setup: create session: %v", err)
	}

	tool := NewUpgradeAdvanceTool(config.NewFileStore())
	result, err := tool.Handle(context.Background(), callTool(map[string]interface{}{
		"target_version": "v2.1.0",
		"phase":          1,
		"result":         "{not json",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("expected an error result for invalid JSON")
	}
}

func TestUpgradeAdvanceTool_Handle_PhaseOne(t *testing.T) {
	tmpDir := setupProject(t)
	area := staging.NewArea(tmpDir)
	if _, err := area.CreateSession("v2.1.0", ""); err != nil {
		t.Fatalf("setup: create session: %v", err)
	}

	tool := NewUpgradeAdvanceTool(config.NewFileStore())
	result, err := tool.Handle(context.Background(), callTool(map[string]interface{}{
		"target_version": "v2.1.0",
		"phase":          1,
		"result":         `{"scripts":3}`,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got: %s", getResultText(result))
	}
	if !strings.Contains(getResultText(result), "Phase 2") {
		t.Error("phase 1 response should carry phase 2 instructions")
	}

	status, err := area.Status("v2.1.0")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status != staging.StatusAgent1Complete {
		t.Errorf("expected agent1-complete, got %q", status)
	}
}
