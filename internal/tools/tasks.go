package tools

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nprbst/speck-sub002/internal/feature"
	"github.com/nprbst/speck-sub002/internal/templates"
)

// TasksTool handles the speck_tasks MCP tool.
// It turns the implementation plan into a dependency-ordered task list.
type TasksTool struct {
	store    feature.Store
	renderer *templates.Renderer
}

// NewTasksTool creates a TasksTool with its dependencies.
func NewTasksTool(store feature.Store, renderer *templates.Renderer) *TasksTool {
	return &TasksTool{store: store, renderer: renderer}
}

// Definition returns the MCP tool definition for registration.
func (t *TasksTool) Definition() mcp.Tool {
	return mcp.NewTool("speck_tasks",
		mcp.WithDescription(
			"Break the active feature's plan into an ordered task list. "+
				"Requires a completed plan.md (run speck_plan first). "+
				"Produces tasks.md; implementation then works through it top to bottom.",
		),
	)
}

// Handle processes the speck_tasks tool call.
func (t *TasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	f, err := t.store.LoadActive(projectRoot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if f == nil {
		return mcp.NewToolResultError("no active feature; run speck_specify first"), nil
	}
	if f.CurrentStage != feature.StageTasks {
		return mcp.NewToolResultError(
			fmt.Sprintf("feature %s is at stage %q; run speck_plan first", f.ID, f.CurrentStage),
		), nil
	}

	featureDir := feature.FeaturePath(projectRoot, f.ID)
	plan, err := readArtifact(filepath.Join(featureDir, feature.StageFilename(feature.StagePlan)))
	if err != nil {
		return nil, err
	}
	if plan == "" {
		return mcp.NewToolResultError("plan.md is empty; fill in the plan before breaking it into tasks"), nil
	}

	content, err := t.renderer.Render(templates.Tasks, templates.TasksData{
		Name:      f.ID,
		FeatureID: f.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering tasks: %w", err)
	}

	tasksPath := filepath.Join(featureDir, feature.StageFilename(feature.StageTasks))
	if err := writeArtifact(tasksPath, content); err != nil {
		return nil, fmt.Errorf("writing tasks: %w", err)
	}

	if err := feature.Advance(f); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.store.Save(projectRoot, f); err != nil {
		return nil, fmt.Errorf("saving feature: %w", err)
	}

	next := "Work through the tasks in order, then run `speck_feature_complete`."
	if f.CurrentStage == feature.StageAnalyze {
		next = "This track includes an analyze stage: cross-check spec, plan, and tasks " +
			"for contradictions before implementing, then run `speck_feature_complete` when done."
	}

	response := fmt.Sprintf(
		"# Tasks Scaffolded: %s\n\n"+
			"**Tasks:** `.speck/features/%s/tasks.md`\n"+
			"**Stage:** %s\n\n"+
			"## Next Step\n\n"+
			"Fill in the task breakdown from the plan, dependency-ordered. %s",
		f.ID, f.ID, f.CurrentStage, next,
	)

	return mcp.NewToolResultText(response), nil
}
