package tools

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nprbst/speck-sub002/internal/feature"
	"github.com/nprbst/speck-sub002/internal/templates"
)

// PlanTool handles the speck_plan MCP tool.
// It closes out the specify (and clarify) stages and scaffolds the
// implementation plan.
type PlanTool struct {
	store    feature.Store
	renderer *templates.Renderer
}

// NewPlanTool creates a PlanTool with its dependencies.
func NewPlanTool(store feature.Store, renderer *templates.Renderer) *PlanTool {
	return &PlanTool{store: store, renderer: renderer}
}

// Definition returns the MCP tool definition for registration.
func (t *PlanTool) Definition() mcp.Tool {
	return mcp.NewTool("speck_plan",
		mcp.WithDescription(
			"Create the implementation plan for the active feature. "+
				"Requires a completed spec.md. On standard and thorough tracks this "+
				"also records clarifications (pass the resolved Q&A in 'clarifications'). "+
				"Produces plan.md next to the spec.",
		),
		mcp.WithString("clarifications",
			mcp.Description("Resolved ambiguities as markdown Q&A. Required on tracks that include the clarify stage."),
		),
		mcp.WithString("technical_context",
			mcp.Description("Optional stack constraints, existing architecture, or conventions the plan must follow"),
		),
	)
}

// Handle processes the speck_plan tool call.
func (t *PlanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	featureDir := feature.FeaturePath(projectRoot, f.ID)

	// Close out the stages that precede planning.
	if f.CurrentStage == feature.StageSpecify {
		spec, err := readArtifact(filepath.Join(featureDir, feature.StageFilename(feature.StageSpecify)))
		if err != nil {
			return nil, err
		}
		if spec == "" {
			return mcp.NewToolResultError("spec.md is empty; run speck_specify and fill in the spec first"), nil
		}
		if err := feature.Advance(f); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	if f.CurrentStage == feature.StageClarify {
		clarifications := req.GetString("clarifications", "")
		if clarifications == "" {
			return mcp.NewToolResultError(
				fmt.Sprintf("track %q includes a clarify stage: review the spec for ambiguities and pass the resolved Q&A as 'clarifications'", f.Track),
			), nil
		}
		path := filepath.Join(featureDir, feature.StageFilename(feature.StageClarify))
		if err := writeArtifact(path, clarifications); err != nil {
			return nil, fmt.Errorf("writing clarifications: %w", err)
		}
		if err := feature.Advance(f); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	if f.CurrentStage != feature.StagePlan {
		return mcp.NewToolResultError(
			fmt.Sprintf("feature %s is at stage %q, not ready for planning", f.ID, f.CurrentStage),
		), nil
	}

	content, err := t.renderer.Render(templates.Plan, templates.PlanData{
		Name:             f.ID,
		FeatureID:        f.ID,
		Summary:          f.Description,
		TechnicalContext: req.GetString("technical_context", ""),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering plan: %w", err)
	}

	planPath := filepath.Join(featureDir, feature.StageFilename(feature.StagePlan))
	if err := writeArtifact(planPath, content); err != nil {
		return nil, fmt.Errorf("writing plan: %w", err)
	}

	if err := feature.Advance(f); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.store.Save(projectRoot, f); err != nil {
		return nil, fmt.Errorf("saving feature: %w", err)
	}

	response := fmt.Sprintf(
		"# Plan Scaffolded: %s\n\n"+
			"**Plan:** `.speck/features/%s/plan.md`\n"+
			"**Stage:** %s\n\n"+
			"## Next Step\n\n"+
			"Fill in the architecture, structure, and risks sections of the plan, "+
			"then run `speck_tasks` to break it into an ordered task list.",
		f.ID, f.ID, f.CurrentStage,
	)

	return mcp.NewToolResultText(response), nil
}
