package tools

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nprbst/speck-sub002/internal/feature"
	"github.com/nprbst/speck-sub002/internal/templates"
)

// SpecifyTool handles the speck_specify MCP tool.
// It creates a feature record and its specification scaffold.
type SpecifyTool struct {
	store    feature.Store
	renderer *templates.Renderer
}

// NewSpecifyTool creates a SpecifyTool with its dependencies.
func NewSpecifyTool(store feature.Store, renderer *templates.Renderer) *SpecifyTool {
	return &SpecifyTool{store: store, renderer: renderer}
}

// Definition returns the MCP tool definition for registration.
func (t *SpecifyTool) Definition() mcp.Tool {
	return mcp.NewTool("speck_specify",
		mcp.WithDescription(
			"Start a new feature from a natural-language description. "+
				"Creates the feature record under .speck/features/ and a spec.md "+
				"scaffold for you to fill in with concrete requirements. "+
				"The feature ID doubles as the suggested branch name.",
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What the feature should do, in plain language"),
		),
		mcp.WithString("track",
			mcp.Description("Documentation rigor: 'quick', 'standard', or 'thorough'. Defaults to 'standard'."),
			mcp.DefaultString("standard"),
			mcp.Enum("quick", "standard", "thorough"),
		),
	)
}

// Handle processes the speck_specify tool call.
func (t *SpecifyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description := req.GetString("description", "")
	if description == "" {
		return mcp.NewToolResultError("'description' is required"), nil
	}
	track := feature.Track(req.GetString("track", "standard"))
	if err := feature.ValidateTrack(track); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	f, err := t.store.Create(projectRoot, track, description)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, err := t.renderer.Render(templates.Spec, templates.SpecData{
		Name:      f.ID,
		FeatureID: f.ID,
		Overview:  description,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering spec: %w", err)
	}

	specPath := filepath.Join(feature.FeaturePath(projectRoot, f.ID), feature.StageFilename(feature.StageSpecify))
	if err := writeArtifact(specPath, content); err != nil {
		return nil, fmt.Errorf("writing spec: %w", err)
	}

	flow, err := feature.StageFlow(track)
	if err != nil {
		return nil, err
	}

	response := fmt.Sprintf(
		"# Feature Created: %s\n\n"+
			"**Track:** %s\n"+
			"**Stages:** %v\n"+
			"**Spec:** `.speck/features/%s/spec.md`\n\n"+
			"## Next Step\n\n"+
			"Fill in the specification: user scenarios, testable requirements, "+
			"and success criteria. Focus on WHAT and WHY; leave HOW to the plan.\n\n"+
			"When the spec is complete, run `speck_plan` to continue.",
		f.ID, f.Track, flow, f.ID,
	)

	return mcp.NewToolResultText(response), nil
}
