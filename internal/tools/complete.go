package tools

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nprbst/speck-sub002/internal/feature"
)

// CompleteTool handles the speck_feature_complete MCP tool.
// It closes out the active feature and archives it.
type CompleteTool struct {
	store feature.Store
}

// NewCompleteTool creates a CompleteTool with the given feature store.
func NewCompleteTool(store feature.Store) *CompleteTool {
	return &CompleteTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *CompleteTool) Definition() mcp.Tool {
	return mcp.NewTool("speck_feature_complete",
		mcp.WithDescription(
			"Mark the active feature as completed and archive it to "+
				".speck/history/. Pass a short implementation summary; on the "+
				"thorough track, pass the analyze findings too.",
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("What was implemented, notable decisions, follow-ups"),
		),
		mcp.WithString("analysis",
			mcp.Description("Cross-artifact consistency findings (thorough track only)"),
		),
	)
}

// Handle processes the speck_feature_complete tool call.
func (t *CompleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary := req.GetString("summary", "")
	if summary == "" {
		return mcp.NewToolResultError("'summary' is required"), nil
	}

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

	if f.CurrentStage == feature.StageAnalyze {
		analysis := req.GetString("analysis", "")
		if analysis == "" {
			return mcp.NewToolResultError(
				fmt.Sprintf("track %q includes an analyze stage: pass the findings as 'analysis'", f.Track),
			), nil
		}
		path := filepath.Join(featureDir, feature.StageFilename(feature.StageAnalyze))
		if err := writeArtifact(path, analysis); err != nil {
			return nil, fmt.Errorf("writing analysis: %w", err)
		}
		if err := feature.Advance(f); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	implPath := filepath.Join(featureDir, feature.StageFilename(feature.StageImplement))
	if err := writeArtifact(implPath, summary); err != nil {
		return nil, fmt.Errorf("writing implementation summary: %w", err)
	}

	if err := feature.Complete(f); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.store.Save(projectRoot, f); err != nil {
		return nil, fmt.Errorf("saving feature: %w", err)
	}
	if err := t.store.Archive(projectRoot, f.ID); err != nil {
		return nil, fmt.Errorf("archiving feature: %w", err)
	}

	response := fmt.Sprintf(
		"# Feature Completed: %s\n\n"+
			"Archived to `.speck/history/%s/`.\n\n"+
			"Start the next feature with `speck_specify`.",
		f.ID, f.ID,
	)

	return mcp.NewToolResultText(response), nil
}
