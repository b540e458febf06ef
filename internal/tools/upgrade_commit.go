package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nprbst/speck-sub002/internal/config"
	"github.com/nprbst/speck-sub002/internal/manifest"
)

// UpgradeCommitTool handles the speck_upgrade_commit MCP tool.
// It applies a ready staging session to the production tree.
type UpgradeCommitTool struct {
	store config.Store
}

// NewUpgradeCommitTool creates an UpgradeCommitTool with the given
// config store.
func NewUpgradeCommitTool(store config.Store) *UpgradeCommitTool {
	return &UpgradeCommitTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *UpgradeCommitTool) Definition() mcp.Tool {
	return mcp.NewTool("speck_upgrade_commit",
		mcp.WithDescription(
			"Apply a ready upgrade session to the live .speck/ and .claude/ "+
				"trees. Staged files overwrite production files path by path; the "+
				"staging directory is removed afterwards. Safe to retry if "+
				"interrupted. Regenerates the plugin manifest on success.",
		),
		mcp.WithString("target_version",
			mcp.Required(),
			mcp.Description("The session's target release tag"),
		),
	)
}

// Handle processes the speck_upgrade_commit tool call.
func (t *UpgradeCommitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetVersion := req.GetString("target_version", "")
	if targetVersion == "" {
		return mcp.NewToolResultError("'target_version' is required"), nil
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	w, cleanup, err := newWorkflow(projectRoot, t.store)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	run, err := w.Commit(ctx, targetVersion)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	plugin, err := manifest.Build(projectRoot, targetVersion)
	if err != nil {
		return nil, fmt.Errorf("building plugin manifest: %w", err)
	}
	if err := manifest.Write(projectRoot, plugin); err != nil {
		return nil, fmt.Errorf("writing plugin manifest: %w", err)
	}

	response := fmt.Sprintf(
		"# Upgrade Committed: %s\n\n"+
			"**Files applied:** %d\n"+
			"**Conflicts overwritten:** %d\n"+
			"**Manifest:** `.claude-plugin/plugin.json` (%d commands, %d agents, %d skills)\n\n"+
			"The staging directory has been removed and the installed version "+
			"recorded in speck.json.",
		targetVersion, run.FilesApplied, run.ConflictsSeen,
		len(plugin.Commands), len(plugin.Agents), len(plugin.Skills),
	)

	return mcp.NewToolResultText(response), nil
}
