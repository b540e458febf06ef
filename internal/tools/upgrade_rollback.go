package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nprbst/speck-sub002/internal/config"
)

// UpgradeRollbackTool handles the speck_upgrade_rollback MCP tool.
// It discards a staging session without touching production.
type UpgradeRollbackTool struct {
	store config.Store
}

// NewUpgradeRollbackTool creates an UpgradeRollbackTool with the given
// config store.
func NewUpgradeRollbackTool(store config.Store) *UpgradeRollbackTool {
	return &UpgradeRollbackTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *UpgradeRollbackTool) Definition() mcp.Tool {
	return mcp.NewTool("speck_upgrade_rollback",
		mcp.WithDescription(
			"Discard an upgrade session. Removes the staging directory; the "+
				"live .speck/ and .claude/ trees are never touched. Works from any "+
				"state except an already committed, rolled back, or failed session.",
		),
		mcp.WithString("target_version",
			mcp.Required(),
			mcp.Description("The session's target release tag"),
		),
	)
}

// Handle processes the speck_upgrade_rollback tool call.
func (t *UpgradeRollbackTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	if _, err := w.Rollback(targetVersion); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Upgrade session %s rolled back. The staging directory was removed "+
			"and production is untouched. Run `speck_upgrade_start` to try again.",
		targetVersion,
	)), nil
}
