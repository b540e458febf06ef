package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nprbst/speck-sub002/internal/config"
)

// UpgradeAdvanceTool handles the speck_upgrade_advance MCP tool.
// Agents call it after each rewrite phase; phase 2 also snapshots the
// production tree and reports conflicts.
type UpgradeAdvanceTool struct {
	store config.Store
}

// NewUpgradeAdvanceTool creates an UpgradeAdvanceTool with the given
// config store.
func NewUpgradeAdvanceTool(store config.Store) *UpgradeAdvanceTool {
	return &UpgradeAdvanceTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *UpgradeAdvanceTool) Definition() mcp.Tool {
	return mcp.NewTool("speck_upgrade_advance",
		mcp.WithDescription(
			"Report a finished rewrite phase for an upgrade session. "+
				"Phase 1 covers the script rewrite, phase 2 the command rewrite. "+
				"After phase 2 the session snapshots the production tree, becomes "+
				"ready, and reports any conflicts to review before committing.",
		),
		mcp.WithString("target_version",
			mcp.Required(),
			mcp.Description("The session's target release tag"),
		),
		mcp.WithNumber("phase",
			mcp.Required(),
			mcp.Description("The phase just completed: 1 or 2"),
		),
		mcp.WithString("result",
			mcp.Description("JSON summary of what the phase produced, recorded verbatim in the session"),
		),
	)
}

// Handle processes the speck_upgrade_advance tool call.
func (t *UpgradeAdvanceTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetVersion := req.GetString("target_version", "")
	if targetVersion == "" {
		return mcp.NewToolResultError("'target_version' is required"), nil
	}
	phase := req.GetInt("phase", 0)

	var result json.RawMessage
	if raw := req.GetString("result", ""); raw != "" {
		if !json.Valid([]byte(raw)) {
			return mcp.NewToolResultError("'result' must be valid JSON"), nil
		}
		result = json.RawMessage(raw)
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

	res, err := w.Advance(targetVersion, phase, result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if res.NextPrompt != "" {
		return mcp.NewToolResultText(fmt.Sprintf(
			"# Phase 1 Recorded\n\n**Status:** %s\n\n## Phase 2 Instructions\n\n%s",
			res.Status, res.NextPrompt,
		)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Session Ready: %s\n\n", targetVersion)
	fmt.Fprintf(&b, "**Status:** %s\n**Staged files:** %d\n\n", res.Status, len(res.Files))

	if len(res.Conflicts) == 0 {
		b.WriteString("No conflicts: the production tree is unchanged since the baseline.\n\n")
	} else {
		fmt.Fprintf(&b, "## Conflicts (%d)\n\n", len(res.Conflicts))
		b.WriteString("The production tree changed while the session was being prepared. " +
			"Committing will overwrite staged paths regardless; review these first:\n\n")
		for _, c := range res.Conflicts {
			fmt.Fprintf(&b, "- `%s`: %s\n", c.Path, c.Kind)
		}
		b.WriteString("\n")
	}

	b.WriteString("Run `speck_upgrade_commit` to apply, or `speck_upgrade_rollback` to discard.")

	return mcp.NewToolResultText(b.String()), nil
}
