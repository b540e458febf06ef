package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nprbst/speck-sub002/internal/staging"
)

// UpgradeStatusTool handles the speck_upgrade_status MCP tool.
// It reports a session's state or lists open sessions.
type UpgradeStatusTool struct{}

// NewUpgradeStatusTool creates an UpgradeStatusTool.
func NewUpgradeStatusTool() *UpgradeStatusTool {
	return &UpgradeStatusTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *UpgradeStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("speck_upgrade_status",
		mcp.WithDescription(
			"Inspect upgrade sessions. With target_version: that session's "+
				"status, staged files, and current conflicts. Without: every open "+
				"(non-terminal) session, including orphans left by interrupted runs.",
		),
		mcp.WithString("target_version",
			mcp.Description("Release tag of the session to inspect"),
		),
	)
}

// Handle processes the speck_upgrade_status tool call.
func (t *UpgradeStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}
	area := staging.NewArea(projectRoot)

	targetVersion := req.GetString("target_version", "")
	if targetVersion == "" {
		return t.listOpen(area)
	}

	status, err := area.Status(targetVersion)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if status == staging.StatusNone {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No staging session exists for %s.", targetVersion,
		)), nil
	}

	report, err := area.Inspect(targetVersion)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Session %s\n\n", targetVersion)
	fmt.Fprintf(&b, "**Status:** %s\n", report.Metadata.Status)
	if report.Metadata.PreviousVersion != nil {
		fmt.Fprintf(&b, "**Upgrading from:** %s\n", *report.Metadata.PreviousVersion)
	}
	fmt.Fprintf(&b, "**Started:** %s\n", report.Metadata.StartTime)
	fmt.Fprintf(&b, "**Staged files:** %d\n", len(report.Files))

	for _, f := range report.Files {
		fmt.Fprintf(&b, "- [%s] `%s`\n", f.Category, f.RelativePath)
	}

	if report.Metadata.ProductionBaseline != nil {
		fmt.Fprintf(&b, "\n**Baseline:** captured %s (%d files)\n",
			report.Metadata.ProductionBaseline.CapturedAt,
			len(report.Metadata.ProductionBaseline.Files))
		if len(report.Conflicts) == 0 {
			b.WriteString("**Conflicts:** none\n")
		} else {
			fmt.Fprintf(&b, "**Conflicts:** %d\n", len(report.Conflicts))
			for _, c := range report.Conflicts {
				fmt.Fprintf(&b, "- `%s`: %s\n", c.Path, c.Kind)
			}
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

// listOpen reports every non-terminal session in the staging area.
func (t *UpgradeStatusTool) listOpen(area *staging.Area) (*mcp.CallToolResult, error) {
	open, err := area.Orphans()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(open) == 0 {
		return mcp.NewToolResultText("No open upgrade sessions."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Open Sessions (%d)\n\n", len(open))
	for _, s := range open {
		fmt.Fprintf(&b, "- **%s**: %s, started %s\n",
			s.TargetVersion, s.Metadata.Status, s.Metadata.StartTime)
	}
	b.WriteString("\nAn open session blocks new upgrades. Resume it with " +
		"`speck_upgrade_status` per version, or discard it with `speck_upgrade_rollback`.")

	return mcp.NewToolResultText(b.String()), nil
}
