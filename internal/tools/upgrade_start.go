package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nprbst/speck-sub002/internal/config"
	"github.com/nprbst/speck-sub002/internal/upstream"
)

// UpgradeStartTool handles the speck_upgrade_start MCP tool.
// It downloads the upstream template, creates the staging session, and
// hands back the instructions for the first rewrite phase.
type UpgradeStartTool struct {
	store config.Store
}

// NewUpgradeStartTool creates an UpgradeStartTool with the given
// config store.
func NewUpgradeStartTool(store config.Store) *UpgradeStartTool {
	return &UpgradeStartTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *UpgradeStartTool) Definition() mcp.Tool {
	return mcp.NewTool("speck_upgrade_start",
		mcp.WithDescription(
			"Begin upgrading to a spec-kit release. Downloads the release "+
				"template into .speck/staging/, creates a versioned staging session, "+
				"and returns the phase 1 rewrite instructions. The live .speck/ and "+
				".claude/ trees are untouched until speck_upgrade_commit.",
		),
		mcp.WithString("target_version",
			mcp.Required(),
			mcp.Description("Release tag to upgrade to, e.g. v0.0.58"),
		),
	)
}

// Handle processes the speck_upgrade_start tool call.
func (t *UpgradeStartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetVersion := req.GetString("target_version", "")
	if targetVersion == "" {
		return mcp.NewToolResultError("'target_version' is required"), nil
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	cfg, err := t.store.Load(projectRoot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	w, cleanup, err := newWorkflow(projectRoot, t.store)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	res, err := w.Start(targetVersion)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Fetch the upstream template next to the session so the agents
	// have the source material on disk. A download failure aborts the
	// session; nothing has been staged yet.
	client, err := upstream.NewClient(ctx, cfg.UpstreamRepo, os.Getenv(cfg.TokenEnv))
	if err != nil {
		_ = res.Session.Rollback()
		return mcp.NewToolResultError(err.Error()), nil
	}
	rel, err := client.ReleaseByTag(ctx, targetVersion)
	if err != nil {
		_ = res.Session.Rollback()
		return mcp.NewToolResultError(fmt.Sprintf("fetching release %s: %v", targetVersion, err)), nil
	}
	templateDir, err := client.DownloadTemplate(ctx, rel, upstreamCachePath(projectRoot))
	if err != nil {
		_ = res.Session.Rollback()
		return mcp.NewToolResultError(fmt.Sprintf("downloading template: %v", err)), nil
	}
	inv, err := upstream.ScanTemplate(templateDir)
	if err != nil {
		_ = res.Session.Rollback()
		return nil, fmt.Errorf("scanning template: %w", err)
	}

	response := fmt.Sprintf(
		"# Upgrade Started: %s\n\n"+
			"**Session:** `%s`\n"+
			"**Template:** `%s` (%d scripts, %d commands, %d agents)\n\n"+
			"## Phase 1 Instructions\n\n%s",
		targetVersion, res.Session.RootDir, templateDir,
		len(inv.Scripts), len(inv.Commands), len(inv.Agents),
		res.Prompt,
	)

	return mcp.NewToolResultText(response), nil
}

// upstreamCachePath is where downloaded release templates land.
func upstreamCachePath(projectRoot string) string {
	return filepath.Join(config.SpeckPath(projectRoot), "upstream")
}
