package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nprbst/speck-sub002/internal/config"
	"github.com/nprbst/speck-sub002/internal/upstream"
)

// UpgradeCheckTool handles the speck_upgrade_check MCP tool.
// It compares the installed spec-kit version against the latest
// upstream release.
type UpgradeCheckTool struct {
	store config.Store
}

// NewUpgradeCheckTool creates an UpgradeCheckTool with the given
// config store.
func NewUpgradeCheckTool(store config.Store) *UpgradeCheckTool {
	return &UpgradeCheckTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *UpgradeCheckTool) Definition() mcp.Tool {
	return mcp.NewTool("speck_upgrade_check",
		mcp.WithDescription(
			"Check whether a newer spec-kit release is available upstream. "+
				"Reports the installed and latest versions. Run speck_upgrade_start "+
				"to begin an upgrade.",
		),
	)
}

// Handle processes the speck_upgrade_check tool call.
func (t *UpgradeCheckTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	cfg, err := t.store.Load(projectRoot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := upstream.NewClient(ctx, cfg.UpstreamRepo, os.Getenv(cfg.TokenEnv))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	w, cleanup, err := newWorkflow(projectRoot, t.store)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	res, err := w.Check(ctx, client)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	installed := res.InstalledVersion
	if installed == "" {
		installed = "(none)"
	}

	if !res.UpdateAvailable {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Speck is up to date with %s %s.", cfg.UpstreamRepo, installed,
		)), nil
	}

	response := fmt.Sprintf(
		"# Upgrade Available\n\n"+
			"**Installed:** %s\n"+
			"**Latest:** %s\n"+
			"**Release:** %s\n\n"+
			"Run `speck_upgrade_start` with target_version='%s' to begin. "+
			"The upgrade stages everything under .speck/staging/ first; nothing "+
			"touches the live tree until you commit.",
		installed, res.LatestVersion, res.ReleaseURL, res.LatestVersion,
	)

	return mcp.NewToolResultText(response), nil
}
