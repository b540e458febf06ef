package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nprbst/speck-sub002/internal/config"
)

// InitTool handles the speck_init MCP tool.
// It creates the .speck/ directory and initial configuration.
type InitTool struct {
	store config.Store
}

// NewInitTool creates an InitTool with the given config store.
func NewInitTool(store config.Store) *InitTool {
	return &InitTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *InitTool) Definition() mcp.Tool {
	return mcp.NewTool("speck_init",
		mcp.WithDescription(
			"Initialize speck in the current project. "+
				"Creates the .speck/ directory with configuration. "+
				"This is always the first step; every other speck tool needs it.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("upstream_repo",
			mcp.Description("Upstream spec-kit repository as 'owner/name'. Defaults to github/spec-kit."),
		),
	)
}

// Handle processes the speck_init tool call.
func (t *InitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	projectRoot, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	// Guard: don't overwrite an existing project.
	if config.Exists(projectRoot) {
		return mcp.NewToolResultError(
			"a speck project already exists in this directory",
		), nil
	}

	cfg := config.NewProjectConfig(name)
	if repo := req.GetString("upstream_repo", ""); repo != "" {
		cfg.UpstreamRepo = repo
	}
	if err := t.store.Save(projectRoot, cfg); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	response := fmt.Sprintf(
		"# Speck Initialized\n\n"+
			"**Project:** %s\n"+
			"**Upstream:** %s\n"+
			"**Location:** `%s/`\n\n"+
			"## Next Steps\n\n"+
			"- `speck_upgrade_check` to see the latest spec-kit release, then "+
			"`speck_upgrade_start` to install the workflow commands.\n"+
			"- `speck_specify` with a feature description to start your first feature.",
		name, cfg.UpstreamRepo, config.SpeckDir,
	)

	return mcp.NewToolResultText(response), nil
}
