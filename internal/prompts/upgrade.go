package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// UpgradePrompt handles the speck-upgrade MCP prompt.
// It drives the full staged upgrade flow end to end.
type UpgradePrompt struct{}

// NewUpgradePrompt creates an UpgradePrompt.
func NewUpgradePrompt() *UpgradePrompt {
	return &UpgradePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *UpgradePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("speck-upgrade",
		mcp.WithPromptDescription(
			"Upgrade speck to a spec-kit release through the staged " +
				"workflow: download, rewrite scripts and commands into staging, " +
				"review conflicts, then commit or roll back.",
		),
		mcp.WithArgument("target_version",
			mcp.ArgumentDescription("Release tag to upgrade to. Omit to use the latest release."),
		),
	)
}

// Handle processes the speck-upgrade prompt request.
func (p *UpgradePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	target := ""
	if args := req.Params.Arguments; args != nil {
		target = args["target_version"]
	}

	versionStep := "1. Run `speck_upgrade_check` and use the latest version it reports\n"
	if target != "" {
		versionStep = fmt.Sprintf("1. Upgrade to %s (run `speck_upgrade_check` to confirm it exists)\n", target)
	}

	return &mcp.GetPromptResult{
		Description: "Run a staged speck upgrade",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Upgrade this project's speck installation.\n\n" +
						versionStep +
						"2. Run `speck_upgrade_start` with that target_version. It stages " +
						"everything under .speck/staging/; nothing touches the live tree yet\n" +
						"3. Follow the phase 1 instructions it returns (script rewrite), then " +
						"call `speck_upgrade_advance` with phase 1\n" +
						"4. Follow the phase 2 instructions (command rewrite), then call " +
						"`speck_upgrade_advance` with phase 2\n" +
						"5. Review any conflicts it reports. If they look wrong, " +
						"`speck_upgrade_rollback` and tell me; otherwise `speck_upgrade_commit`\n\n" +
						"If anything fails midway, `speck_upgrade_status` shows where the " +
						"session stands.",
				),
			},
		},
	}, nil
}
