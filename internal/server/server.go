// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on
// abstractions. No business logic lives here, only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/nprbst/speck-sub002/internal/config"
	"github.com/nprbst/speck-sub002/internal/feature"
	"github.com/nprbst/speck-sub002/internal/prompts"
	"github.com/nprbst/speck-sub002/internal/resources"
	"github.com/nprbst/speck-sub002/internal/templates"
	"github.com/nprbst/speck-sub002/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
func New() (*server.MCPServer, error) {
	// --- Create shared dependencies ---

	cfgStore := config.NewFileStore()
	featureStore := feature.NewFileStore()

	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("creating template renderer: %w", err)
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"speck",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register project and feature tools ---

	initTool := tools.NewInitTool(cfgStore)
	s.AddTool(initTool.Definition(), initTool.Handle)

	specifyTool := tools.NewSpecifyTool(featureStore, renderer)
	s.AddTool(specifyTool.Definition(), specifyTool.Handle)

	planTool := tools.NewPlanTool(featureStore, renderer)
	s.AddTool(planTool.Definition(), planTool.Handle)

	tasksTool := tools.NewTasksTool(featureStore, renderer)
	s.AddTool(tasksTool.Definition(), tasksTool.Handle)

	completeTool := tools.NewCompleteTool(featureStore)
	s.AddTool(completeTool.Definition(), completeTool.Handle)

	// --- Register upgrade tools ---
	//
	// The upgrade pipeline is independent from the feature workflow:
	// it stages rewritten upstream files under .speck/staging/ and
	// applies them through commit. Each tool assembles its workflow
	// per call because the history database lives under the project
	// root, which is resolved at call time.

	upgradeCheck := tools.NewUpgradeCheckTool(cfgStore)
	s.AddTool(upgradeCheck.Definition(), upgradeCheck.Handle)

	upgradeStart := tools.NewUpgradeStartTool(cfgStore)
	s.AddTool(upgradeStart.Definition(), upgradeStart.Handle)

	upgradeAdvance := tools.NewUpgradeAdvanceTool(cfgStore)
	s.AddTool(upgradeAdvance.Definition(), upgradeAdvance.Handle)

	upgradeCommit := tools.NewUpgradeCommitTool(cfgStore)
	s.AddTool(upgradeCommit.Definition(), upgradeCommit.Handle)

	upgradeRollback := tools.NewUpgradeRollbackTool(cfgStore)
	s.AddTool(upgradeRollback.Definition(), upgradeRollback.Handle)

	upgradeStatus := tools.NewUpgradeStatusTool()
	s.AddTool(upgradeStatus.Definition(), upgradeStatus.Handle)

	// --- Register prompts ---

	specifyPrompt := prompts.NewSpecifyPrompt()
	s.AddPrompt(specifyPrompt.Definition(), specifyPrompt.Handle)

	upgradePrompt := prompts.NewUpgradePrompt()
	s.AddPrompt(upgradePrompt.Definition(), upgradePrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(cfgStore, featureStore)
	s.AddResource(resourceHandler.ProjectResource(), resourceHandler.HandleProject)
	s.AddResource(resourceHandler.UpgradeResource(), resourceHandler.HandleUpgrade)

	return s, nil
}

// serverInstructions returns the system instructions that tell the AI
// how to use speck effectively.
func serverInstructions() string {
	return `You have access to speck, a spec-driven development MCP server.

## WHEN TO USE speck

Suggest the feature workflow when the user:
- Asks to build a new feature, app, or system
- Describes a vague idea and wants to start coding
- Asks you to plan, architect, or design something

You do NOT need it for bug fixes, small patches, refactors, questions,
or one-liner changes.

## CRITICAL: How the feature tools work

speck tools are STORAGE tools, not AI tools. They scaffold documents
that YOU fill in:

1. TALK to the user, understand the idea, ask questions
2. Run the stage tool (speck_specify, speck_plan, speck_tasks)
3. GENERATE real content into the scaffolded file
4. Advance to the next stage only when the current document is solid

Never leave placeholder text like "TBD" in a finished stage. Keep
specs about WHAT and WHY; keep HOW in the plan.

## The upgrade pipeline

speck_upgrade_* tools manage upgrades of the spec-kit command set.
Everything is staged under .speck/staging/<version>/ first:

- speck_upgrade_start creates the session and downloads the release
- You rewrite upstream bash scripts to TypeScript (phase 1) and the
  command markdown to speck's format (phase 2), writing ONLY into the
  staging directories the prompts name
- speck_upgrade_advance records each phase; after phase 2 it snapshots
  the live tree and reports conflicts
- speck_upgrade_commit applies the session; speck_upgrade_rollback
  discards it. Production is never touched before commit.

If a session is left over from an interrupted run, speck_upgrade_status
lists it; roll it back before starting a new one.`
}
