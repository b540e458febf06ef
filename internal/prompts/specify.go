// Package prompts implements the MCP prompt handlers.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// SpecifyPrompt handles the speck-specify MCP prompt.
// It guides the AI through starting a feature and writing its spec.
type SpecifyPrompt struct{}

// NewSpecifyPrompt creates a SpecifyPrompt.
func NewSpecifyPrompt() *SpecifyPrompt {
	return &SpecifyPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *SpecifyPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("speck-specify",
		mcp.WithPromptDescription(
			"Start a new feature the spec-driven way: create the feature "+
				"record, write a concrete specification, and walk the "+
				"specify > plan > tasks > implement flow.",
		),
		mcp.WithArgument("description",
			mcp.ArgumentDescription("What the feature should do, in plain language"),
		),
		mcp.WithArgument("track",
			mcp.ArgumentDescription("Documentation rigor: 'quick', 'standard', or 'thorough'. Default: standard"),
		),
	)
}

// Handle processes the speck-specify prompt request.
func (p *SpecifyPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	description := "the feature I describe next"
	track := "standard"
	if args := req.Params.Arguments; args != nil {
		if d, ok := args["description"]; ok && d != "" {
			description = d
		}
		if tr, ok := args["track"]; ok && tr != "" {
			track = tr
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Specify feature: %s", description),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to build: %s\n\n"+
						"Follow the spec-driven workflow on the '%s' track:\n"+
						"1. Run `speck_specify` with my description and track='%s'\n"+
						"2. Fill in the generated spec.md: user scenarios, testable requirements, "+
						"success criteria. Mark anything ambiguous with [NEEDS CLARIFICATION] "+
						"and ask me about it\n"+
						"3. Once the spec is solid, run `speck_plan` (resolve clarifications first "+
						"if the track requires them)\n"+
						"4. Fill in plan.md, then run `speck_tasks` and break the plan down\n"+
						"5. Implement the tasks in order, then run `speck_feature_complete` "+
						"with a summary\n\n"+
						"Keep the spec about WHAT and WHY; keep HOW in the plan.",
					description, track, track,
				)),
			},
		},
	}, nil
}
