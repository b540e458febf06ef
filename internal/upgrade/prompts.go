package upgrade

import (
	"fmt"

	"github.com/nprbst/speck-sub002/internal/staging"
)

// Agent1Prompt instructs the first agent: rewrite the upstream bash
// scripts as TypeScript into the session's scripts directory. The
// engine never reads the agent's output; these instructions are the
// whole contract.
func Agent1Prompt(s *staging.Session) string {
	return fmt.Sprintf(`You are upgrading this project's speck installation to %s.

Phase 1: script rewrite.

1. Read the upstream spec-kit bash scripts for release %s.
2. Rewrite each script as an equivalent TypeScript script. Preserve
   behavior, flags, and JSON output shapes exactly.
3. Write every rewritten script into the staging directory:
   %s
   Use the same base filename with a .ts extension.
4. Do NOT touch the production tree (.speck/ or .claude/) directly.
   Only write under the staging directory.

When you are done, call speck_upgrade_advance with phase 1 and a JSON
summary of what you produced.`, s.TargetVersion, s.TargetVersion, s.ScriptsDir)
}

// Agent2Prompt instructs the second agent: rewrite the upstream slash
// commands, agents, and skills into the session's remaining category
// directories.
func Agent2Prompt(s *staging.Session) string {
	return fmt.Sprintf(`Phase 1 is complete. Continue the upgrade to %s.

Phase 2: command rewrite.

1. Read the upstream spec-kit command markdown for release %s, plus the
   rewritten scripts in %s.
2. Rewrite each command to invoke the TypeScript scripts and to follow
   the speck command format. Update frontmatter script references
   accordingly.
3. Write rewritten files into the staging directories:
   commands: %s
   agents:   %s
   skills:   %s
4. Do NOT touch the production tree directly. Only write under the
   staging directories.

When you are done, call speck_upgrade_advance with phase 2 and a JSON
summary of what you produced. The server will then snapshot the
production tree and report any conflicts before commit.`,
		s.TargetVersion, s.TargetVersion, s.ScriptsDir,
		s.CommandsDir, s.AgentsDir, s.SkillsDir)
}
