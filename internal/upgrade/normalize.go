package upgrade

import (
	"fmt"
	"os"
	"strings"

	"github.com/nprbst/speck-sub002/internal/rewrite"
	"github.com/nprbst/speck-sub002/internal/staging"
)

// normalizeStagedCommands applies mechanical format glue to the staged
// command and agent markdown after the rewrite agents finish: upstream
// directory references and script extensions are mapped to speck's
// layout. Content semantics stay agent-owned; files that are not
// markdown are left alone.
func normalizeStagedCommands(session *staging.Session) error {
	files, err := session.ListStagedFiles()
	if err != nil {
		return err
	}

	for _, f := range files {
		if f.Category != staging.CategoryCommands && f.Category != staging.CategoryAgents {
			continue
		}
		if !strings.HasSuffix(f.RelativePath, ".md") {
			continue
		}

		content, err := os.ReadFile(f.StagingPath)
		if err != nil {
			return fmt.Errorf("reading staged command %s: %w", f.RelativePath, err)
		}

		doc, err := rewrite.Parse(content)
		if err != nil {
			return fmt.Errorf("parsing staged command %s: %w", f.RelativePath, err)
		}
		doc.RewritePaths()

		out, err := doc.Render()
		if err != nil {
			return fmt.Errorf("rendering staged command %s: %w", f.RelativePath, err)
		}
		if err := os.WriteFile(f.StagingPath, out, 0o644); err != nil {
			return fmt.Errorf("writing staged command %s: %w", f.RelativePath, err)
		}
	}
	return nil
}
