// Package tools implements the MCP tool handlers.
//
// Each tool is a struct that receives dependencies via its constructor
// (DIP) and exposes Definition/Handle compatible with mcp-go.
//
// Design principles:
// - SRP: each file = one tool
// - DIP: tools depend on interfaces (config.Store, feature.Store), not concretions
// - OCP: new tools are added without modifying existing ones
package tools

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nprbst/speck-sub002/internal/config"
	"github.com/nprbst/speck-sub002/internal/history"
	"github.com/nprbst/speck-sub002/internal/upgrade"
)

// findProjectRoot locates the enclosing speck project so tools work
// from any subdirectory.
func findProjectRoot() (string, error) {
	return config.FindProjectRoot()
}

// newWorkflow assembles an upgrade workflow for a project root. The
// returned cleanup closes the history database and must be called when
// the handler is done.
func newWorkflow(projectRoot string, store config.Store) (*upgrade.Workflow, func(), error) {
	runs, err := history.Open(history.DefaultPath(projectRoot))
	if err != nil {
		return nil, nil, fmt.Errorf("opening history store: %w", err)
	}
	cleanup := func() { _ = runs.Close() }
	return upgrade.New(projectRoot, store, runs), cleanup, nil
}

// readArtifact reads a stage's markdown artifact. A missing file is
// not an error, just an empty string (the stage hasn't run yet).
func readArtifact(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// writeArtifact writes a stage's markdown artifact, creating parent
// directories as needed.
func writeArtifact(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
