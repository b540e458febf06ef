// Package main implements the speck CLI.
//
// speck is a spec-driven development MCP server for AI coding
// assistants, plus a staged upgrade pipeline for the spec-kit command
// set. The primary mode is "speck serve" (MCP over stdio); the other
// commands are operator tooling around the same state.
package main

import (
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	speckserver "github.com/nprbst/speck-sub002/internal/server"
	"github.com/nprbst/speck-sub002/internal/updater"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "speck",
	Short: "Spec-driven development MCP server",
	Long: `speck gives AI coding assistants a spec-driven development workflow
(specify > plan > tasks > implement) and a staged upgrade pipeline for
the spec-kit command set.

Add to your assistant's MCP config:

  {
    "mcpServers": {
      "speck": {
        "command": "speck",
        "args": ["serve"]
      }
    }
  }`,
	Version:       speckserver.Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := speckserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Best-effort version check. Prints to stderr so it can't corrupt
	// the MCP stdio transport on stdout.
	go func() {
		result := updater.CheckVersion(speckserver.Version)
		if result.UpdateAvailable {
			fmt.Fprintf(os.Stderr,
				"update available: v%s -> v%s (run: speck update)\n",
				result.CurrentVersion, result.LatestVersion,
			)
		}
	}()

	return mcpserver.ServeStdio(s)
}
