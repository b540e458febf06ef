package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nprbst/speck-sub002/internal/config"
	"github.com/nprbst/speck-sub002/internal/history"
	"github.com/nprbst/speck-sub002/internal/upgrade"
	"github.com/nprbst/speck-sub002/internal/upstream"
)

func init() {
	rootCmd.AddCommand(upgradeCmd)
	upgradeCmd.AddCommand(upgradeCheckCmd)
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Manage spec-kit upgrades",
	Long: `Inspect and manage the staged spec-kit upgrade pipeline.

The rewrite phases themselves run through an AI assistant over MCP;
the CLI covers checking for releases and cleaning up sessions.`,
}

var upgradeCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check for a newer spec-kit release",
	RunE:  runUpgradeCheck,
}

func runUpgradeCheck(cmd *cobra.Command, args []string) error {
	projectRoot, err := config.FindProjectRoot()
	if err != nil {
		return err
	}
	store := config.NewFileStore()

	cfg, err := store.Load(projectRoot)
	if err != nil {
		return err
	}

	client, err := upstream.NewClient(cmd.Context(), cfg.UpstreamRepo, os.Getenv(cfg.TokenEnv))
	if err != nil {
		return err
	}

	w, cleanup, err := openWorkflow(projectRoot, store)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := w.Check(cmd.Context(), client)
	if err != nil {
		return err
	}

	installed := res.InstalledVersion
	if installed == "" {
		installed = "(none)"
	}
	fmt.Printf("installed: %s\n", installed)
	fmt.Printf("latest:    %s\n", res.LatestVersion)
	if res.UpdateAvailable {
		fmt.Printf("\nUpgrade available. Run the speck-upgrade prompt in your assistant,\nor speck_upgrade_start over MCP, to install %s.\n", res.LatestVersion)
	} else {
		fmt.Println("\nUp to date.")
	}
	return nil
}

// openWorkflow assembles an upgrade workflow plus a cleanup for its
// history database.
func openWorkflow(projectRoot string, store config.Store) (*upgrade.Workflow, func(), error) {
	runs, err := history.Open(history.DefaultPath(projectRoot))
	if err != nil {
		return nil, nil, err
	}
	return upgrade.New(projectRoot, store, runs), func() { _ = runs.Close() }, nil
}
