package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	speckserver "github.com/nprbst/speck-sub002/internal/server"
	"github.com/nprbst/speck-sub002/internal/updater"
)

func init() {
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update speck to the latest release",
	RunE:  runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(os.Stderr, "Checking for updates...")

	result := updater.CheckVersion(speckserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "Already at the latest version (v%s)\n", result.CurrentVersion)
		return nil
	}

	fmt.Fprintf(os.Stderr, "Updating v%s -> v%s...\n", result.CurrentVersion, result.LatestVersion)
	if err := updater.SelfUpdate(speckserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "You can download manually from: %s\n", result.ReleaseURL)
		return err
	}

	fmt.Fprintf(os.Stderr, "Updated to v%s. Restart speck to use the new version.\n", result.LatestVersion)
	return nil
}
