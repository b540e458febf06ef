package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nprbst/speck-sub002/internal/config"
	"github.com/nprbst/speck-sub002/internal/staging"
)

var stagingJSON bool

func init() {
	rootCmd.AddCommand(stagingCmd)
	stagingCmd.AddCommand(stagingListCmd)
	stagingCmd.AddCommand(stagingInspectCmd)
	stagingCmd.AddCommand(stagingRollbackCmd)

	stagingCmd.PersistentFlags().BoolVar(&stagingJSON, "json", false, "Output results as JSON")
}

var stagingCmd = &cobra.Command{
	Use:   "staging",
	Short: "Inspect and clean up upgrade staging sessions",
	Long: `Work with the sessions under .speck/staging/.

A session left behind by an interrupted run blocks new upgrades until
it is rolled back. "staging list" finds them, "staging inspect" shows
what a session would change, "staging rollback" discards one.`,
}

var stagingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open (non-terminal) staging sessions",
	RunE:  runStagingList,
}

func runStagingList(cmd *cobra.Command, args []string) error {
	area, err := projectArea()
	if err != nil {
		return err
	}

	open, err := area.Orphans()
	if err != nil {
		return err
	}

	if stagingJSON {
		type row struct {
			TargetVersion string         `json:"target_version"`
			Status        staging.Status `json:"status"`
			StartTime     string         `json:"start_time"`
		}
		rows := make([]row, len(open))
		for i, s := range open {
			rows[i] = row{s.TargetVersion, s.Metadata.Status, s.Metadata.StartTime}
		}
		return printJSON(rows)
	}

	if len(open) == 0 {
		fmt.Println("No open staging sessions.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATUS\tSTARTED")
	for _, s := range open {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.TargetVersion, s.Metadata.Status, s.Metadata.StartTime)
	}
	return tw.Flush()
}

var stagingInspectCmd = &cobra.Command{
	Use:   "inspect <version>",
	Short: "Show a session's status, staged files, and conflicts",
	Args:  cobra.ExactArgs(1),
	RunE:  runStagingInspect,
}

func runStagingInspect(cmd *cobra.Command, args []string) error {
	area, err := projectArea()
	if err != nil {
		return err
	}

	report, err := area.Inspect(args[0])
	if err != nil {
		return err
	}

	if stagingJSON {
		return printJSON(report)
	}

	fmt.Printf("version:  %s\n", report.Metadata.TargetVersion)
	fmt.Printf("status:   %s\n", report.Metadata.Status)
	if report.Metadata.PreviousVersion != nil {
		fmt.Printf("previous: %s\n", *report.Metadata.PreviousVersion)
	}
	fmt.Printf("started:  %s\n", report.Metadata.StartTime)

	fmt.Printf("\nstaged files (%d):\n", len(report.Files))
	for _, f := range report.Files {
		fmt.Printf("  [%s] %s -> %s\n", f.Category, f.RelativePath, f.ProductionPath)
	}

	if report.Metadata.ProductionBaseline == nil {
		fmt.Println("\nbaseline: not captured yet")
		return nil
	}
	fmt.Printf("\nbaseline: %s (%d files)\n",
		report.Metadata.ProductionBaseline.CapturedAt,
		len(report.Metadata.ProductionBaseline.Files))
	if len(report.Conflicts) == 0 {
		fmt.Println("conflicts: none")
	} else {
		fmt.Printf("conflicts (%d):\n", len(report.Conflicts))
		for _, c := range report.Conflicts {
			fmt.Printf("  %s: %s\n", c.Path, c.Kind)
		}
	}
	return nil
}

var stagingRollbackCmd = &cobra.Command{
	Use:   "rollback <version>",
	Short: "Discard a staging session",
	Args:  cobra.ExactArgs(1),
	RunE:  runStagingRollback,
}

func runStagingRollback(cmd *cobra.Command, args []string) error {
	projectRoot, err := config.FindProjectRoot()
	if err != nil {
		return err
	}

	w, cleanup, err := openWorkflow(projectRoot, config.NewFileStore())
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := w.Rollback(args[0]); err != nil {
		return err
	}
	fmt.Printf("Session %s rolled back.\n", args[0])
	return nil
}

// projectArea resolves the staging area for the enclosing project.
func projectArea() (*staging.Area, error) {
	projectRoot, err := config.FindProjectRoot()
	if err != nil {
		return nil, err
	}
	return staging.NewArea(projectRoot), nil
}

// printJSON writes a value as indented JSON on stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
