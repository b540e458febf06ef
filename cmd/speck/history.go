package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nprbst/speck-sub002/internal/config"
	"github.com/nprbst/speck-sub002/internal/history"
)

var (
	historyLimit int
	historyJSON  bool
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output results as JSON")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past upgrade runs",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	projectRoot, err := config.FindProjectRoot()
	if err != nil {
		return err
	}

	store, err := history.Open(history.DefaultPath(projectRoot))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.List(historyLimit)
	if err != nil {
		return err
	}

	if historyJSON {
		return printJSON(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No upgrade runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tFROM\tOUTCOME\tFILES\tCONFLICTS\tFINISHED")
	for _, r := range runs {
		from := "-"
		if r.PreviousVersion != nil {
			from = *r.PreviousVersion
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.TargetVersion, from, r.Outcome, r.FilesApplied, r.ConflictsSeen, r.FinishedAt)
	}
	return tw.Flush()
}
