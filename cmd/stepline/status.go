package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/calebhart/stepline/internal/config"
	"github.com/calebhart/stepline/internal/transcript"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Show recent plan runs",
	Long: `Display recent plan runs from the transcript database.

Without arguments, lists the most recent runs. With a run ID, shows the
per-task outcomes for that run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "Number of runs to list")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	path := cfg.Transcript.Path
	if path == "" {
		path = transcript.DefaultPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("No recorded runs. Run 'stepline run <plan.yaml>' to start.")
		return nil
	}

	store, err := transcript.Open(path)
	if err != nil {
		return fmt.Errorf("open transcript database: %w", err)
	}
	defer store.Close()

	if len(args) == 1 {
		return showRun(store, args[0])
	}
	return listRuns(store)
}

func listRuns(store *transcript.Store) error {
	runs, err := store.RecentRuns(statusLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%s  %-24s %s  %s\n",
			color.CyanString(run.ID),
			run.PlanName,
			statusColor(run.Status),
			run.StartedAt.Local().Format(time.DateTime),
		)
	}
	return nil
}

func showRun(store *transcript.Store, runID string) error {
	records, err := store.RunTasks(runID)
	if err != nil {
		return fmt.Errorf("load run %s: %w", runID, err)
	}
	if len(records) == 0 {
		fmt.Printf("No tasks recorded for run %s.\n", runID)
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%2d. %-12s %s  %s\n", rec.Index, rec.TaskType, statusColor(rec.Status), rec.Prompt)
		for _, result := range rec.Results {
			fmt.Printf("      %s\n", result)
		}
	}
	return nil
}

func statusColor(status string) string {
	switch status {
	case "done":
		return color.GreenString("%-7s", status)
	case "error":
		return color.RedString("%-7s", status)
	case "running":
		return color.YellowString("%-7s", status)
	default:
		return fmt.Sprintf("%-7s", status)
	}
}
