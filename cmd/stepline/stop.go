package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calebhart/stepline/internal/control"
)

var stopSignalsDir string

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running plan between tasks",
	Long: `Signal a running plan to stop.

The running plan checks for the signal before each task, so the current
task finishes first. Tasks that have not started stay in the waiting
state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watcher, err := control.NewWatcher(stopSignalsDir)
		if err != nil {
			return fmt.Errorf("open signals directory: %w", err)
		}
		defer watcher.Close()

		if err := watcher.Signal(); err != nil {
			return fmt.Errorf("write stop signal: %w", err)
		}
		fmt.Println("Stop signal written; the plan will halt before its next task.")
		return nil
	},
}

func init() {
	stopCmd.Flags().StringVar(&stopSignalsDir, "signals-dir", ".stepline", "Directory watched for stop signals")
}
