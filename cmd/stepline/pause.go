package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calebhart/stepline/internal/control"
)

var (
	pauseSignalsDir  string
	resumeSignalsDir string
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause a running plan at its next task boundary",
	Long: `Hold a running plan before its next task starts.

The current task finishes first. The plan stays held until 'stepline resume'
removes the pause signal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watcher, err := control.NewWatcher(pauseSignalsDir)
		if err != nil {
			return fmt.Errorf("open signals directory: %w", err)
		}
		defer watcher.Close()

		if err := watcher.Pause(); err != nil {
			return fmt.Errorf("write pause signal: %w", err)
		}
		fmt.Println("Pause signal written; the plan will hold before its next task.")
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		watcher, err := control.NewWatcher(resumeSignalsDir)
		if err != nil {
			return fmt.Errorf("open signals directory: %w", err)
		}
		defer watcher.Close()

		if err := watcher.Resume(); err != nil {
			return fmt.Errorf("remove pause signal: %w", err)
		}
		fmt.Println("Pause signal removed.")
		return nil
	},
}

func init() {
	pauseCmd.Flags().StringVar(&pauseSignalsDir, "signals-dir", ".stepline", "Directory watched for signals")
	resumeCmd.Flags().StringVar(&resumeSignalsDir, "signals-dir", ".stepline", "Directory watched for signals")
}
