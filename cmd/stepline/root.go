package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stepline",
	Short: "Sequential workflow runner for capability providers",
	Long: `Stepline executes multi-step plans: ordered tasks, each delegated to a
capability provider, with results from earlier tasks threaded forward as
context for later ones.

Plans are YAML files listing tasks by type and prompt. Built-in task types
(text, summarize, translate, web_search) are backed by the Anthropic API;
web_search fans out into concurrent sub-queries with a configurable ceiling.

Failures can halt the plan or be folded into downstream context, transient
upstream errors are retried with exponential backoff, and every run is
recorded to a local transcript database.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(versionCmd)
}
