package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calebhart/stepline/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Long: `Display the effective stepline configuration.

Configuration is read from ~/.config/stepline/config.yaml, with
project-level overrides in .stepline.yaml and environment variables
(ANTHROPIC_API_KEY) taking precedence.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		apiKeyDisplay := "(not set)"
		if cfg.Anthropic.APIKey != "" {
			apiKeyDisplay = "****"
		}
		modelDisplay := cfg.Anthropic.Model
		if modelDisplay == "" {
			modelDisplay = "(sdk default)"
		}

		fmt.Printf("anthropic.api_key: %s\n", apiKeyDisplay)
		fmt.Printf("anthropic.model: %s\n", modelDisplay)
		fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
		fmt.Printf("retry.max_retries: %d\n", cfg.Retry.MaxRetries)
		fmt.Printf("retry.base_delay: %s\n", cfg.Retry.BaseDelay)
		fmt.Printf("retry.max_delay: %s\n", cfg.Retry.MaxDelay)
		fmt.Printf("fanout.max_concurrent: %d\n", cfg.Fanout.MaxConcurrent)
		fmt.Printf("bridge.timeout: %s\n", cfg.Bridge.Timeout)
		fmt.Printf("transcript.disabled: %t\n", cfg.Transcript.Disabled)
		fmt.Printf("\nconfig file: %s\n", config.GetUserConfigPath())
		if project := config.GetProjectConfigPath(); project != "" {
			fmt.Printf("project override: %s\n", project)
		}
	},
}
