package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/calebhart/stepline/internal/capability"
	"github.com/calebhart/stepline/internal/config"
	"github.com/calebhart/stepline/internal/control"
	"github.com/calebhart/stepline/internal/executor"
	"github.com/calebhart/stepline/internal/llm"
	"github.com/calebhart/stepline/internal/planfile"
	"github.com/calebhart/stepline/internal/retry"
	"github.com/calebhart/stepline/internal/transcript"
	"github.com/calebhart/stepline/internal/tui"
	"github.com/calebhart/stepline/pkg/models"
)

var (
	runContinueOnError bool
	runTimeout         time.Duration
	runOffline         bool
	runHeadless        bool
	runSignalsDir      string
)

var runCmd = &cobra.Command{
	Use:   "run <plan.yaml>",
	Short: "Execute a plan file",
	Long: `Execute a plan file task by task.

Each task's provider receives the task prompt plus the accumulated results
of every prior task. By default the plan halts on the first failure; with
--continue-on-error, failed tasks contribute their error string to the
output and downstream context instead.

Use --timeout to put a per-task deadline on provider calls, --offline to
run with the echo provider instead of the Anthropic API, and --headless to
disable the live TUI.

A running plan can be stopped between tasks with 'stepline stop'.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	runCmd.Flags().BoolVar(&runContinueOnError, "continue-on-error", false, "Fold task failures into downstream context instead of halting")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Per-task deadline for provider calls (0 = none)")
	runCmd.Flags().BoolVar(&runOffline, "offline", false, "Use the echo provider instead of the Anthropic API")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "Run without the live TUI")
	runCmd.Flags().StringVar(&runSignalsDir, "signals-dir", ".stepline", "Directory watched for stop signals")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	plan, err := planfile.Load(args[0])
	if err != nil {
		return err
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	policyTimeout := runTimeout
	if policyTimeout == 0 {
		policyTimeout = cfg.Bridge.Timeout
	}

	opts := []executor.Option{
		executor.WithTaskTimeout(policyTimeout),
	}
	if runContinueOnError {
		opts = append(opts, executor.WithContinueOnError())
	}

	// Stop-signal watcher, checked between tasks.
	watcher, err := control.NewWatcher(runSignalsDir)
	if err != nil {
		return fmt.Errorf("create signal watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Clear(); err != nil {
		return fmt.Errorf("clear stale stop signal: %w", err)
	}
	opts = append(opts, executor.WithGate(watcher))

	// Run transcript, best-effort.
	var recorder *transcript.Recorder
	if !cfg.Transcript.Disabled {
		path := cfg.Transcript.Path
		if path == "" {
			path = transcript.DefaultPath()
		}
		store, err := transcript.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: transcript disabled: %v\n", err)
		} else {
			defer store.Close()
			recorder, err = transcript.NewRecorder(store, planName(plan, args[0]), !runContinueOnError)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: transcript disabled: %v\n", err)
			} else {
				opts = append(opts, executor.WithObserver(recorder))
			}
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var output []string
	var runErr error
	if runHeadless {
		output, runErr = executor.New(opts...).Execute(ctx, plan, registry)
	} else {
		output, runErr = runWithTUI(ctx, plan, registry, opts)
	}

	if recorder != nil {
		status := "done"
		if runErr != nil {
			status = "error"
		}
		recorder.Finish(status)
	}

	if runErr != nil {
		return runErr
	}
	for _, line := range output {
		fmt.Println(line)
	}
	return nil
}

// runWithTUI executes the plan underneath a live task view. Quitting the
// view early cancels the run; the executor goroutine is always joined before
// its results are read, so an aborted run surfaces as an error instead of
// racing the view teardown.
func runWithTUI(ctx context.Context, plan *models.Plan, registry capability.Registry, opts []executor.Option, teaOpts ...tea.ProgramOption) ([]string, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	teaOpts = append([]tea.ProgramOption{tea.WithContext(runCtx)}, teaOpts...)
	program := tea.NewProgram(tui.NewModel(plan), teaOpts...)
	observer := tui.NewObserver(program)
	opts = append(opts, executor.WithObserver(observer))

	var output []string
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		output, runErr = executor.New(opts...).Execute(runCtx, plan, registry)
		observer.Finish(runErr)
	}()

	_, uiErr := program.Run()
	cancel()
	<-done

	if runErr != nil {
		return output, runErr
	}
	if uiErr != nil {
		return output, uiErr
	}
	return output, nil
}

// buildRegistry assembles the capability registry from configuration.
func buildRegistry(cfg *config.Config) (capability.Registry, error) {
	if runOffline {
		return llm.NewOfflineRegistry(), nil
	}

	client, err := llm.NewClient(llm.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, err
	}

	policy := retry.Policy{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.Retry.BaseDelay,
		MaxDelay:   cfg.Retry.MaxDelay,
	}
	return llm.NewRegistry(client, policy, cfg.Fanout.MaxConcurrent), nil
}

func planName(plan *models.Plan, path string) string {
	if plan.Name != "" {
		return plan.Name
	}
	return path
}
