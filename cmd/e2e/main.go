// Command e2e drives the builder end-to-end suite outside `go test`: it
// performs the one-time login, lists and runs scenarios, and uploads
// screenshots.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kuitang/builder-e2e/internal/config"
	"github.com/kuitang/builder-e2e/internal/obs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// global flags
var (
	storageStatePath string
	resultsDir       string
)

func newRootCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "e2e",
		Short: "End-to-end UI suite for the builder web application",
		Long: `e2e runs the builder UI scenarios through Playwright.

Configuration comes from the environment (or a .env file):
  BASE_URL, USER_EMAIL, USER_PASSWORD   required
  HEADLESS, BROWSER, *_TIMEOUT          optional tuning
  ARTIFACTS_BUCKET, AWS_*               screenshot upload

Examples:
  # Log in once and store the session
  e2e setup

  # Run every scenario, or a subset
  e2e run
  e2e run --case TC-004 --case TC-005

  # Upload screenshots from the last run
  e2e artifacts upload --run-id nightly-42`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	cmd.PersistentFlags().StringVar(&storageStatePath, "storage-state", "", "Session state file (env: STORAGE_STATE_PATH)")
	cmd.PersistentFlags().StringVar(&resultsDir, "results-dir", "", "Screenshot directory (env: RESULTS_DIR)")

	cmd.AddCommand(newSetupCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newModelsCmd())
	cmd.AddCommand(newCasesCmd())
	cmd.AddCommand(newArtifactsCmd())

	return cmd
}

// loadConfig loads the environment and applies flag overrides.
func loadConfig() (*config.Config, error) {
	obs.Init()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if storageStatePath != "" {
		cfg.StorageStatePath = storageStatePath
	}
	if resultsDir != "" {
		cfg.ResultsDir = resultsDir
	}
	return cfg, nil
}
