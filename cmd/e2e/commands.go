package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kuitang/builder-e2e/internal/artifacts"
	"github.com/kuitang/builder-e2e/internal/browser"
	"github.com/kuitang/builder-e2e/internal/errs"
	"github.com/kuitang/builder-e2e/internal/obs"
	"github.com/kuitang/builder-e2e/internal/pages"
	"github.com/kuitang/builder-e2e/internal/scenario"
	"github.com/kuitang/builder-e2e/internal/session"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Log in once and write the session state file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := obs.WithRunID(cmd.Context(), obs.NewRunID())
			launch := session.PlaywrightLauncher(browser.OptionsFromConfig(cfg))
			if err := session.Bootstrap(ctx, session.OptionsFromConfig(cfg), launch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session written to %s\n", cfg.StorageStatePath)
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var (
		caseIDs   []string
		skipSetup bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run scenarios against the configured application",
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := selectCases(scenario.All(), caseIDs)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			runID := obs.NewRunID()
			ctx := obs.WithRunID(cmd.Context(), runID)
			opts := browser.OptionsFromConfig(cfg)

			if !skipSetup {
				if err := session.Bootstrap(ctx, session.OptionsFromConfig(cfg), session.PlaywrightLauncher(opts)); err != nil {
					return err
				}
			}

			d, err := browser.Start(ctx, opts)
			if err != nil {
				return err
			}
			defer d.Close()

			runner := scenario.NewRunner(cfg, d)
			out := cmd.OutOrStdout()
			failed := 0
			for _, c := range cases {
				err := runner.Run(ctx, c)
				switch {
				case errors.Is(err, scenario.ErrSkipped):
					fmt.Fprintf(out, "SKIP  %s (%s)\n", c.Title(), c.Skip)
				case err != nil:
					failed++
					fmt.Fprintf(out, "FAIL  %s\n      %v\n", c.Title(), err)
				default:
					fmt.Fprintf(out, "PASS  %s\n", c.Title())
				}
			}
			fmt.Fprintf(out, "run %s: %d cases, %d failed\n", runID, len(cases), failed)
			if failed > 0 {
				return errs.New(errs.Scenario, fmt.Sprintf("%d of %d cases failed", failed, len(cases)))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&caseIDs, "case", nil, "Run only these case IDs (repeatable)")
	cmd.Flags().BoolVar(&skipSetup, "skip-setup", false, "Reuse the existing session state instead of logging in")
	return cmd
}

// selectCases filters all by ids, keeping suite order. No ids selects all.
func selectCases(all []scenario.Case, ids []string) ([]scenario.Case, error) {
	if len(ids) == 0 {
		return all, nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[strings.TrimSpace(id)] = true
	}
	var out []scenario.Case
	for _, c := range all {
		if want[c.ID] {
			out = append(out, c)
			delete(want, c.ID)
		}
	}
	if len(want) > 0 {
		unknown := make([]string, 0, len(want))
		for id := range want {
			unknown = append(unknown, id)
		}
		return nil, fmt.Errorf("unknown case ID(s): %s", strings.Join(unknown, ", "))
	}
	return out, nil
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the model picker fixture table",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCONTEXT\tTIER")
			for _, m := range pages.Models() {
				tier := "free"
				if m.RequiresPro {
					tier = "pro"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", int(m.ID), m.Name, m.Context, tier)
			}
			return w.Flush()
		},
	}
}

func newCasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cases",
		Short: "List every scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tARTIFACT\tSKIP")
			for _, c := range scenario.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Artifact, c.Skip)
			}
			return w.Flush()
		},
	}
}

func newArtifactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Manage run screenshots",
	}
	cmd.AddCommand(newArtifactsUploadCmd())
	return cmd
}

func newArtifactsUploadCmd() *cobra.Command {
	var runID string
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload every screenshot in the results directory to S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if runID == "" {
				runID = obs.NewRunID()
			}
			up, err := artifacts.NewUploaderFromConfig(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			keys, err := up.Upload(cmd.Context(), cfg.ResultsDir, runID)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "Key segment grouping this run's uploads (default: new UUID)")
	return cmd
}
