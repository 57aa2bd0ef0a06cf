package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biopaper/paperpush/internal/cli/client"
	"github.com/biopaper/paperpush/internal/routes"
)

// NewRunsCmd creates the runs command group
func NewRunsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect past push runs",
	}

	cmd.AddCommand(newRunsListCmd(app))
	cmd.AddCommand(newRunsScoresCmd(app))

	return cmd
}

func newRunsListCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:         "ls",
		Aliases:     []string{"list"},
		Short:       "List recent runs",
		Annotations: route(routes.PathDashboard),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsList(cmd.Context(), app, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", client.DefaultRunLimit, "Number of runs to show")

	return cmd
}

func runRunsList(ctx context.Context, app *App, limit int) error {
	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	if len(resp.Data) == 0 {
		fmt.Fprintln(app.Out, "No runs found.")
		fmt.Fprintln(app.Out, "\nStart one with: paperpush run")
		return nil
	}

	w := newTable(app.Out, "RUN ID", "STATUS", "STARTED", "WINDOW", "PAPERS", "UNSEEN", "TOP K")
	for _, run := range resp.Data {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dd\t%d\t%d\t%d\n",
			run.RunID,
			run.Status,
			run.StartTime,
			run.WindowDays,
			run.TotalPapers,
			run.UnseenPapers,
			run.TopK,
		)
	}
	return w.Flush()
}

func newRunsScoresCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "scores <run-id>",
		Short:       "Show the scored papers of a run",
		Args:        cobra.ExactArgs(1),
		Annotations: route(routes.PathDashboard),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsScores(cmd.Context(), app, args[0])
		},
	}
}

func runRunsScores(ctx context.Context, app *App, runID string) error {
	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.GetRunScores(ctx, runID)
	if err != nil {
		return err
	}

	if len(resp.Data) == 0 {
		fmt.Fprintf(app.Out, "Run %s has no scored papers.\n", runID)
		return nil
	}

	w := newTable(app.Out, "SCORE", "SOURCE", "DATE", "TITLE")
	for _, paper := range resp.Data {
		fmt.Fprintf(w, "%.1f\t%s\t%s\t%s\n", paper.Score, paper.Source, paper.Date, truncate(paper.Title, 80))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	// Explain the top paper
	top := resp.Data[0]
	if len(top.Reasons) > 0 {
		fmt.Fprintf(app.Out, "\nWhy %q scored %.1f:\n", truncate(top.Title, 60), top.Score)
		for _, reason := range top.Reasons {
			fmt.Fprintf(app.Out, "  %+.1f  %s: %s\n", reason.Points, reason.Category, reason.Description)
		}
	}
	return nil
}

// NewRunCmd creates the run command, which triggers a push run
func NewRunCmd(app *App) *cobra.Command {
	var windowDays, topK int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Trigger a push run on the server",
		Long: `Trigger a push run on the server.

The run executes in the background; follow it with 'paperpush run status'.
Window and top-k default to the server configuration when not given.`,
		Annotations: route(routes.PathDashboard),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := client.TriggerRunParams{}
			if cmd.Flags().Changed("window-days") {
				params.WindowDays = &windowDays
			}
			if cmd.Flags().Changed("top-k") {
				params.TopK = &topK
			}
			return runTrigger(cmd.Context(), app, params)
		},
	}

	cmd.Flags().IntVar(&windowDays, "window-days", 0, "Days of papers to consider")
	cmd.Flags().IntVar(&topK, "top-k", 0, "Number of papers to push")

	cmd.AddCommand(newRunStatusCmd(app))
	cmd.AddCommand(newRunScheduleCmd(app))

	return cmd
}

func runTrigger(ctx context.Context, app *App, params client.TriggerRunParams) error {
	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.TriggerRun(ctx, params)
	if err != nil {
		return err
	}

	if resp.Running || resp.Status == "error" {
		return fmt.Errorf("run not started: %s", orDash(resp.Message))
	}

	fmt.Fprintf(app.Out, "✓ %s\n", orDash(resp.Message))
	if resp.RunID != "" {
		fmt.Fprintf(app.Out, "  Run ID: %s\n", resp.RunID)
	}
	return nil
}

func newRunStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "status",
		Short:       "Show whether a run is in progress",
		Annotations: route(routes.PathDashboard),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunStatus(cmd.Context(), app)
		},
	}
}

func runRunStatus(ctx context.Context, app *App) error {
	api, err := app.Client()
	if err != nil {
		return err
	}

	status, err := api.GetRunStatus(ctx)
	if err != nil {
		return err
	}

	if status.Error != "" {
		return fmt.Errorf("failed to read run status: %s", status.Error)
	}

	if !status.Running {
		fmt.Fprintln(app.Out, "No run in progress.")
		return nil
	}

	fmt.Fprintln(app.Out, "Run in progress")
	fmt.Fprintf(app.Out, "  Run ID:  %s\n", orDash(status.RunID))
	fmt.Fprintf(app.Out, "  Started: %s\n", orDash(status.StartTime))
	return nil
}

// NewTestSourcesCmd creates the test-sources command
func NewTestSourcesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "test-sources",
		Short:       "Probe every configured paper source",
		Annotations: route(routes.PathConfig),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.Client()
			if err != nil {
				return err
			}

			resp, err := api.TestSources(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "✓ %s\n", orDash(resp.Message))
			return nil
		},
	}
}
