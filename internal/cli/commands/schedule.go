package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/biopaper/paperpush/internal/cli/client"
	"github.com/biopaper/paperpush/internal/routes"
)

// DefaultSchedule is daily at 9 AM local time
const DefaultSchedule = "0 9 * * *"

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func newRunScheduleCmd(app *App) *cobra.Command {
	var spec string
	var windowDays, topK int

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Trigger runs on a cron schedule until interrupted",
		Long: `Trigger runs on a cron schedule until interrupted.

The expression has five fields (minute hour day-of-month month day-of-week)
or is a descriptor such as @hourly or @every 6h. A tick is skipped while a
run is still in progress on the server.

Examples:
  $ paperpush run schedule                       # Daily at 9 AM
  $ paperpush run schedule --cron "0 9,18 * * *" # 9 AM and 6 PM
  $ paperpush run schedule --cron "0 9 * * 1" --window-days 7`,
		Annotations: route(routes.PathDashboard),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := client.TriggerRunParams{}
			if cmd.Flags().Changed("window-days") {
				params.WindowDays = &windowDays
			}
			if cmd.Flags().Changed("top-k") {
				params.TopK = &topK
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSchedule(ctx, app, spec, params)
		},
	}

	cmd.Flags().StringVar(&spec, "cron", DefaultSchedule, "Cron expression")
	cmd.Flags().IntVar(&windowDays, "window-days", 0, "Days of papers to consider")
	cmd.Flags().IntVar(&topK, "top-k", 0, "Number of papers to push")

	return cmd
}

type runScheduler struct {
	app    *App
	api    *client.Client
	params client.TriggerRunParams
}

func runSchedule(ctx context.Context, app *App, spec string, params client.TriggerRunParams) error {
	schedule, err := cronParser.Parse(spec)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	api, err := app.Client()
	if err != nil {
		return err
	}

	s := &runScheduler{app: app, api: api, params: params}

	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	c.Schedule(schedule, cron.FuncJob(func() { s.tick(ctx) }))

	fmt.Fprintf(app.Out, "Scheduling runs on %q, next at %s. Press Ctrl+C to stop.\n",
		spec, schedule.Next(time.Now()).Format(time.RFC3339))

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	fmt.Fprintln(app.Out, "Scheduler stopped.")
	return nil
}

// tick triggers one run unless the server is still busy. It reports whether a run was started.
func (s *runScheduler) tick(ctx context.Context) bool {
	now := time.Now().Format(time.RFC3339)

	status, err := s.api.GetRunStatus(ctx)
	if err != nil {
		s.app.Log.Error().Err(err).Msg("Failed to read run status")
		fmt.Fprintf(s.app.ErrOut, "%s  skipped: %v\n", now, err)
		return false
	}
	if status.Running {
		s.app.Log.Info().Str("run_id", status.RunID).Msg("Run still in progress, skipping tick")
		fmt.Fprintf(s.app.Out, "%s  skipped: run %s still in progress\n", now, orDash(status.RunID))
		return false
	}

	resp, err := s.api.TriggerRun(ctx, s.params)
	if err != nil {
		s.app.Log.Error().Err(err).Msg("Failed to trigger run")
		fmt.Fprintf(s.app.ErrOut, "%s  failed: %v\n", now, err)
		return false
	}
	if resp.Running || resp.Status == "error" {
		fmt.Fprintf(s.app.Out, "%s  skipped: %s\n", now, orDash(resp.Message))
		return false
	}

	fmt.Fprintf(s.app.Out, "%s  started: %s\n", now, orDash(resp.Message))
	return true
}
