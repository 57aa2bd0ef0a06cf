package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/biopaper/paperpush/internal/cli/client"
	"github.com/biopaper/paperpush/internal/routes"
)

// NewLogsCmd creates the logs command
func NewLogsCmd(app *App) *cobra.Command {
	var query client.LogQuery

	cmd := &cobra.Command{
		Use:         "logs",
		Short:       "Show backend logs",
		Annotations: route(routes.PathLogs),
		RunE: func(cmd *cobra.Command, args []string) error {
			query.Level = strings.ToUpper(query.Level)
			return runLogs(cmd.Context(), app, query)
		},
	}

	cmd.Flags().StringVar(&query.Level, "level", "", "Only this level (debug, info, warning, error, critical)")
	cmd.Flags().StringVar(&query.Search, "search", "", "Only lines containing this text")
	cmd.Flags().IntVar(&query.Limit, "limit", 100, "Maximum lines (1-1000)")

	cmd.AddCommand(newLogFilesCmd(app))

	return cmd
}

func newLogFilesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "files",
		Short:       "List the backend's log files",
		Args:        cobra.NoArgs,
		Annotations: route(routes.PathLogs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogFiles(cmd.Context(), app)
		},
	}
}

func runLogFiles(ctx context.Context, app *App) error {
	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.ListLogFiles(ctx)
	if err != nil {
		return err
	}

	if len(resp.Data) == 0 {
		fmt.Fprintln(app.Out, "No log files found.")
		return nil
	}

	w := newTable(app.Out, "NAME", "SIZE", "MODIFIED")
	for _, f := range resp.Data {
		fmt.Fprintf(w, "%s\t%d\t%s\n", f.Name, f.Size, f.ModifiedTime().Format(time.DateTime))
	}
	return w.Flush()
}

func runLogs(ctx context.Context, app *App, query client.LogQuery) error {
	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.GetLogs(ctx, query)
	if err != nil {
		return err
	}

	if len(resp.Data) == 0 {
		fmt.Fprintln(app.Out, "No log entries found.")
		return nil
	}

	for _, entry := range resp.Data {
		fmt.Fprintf(app.Out, "%s  %-8s %s\n", entry.Time, entry.Level, entry.Message)
	}
	return nil
}
