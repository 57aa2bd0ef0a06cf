package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biopaper/paperpush/internal/cli/client"
	"github.com/biopaper/paperpush/internal/routes"
)

// NewPapersCmd creates the papers command group
func NewPapersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "papers",
		Short: "Browse and manage stored papers",
	}

	cmd.AddCommand(newPapersListCmd(app))
	cmd.AddCommand(newPapersShowCmd(app))
	cmd.AddCommand(newPapersDeleteCmd(app))

	return cmd
}

func newPapersListCmd(app *App) *cobra.Command {
	var query client.PaperQuery
	var minScore float64

	cmd := &cobra.Command{
		Use:         "ls",
		Aliases:     []string{"list"},
		Short:       "List stored papers",
		Annotations: route(routes.PathPapers),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("min-score") {
				query.MinScore = &minScore
			}
			return runPapersList(cmd.Context(), app, query)
		},
	}

	cmd.Flags().IntVar(&query.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&query.PageSize, "page-size", 20, "Papers per page (max 100)")
	cmd.Flags().StringVar(&query.Search, "search", "", "Search in title and abstract")
	cmd.Flags().StringVar(&query.Source, "source", "", "Only papers from this source")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Only papers scoring at least this much")

	return cmd
}

func runPapersList(ctx context.Context, app *App, query client.PaperQuery) error {
	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.ListPapers(ctx, query)
	if err != nil {
		return err
	}

	page := resp.Data
	if len(page.Papers) == 0 {
		fmt.Fprintln(app.Out, "No papers found.")
		return nil
	}

	w := newTable(app.Out, "ID", "SCORE", "SOURCE", "DATE", "TITLE")
	for _, paper := range page.Papers {
		fmt.Fprintf(w, "%d\t%.1f\t%s\t%s\t%s\n",
			paper.ID,
			paper.Score,
			paper.Source,
			paper.Date,
			truncate(paper.Title, 70),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	pages := 1
	if page.PageSize > 0 {
		pages = (page.Total + page.PageSize - 1) / page.PageSize
	}
	fmt.Fprintf(app.Out, "\nPage %d of %d (%d papers)\n", page.Page, pages, page.Total)
	return nil
}

func newPapersShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "show <paper-id>",
		Short:       "Show a paper",
		Args:        cobra.ExactArgs(1),
		Annotations: route(routes.PathPapers),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPapersShow(cmd.Context(), app, args[0])
		},
	}
}

func runPapersShow(ctx context.Context, app *App, id string) error {
	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.GetPaper(ctx, id)
	if err != nil {
		return err
	}

	p := resp.Data
	fmt.Fprintf(app.Out, "%s\n\n", p.Title)
	fmt.Fprintf(app.Out, "  Source:     %s\n", orDash(p.Source))
	fmt.Fprintf(app.Out, "  Date:       %s\n", orDash(p.Date))
	fmt.Fprintf(app.Out, "  Score:      %.1f\n", p.Score)
	fmt.Fprintf(app.Out, "  DOI:        %s\n", orDash(p.DOI))
	fmt.Fprintf(app.Out, "  Link:       %s\n", orDash(p.Link))
	fmt.Fprintf(app.Out, "  Citations:  %d (%d influential)\n", p.CitationCount, p.InfluentialCount)
	if p.Abstract != "" {
		fmt.Fprintf(app.Out, "\n%s\n", p.Abstract)
	}
	return nil
}

func newPapersDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:         "rm <paper-id>",
		Aliases:     []string{"delete"},
		Short:       "Delete a paper with its scores and push records",
		Args:        cobra.ExactArgs(1),
		Annotations: route(routes.PathPapers),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPapersDelete(cmd.Context(), app, args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}

func runPapersDelete(ctx context.Context, app *App, id string, yes bool) error {
	if !yes {
		ok, err := app.Confirm(fmt.Sprintf("Delete paper %s", id))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(app.Out, "Aborted.")
			return nil
		}
	}

	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.DeletePaper(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "✓ %s\n", orDash(resp.Message))
	return nil
}
