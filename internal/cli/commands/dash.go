package commands

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/biopaper/paperpush/internal/routes"
)

// NewDashCmd creates the dash command
func NewDashCmd(app *App) *cobra.Command {
	var consoleURL string

	cmd := &cobra.Command{
		Use:   "dash [page]",
		Short: "Open the web console in browser",
		Long: `Open the web console in browser.

The page is a console route name or path (dashboard, papers, config, logs, admin).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page := ""
			if len(args) > 0 {
				page = args[0]
			}
			return runDash(app, consoleURL, page)
		},
	}

	cmd.Flags().StringVar(&consoleURL, "console", "", "Console URL (defaults to the server URL)")

	return cmd
}

func runDash(app *App, consoleURL, page string) error {
	path, err := resolvePage(page)
	if err != nil {
		return err
	}

	if consoleURL == "" {
		if consoleURL, err = app.Server(); err != nil {
			return err
		}
	}
	dashboardURL := strings.TrimRight(consoleURL, "/") + path

	fmt.Fprintf(app.Out, "Opening console...\n")
	fmt.Fprintf(app.Out, "URL: %s\n", dashboardURL)

	if err := app.OpenBrowser(dashboardURL); err != nil {
		return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, dashboardURL)
	}

	return nil
}

// resolvePage maps a route name or path to a console path
func resolvePage(page string) (string, error) {
	if page == "" {
		return routes.PathDashboard, nil
	}
	if r, ok := routes.Default.Lookup("/" + strings.TrimPrefix(page, "/")); ok {
		return r.Path, nil
	}
	for _, r := range routes.Default {
		if strings.EqualFold(r.Name, page) {
			return r.Path, nil
		}
	}
	return "", fmt.Errorf("unknown console page %q", page)
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
