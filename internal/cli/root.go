package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/biopaper/paperpush/internal/cli/client"
	"github.com/biopaper/paperpush/internal/cli/commands"
	"github.com/biopaper/paperpush/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the paperpush command tree around app
func NewRootCmd(app *commands.App) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "paperpush",
		Short: "paperpush - Bio paper push from the terminal",
		Long: `paperpush CLI - Drive a Bio Paper Push server from the terminal.

Trigger and inspect push runs, browse scored papers, edit the server
configuration, read logs and manage users.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := os.Getenv("PAPERPUSH_LOG_LEVEL")
			if verbose {
				level = "debug"
			}
			if level == "" {
				level = "warn"
			}
			logger.InitWithWriter(app.ErrOut, level, "console")
			app.Log = logger.GetLogger()

			return app.Authorize(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.ServerFlag, "server", "", "Server URL (or set PAPERPUSH_SERVER)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")

	rootCmd.SetOut(app.Out)
	rootCmd.SetErr(app.ErrOut)

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(app.Out, "paperpush version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd(app))
	rootCmd.AddCommand(commands.NewLogoutCmd(app))
	rootCmd.AddCommand(commands.NewRegisterCmd(app))
	rootCmd.AddCommand(commands.NewWhoamiCmd(app))
	rootCmd.AddCommand(commands.NewPasswdCmd(app))
	rootCmd.AddCommand(commands.NewRunCmd(app))
	rootCmd.AddCommand(commands.NewRunsCmd(app))
	rootCmd.AddCommand(commands.NewTestSourcesCmd(app))
	rootCmd.AddCommand(commands.NewPapersCmd(app))
	rootCmd.AddCommand(commands.NewConfigCmd(app))
	rootCmd.AddCommand(commands.NewLogsCmd(app))
	rootCmd.AddCommand(commands.NewAdminCmd(app))
	rootCmd.AddCommand(commands.NewDashCmd(app))
	rootCmd.AddCommand(commands.NewUseCmd(app))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	app := commands.NewApp()
	cmd, err := NewRootCmd(app).ExecuteC()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if client.IsUnauthorized(err) && cmd.Name() != "login" {
			fmt.Fprintln(os.Stderr, "Your session has expired. Run 'paperpush login' again.")
		}
		return err
	}
	return nil
}
