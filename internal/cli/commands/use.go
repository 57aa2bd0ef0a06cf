package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biopaper/paperpush/internal/cli/serverselect"
	"github.com/biopaper/paperpush/internal/cli/userconfig"
	"github.com/biopaper/paperpush/internal/session"
)

// NewUseCmd creates the use command
func NewUseCmd(app *App) *cobra.Command {
	var sessionStore string

	cmd := &cobra.Command{
		Use:   "use [server-url]",
		Short: "Select the server to use for commands",
		Long: `Select the server to use for commands.

If no URL is provided, an interactive prompt lists the servers used before.

Examples:
  $ paperpush use                              # Interactive selection
  $ paperpush use http://localhost:8000        # Local backend
  $ paperpush use https://papers.example.org --session-store keyring`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var server string
			if len(args) > 0 {
				server = args[0]
			}
			return runUse(app, server, sessionStore)
		},
	}

	cmd.Flags().StringVar(&sessionStore, "session-store", "", "Where to keep the session: file or keyring")

	return cmd
}

func runUse(app *App, server, sessionStore string) error {
	cfg, err := userconfig.Load()
	if err != nil {
		return err
	}

	if server == "" {
		server, err = serverselect.PromptServerSelection(cfg)
		if err != nil {
			return err
		}
	}

	server, err = userconfig.NormalizeServer(server)
	if err != nil {
		return err
	}

	switch sessionStore {
	case "":
	case userconfig.StoreFile, userconfig.StoreKeyring:
		cfg.SessionStore = sessionStore
	default:
		return fmt.Errorf("invalid --session-store %q (want %s or %s)", sessionStore, userconfig.StoreFile, userconfig.StoreKeyring)
	}

	switched := cfg.Server != "" && cfg.Server != server
	cfg.Remember(server)

	if err := userconfig.Save(cfg); err != nil {
		return fmt.Errorf("failed to save selected server: %w", err)
	}

	fmt.Fprintf(app.Out, "Selected server: %s\n", server)
	if switched {
		// Sessions are kept per server; switching back needs no new login
		if store, err := app.OpenStore(server); err == nil && !session.New(store).HasToken() {
			fmt.Fprintln(app.Out, "Run 'paperpush login' to sign in to this server.")
		}
	}
	return nil
}
