package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/biopaper/paperpush/internal/cli/client"
	"github.com/biopaper/paperpush/internal/cli/userconfig"
	"github.com/biopaper/paperpush/internal/routes"
	"github.com/biopaper/paperpush/internal/session"
)

// annotationRoute names the console route a command stands for.
// Commands without it are not checked by the route guard.
const annotationRoute = "route"

var (
	ErrNotLoggedIn     = errors.New("not logged in, run 'paperpush login'")
	ErrNoPermission    = errors.New("admin privileges required")
	ErrAlreadyLoggedIn = errors.New("already logged in, run 'paperpush logout' first")
)

// App holds what commands share: the server, the session store, the
// prompts and the output streams. Tests replace the I/O and the store.
type App struct {
	Out    io.Writer
	ErrOut io.Writer
	Log    zerolog.Logger

	// ServerFlag is the --server value
	ServerFlag string

	OpenStore    func(server string) (session.Store, error)
	Confirm      func(label string) (bool, error)
	Prompt       func(label string) (string, error)
	ReadPassword func(label string) (string, error)
	Select       func(label string, items []string) (string, error)
	OpenBrowser  func(url string) error

	ClientOptions []client.Option

	api *client.Client
}

// NewApp returns an App wired to the terminal and the user config
func NewApp() *App {
	return &App{
		Out:          os.Stdout,
		ErrOut:       os.Stderr,
		Log:          zerolog.Nop(),
		OpenStore:    openConfiguredStore,
		Confirm:      confirmPrompt,
		Prompt:       linePrompt,
		ReadPassword: readPassword,
		Select:       selectPrompt,
		OpenBrowser:  openBrowser,
	}
}

// Server returns the normalized backend URL commands talk to
func (a *App) Server() (string, error) {
	if a.ServerFlag != "" {
		return userconfig.NormalizeServer(a.ServerFlag)
	}

	cfg, err := userconfig.Load()
	if err != nil {
		return "", err
	}
	return userconfig.ResolveServer("", cfg)
}

// Client returns the API client, creating it on first use
func (a *App) Client() (*client.Client, error) {
	if a.api != nil {
		return a.api, nil
	}

	server, err := a.Server()
	if err != nil {
		return nil, err
	}

	store, err := a.OpenStore(server)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	opts := append([]client.Option{client.WithLogger(a.Log)}, a.ClientOptions...)
	a.api = client.New(server, store, opts...)
	return a.api, nil
}

// Authorize runs the route guard for the command's route
func (a *App) Authorize(cmd *cobra.Command) error {
	path, ok := cmd.Annotations[annotationRoute]
	if !ok {
		return nil
	}

	api, err := a.Client()
	if err != nil {
		return err
	}

	decision := routes.NewGuard(routes.Default, api.Session(), a.Log).Check(path)
	if decision.Allow {
		return nil
	}

	a.Log.Debug().
		Str("command", cmd.CommandPath()).
		Str("redirect", decision.Redirect.String()).
		Msg("Command refused by route guard")

	switch {
	case decision.Redirect.Path == routes.PathLogin:
		return ErrNotLoggedIn
	case decision.Redirect.Query.Get("error") == routes.ErrorNoPermission:
		return ErrNoPermission
	default:
		return ErrAlreadyLoggedIn
	}
}

func route(path string) map[string]string {
	return map[string]string{annotationRoute: path}
}

func openConfiguredStore(server string) (session.Store, error) {
	cfg, err := userconfig.Load()
	if err != nil {
		return nil, err
	}
	return cfg.OpenStore(server)
}

func confirmPrompt(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func linePrompt(label string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("%s is required in non-interactive mode", label)
	}

	prompt := promptui.Prompt{Label: label}
	return prompt.Run()
}

func readPassword(label string) (string, error) {
	// Check if stdin is a terminal (not piped)
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("%s is required in non-interactive mode", label)
	}

	fmt.Fprintf(os.Stderr, "%s: ", label)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

func selectPrompt(label string, items []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
	}

	_, value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return value, nil
}
