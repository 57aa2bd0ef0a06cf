package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/biopaper/paperpush/internal/auth"
	"github.com/biopaper/paperpush/internal/cli/client"
	"github.com/biopaper/paperpush/internal/routes"
	"github.com/biopaper/paperpush/internal/session"
)

// NewLoginCmd creates the login command
func NewLoginCmd(app *App) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Authenticate with a paper push server",
		Annotations: route(routes.PathLogin),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), app, username, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (or set PAPERPUSH_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set PAPERPUSH_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, app *App, username, password string) error {
	// Check for environment variables (useful for CI/CD)
	if username == "" {
		username = os.Getenv("PAPERPUSH_USERNAME")
	}
	if password == "" {
		password = os.Getenv("PAPERPUSH_PASSWORD")
	}

	var err error
	if username == "" {
		if username, err = app.Prompt("Username"); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = app.ReadPassword("Password"); err != nil {
			return err
		}
	}

	api, err := app.Client()
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "Logging in to %s...\n", api.BaseURL())

	loginResp, err := api.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintln(app.Out, "✓ Login successful!")
	if loginResp.User != nil {
		fmt.Fprintf(app.Out, "  User: %s\n", orDash(loginResp.User.Username))
		if loginResp.User.IsAdmin() {
			fmt.Fprintln(app.Out, "  Role: Admin")
		}
	}

	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(app)
		},
	}
}

func runLogout(app *App) error {
	api, err := app.Client()
	if err != nil {
		return err
	}

	if err := api.Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	fmt.Fprintln(app.Out, "✓ Logged out")
	return nil
}

// NewRegisterCmd creates the register command
func NewRegisterCmd(app *App) *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd.Context(), app, req)
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "Username")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (will prompt if not provided)")

	return cmd
}

func runRegister(ctx context.Context, app *App, req client.RegisterRequest) error {
	var err error
	if req.Username == "" {
		if req.Username, err = app.Prompt("Username"); err != nil {
			return err
		}
	}
	if req.Password == "" {
		if req.Password, err = app.ReadPassword("Password"); err != nil {
			return err
		}
	}

	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ %s\n", orDash(resp.Message))
	fmt.Fprintln(app.Out, "\nLog in with: paperpush login --username", req.Username)
	return nil
}

// NewPasswdCmd creates the passwd command
func NewPasswdCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "passwd",
		Short:       "Change your password",
		Annotations: route(routes.PathDashboard),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasswd(cmd.Context(), app)
		},
	}
}

func runPasswd(ctx context.Context, app *App) error {
	oldPassword, err := app.ReadPassword("Current password")
	if err != nil {
		return err
	}
	newPassword, err := app.ReadPassword("New password")
	if err != nil {
		return err
	}
	confirm, err := app.ReadPassword("Repeat new password")
	if err != nil {
		return err
	}
	if newPassword != confirm {
		return errors.New("new passwords do not match")
	}

	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.ChangePassword(ctx, oldPassword, newPassword)
	if err != nil {
		return fmt.Errorf("password change failed: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ %s\n", orDash(resp.Message))
	return nil
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(app *App) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:         "whoami",
		Short:       "Show the logged in user",
		Annotations: route(routes.PathDashboard),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd.Context(), app, remote, time.Now())
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Ask the server instead of reading the cached user")

	return cmd
}

func runWhoami(ctx context.Context, app *App, remote bool, now time.Time) error {
	api, err := app.Client()
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "Server:   %s\n", api.BaseURL())

	if remote {
		me, err := api.GetCurrentUser(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.Out, "User:     %s\n", me.User.Username)
		fmt.Fprintf(app.Out, "Email:    %s\n", orDash(me.User.Email))
		fmt.Fprintf(app.Out, "Role:     %s\n", me.User.Role)
		fmt.Fprintf(app.Out, "Active:   %t\n", me.User.IsActive)
		return nil
	}

	user, err := api.Session().User()
	switch {
	case err == nil:
		fmt.Fprintf(app.Out, "User:     %s\n", orDash(user.Username))
		fmt.Fprintf(app.Out, "Role:     %s\n", orDash(user.Role))
	case errors.Is(err, session.ErrNotFound):
		fmt.Fprintln(app.Out, "User:     (not cached)")
	default:
		return err
	}

	claims, err := auth.ParseUnverified(api.Session().Token())
	if err != nil {
		// Opaque tokens are fine; the server is the authority
		app.Log.Debug().Err(err).Msg("Token is not a readable JWT")
		return nil
	}

	fmt.Fprintf(app.Out, "Subject:  %s\n", orDash(claims.Username()))
	if exp := claims.ExpiresAtTime(); !exp.IsZero() {
		state := "valid"
		if claims.Expired(now) {
			state = "expired"
		}
		fmt.Fprintf(app.Out, "Expires:  %s (%s)\n", exp.Local().Format(time.RFC3339), state)
	}

	return nil
}
