package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/biopaper/paperpush/internal/cli/client"
	"github.com/biopaper/paperpush/internal/routes"
	"github.com/biopaper/paperpush/internal/session"
)

var userRoles = []string{session.RoleUser, session.RoleAdmin}

// NewAdminCmd creates the admin command group
func NewAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer the server (admin only)",
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	users.AddCommand(newUsersListCmd(app))
	users.AddCommand(newUsersCreateCmd(app))
	users.AddCommand(newUsersUpdateCmd(app))
	users.AddCommand(newUsersResetPasswordCmd(app))

	cmd.AddCommand(users)

	return cmd
}

func newUsersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "ls",
		Aliases:     []string{"list"},
		Short:       "List user accounts",
		Annotations: route(routes.PathAdmin),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersList(cmd.Context(), app)
		},
	}
}

func runUsersList(ctx context.Context, app *App) error {
	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.ListUsers(ctx)
	if err != nil {
		return err
	}

	w := newTable(app.Out, "ID", "USERNAME", "EMAIL", "ROLE", "ACTIVE", "LAST LOGIN")
	for _, u := range resp.Data {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\t%s\n",
			u.ID,
			u.Username,
			orDash(u.Email),
			u.Role,
			u.IsActive,
			orDash(u.LastLogin),
		)
	}
	return w.Flush()
}

func newUsersCreateCmd(app *App) *cobra.Command {
	var req client.CreateUserRequest

	cmd := &cobra.Command{
		Use:         "create <username>",
		Short:       "Create a user account",
		Args:        cobra.ExactArgs(1),
		Annotations: route(routes.PathAdmin),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Username = args[0]
			return runUsersCreate(cmd.Context(), app, req)
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Role, "role", "", "Role: user or admin (will prompt if not provided)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Initial password (will prompt if not provided)")

	return cmd
}

func runUsersCreate(ctx context.Context, app *App, req client.CreateUserRequest) error {
	var err error
	if req.Role == "" {
		if req.Role, err = app.Select("Role", userRoles); err != nil {
			return err
		}
	}
	if req.Password == "" {
		if req.Password, err = app.ReadPassword("Initial password"); err != nil {
			return err
		}
	}

	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.CreateUser(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "✓ Created user %s (id %d, %s)\n", resp.Data.Username, resp.Data.ID, resp.Data.Role)
	return nil
}

func newUsersUpdateCmd(app *App) *cobra.Command {
	var role string
	var active bool

	cmd := &cobra.Command{
		Use:         "update <user-id>",
		Short:       "Change a user's role or active flag",
		Args:        cobra.ExactArgs(1),
		Annotations: route(routes.PathAdmin),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}

			req := client.UpdateUserRequest{}
			if cmd.Flags().Changed("role") {
				req.Role = &role
			}
			if cmd.Flags().Changed("active") {
				req.IsActive = &active
			}
			return runUsersUpdate(cmd.Context(), app, id, req)
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "New role: user or admin")
	cmd.Flags().BoolVar(&active, "active", true, "Enable or disable the account (--active=false)")

	return cmd
}

func runUsersUpdate(ctx context.Context, app *App, id int64, req client.UpdateUserRequest) error {
	if req.Role == nil && req.IsActive == nil {
		return errors.New("nothing to update: pass --role and/or --active")
	}

	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.UpdateUser(ctx, id, req)
	if err != nil {
		return err
	}

	u := resp.Data
	fmt.Fprintf(app.Out, "✓ Updated user %s: role %s, active %t\n", u.Username, u.Role, u.IsActive)
	return nil
}

func newUsersResetPasswordCmd(app *App) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:         "reset-password <user-id>",
		Short:       "Set a new password for a user",
		Args:        cobra.ExactArgs(1),
		Annotations: route(routes.PathAdmin),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return runUsersResetPassword(cmd.Context(), app, id, password)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "New password (will prompt if not provided)")

	return cmd
}

func runUsersResetPassword(ctx context.Context, app *App, id int64, password string) error {
	var err error
	if password == "" {
		if password, err = app.ReadPassword("New password"); err != nil {
			return err
		}
	}

	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.ResetPassword(ctx, id, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "✓ %s\n", orDash(resp.Message))
	return nil
}

func parseUserID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", arg)
	}
	return id, nil
}
