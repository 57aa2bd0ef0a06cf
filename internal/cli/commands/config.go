package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/biopaper/paperpush/internal/cli/client"
	"github.com/biopaper/paperpush/internal/routes"
)

// NewConfigCmd creates the config command group
func NewConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and change the server configuration",
	}

	cmd.AddCommand(newConfigGetCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	cmd.AddCommand(newConfigActionCmd(app, "reload", "Reload the configuration from disk on the server",
		func(ctx context.Context, api *client.Client) (*client.StatusResponse, error) {
			return api.ReloadConfig(ctx)
		}))
	cmd.AddCommand(newConfigActionCmd(app, "test-push", "Send a test push to the configured channels",
		func(ctx context.Context, api *client.Client) (*client.StatusResponse, error) {
			return api.TestPush(ctx)
		}))
	cmd.AddCommand(newClearDatabaseCmd(app))

	return cmd
}

func newConfigGetCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:         "get",
		Short:       "Print the server configuration",
		Annotations: route(routes.PathConfig),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.Context(), app, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatYAML, "Output format (json or yaml)")

	return cmd
}

func runConfigGet(ctx context.Context, app *App, output string) error {
	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.GetConfig(ctx)
	if err != nil {
		return err
	}

	return writeStructured(app.Out, output, resp.Data)
}

func newConfigSetCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "set -f <file>",
		Short: "Replace the server configuration from a JSON or YAML file",
		Long: `Replace the server configuration from a JSON or YAML file.

The file has the shape printed by 'paperpush config get'. Export, edit, apply:
  $ paperpush config get -o yaml > config.yaml
  $ paperpush config set -f config.yaml`,
		Annotations: route(routes.PathConfig),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.Context(), app, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Configuration file (.json, .yaml or .yml)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runConfigSet(ctx context.Context, app *App, file string) error {
	cfg, err := readSystemConfig(file)
	if err != nil {
		return err
	}

	api, err := app.Client()
	if err != nil {
		return err
	}

	resp, err := api.UpdateConfig(ctx, *cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "✓ %s\n", orDash(resp.Message))
	return nil
}

func readSystemConfig(file string) (*client.SystemConfig, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg client.SystemConfig
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("unsupported config file %q: use .json, .yaml or .yml", file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

func newConfigActionCmd(app *App, use, short string, call func(context.Context, *client.Client) (*client.StatusResponse, error)) *cobra.Command {
	return &cobra.Command{
		Use:         use,
		Short:       short,
		Annotations: route(routes.PathConfig),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.Client()
			if err != nil {
				return err
			}

			resp, err := call(cmd.Context(), api)
			if err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "✓ %s\n", orDash(resp.Message))
			return nil
		},
	}
}

func newClearDatabaseCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:         "clear-database",
		Short:       "Delete every stored paper, score, run and push record",
		Annotations: route(routes.PathConfig),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClearDatabase(cmd.Context(), app, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}

func runClearDatabase(ctx context.Context, app *App, yes bool) error {
	if !yes {
		ok, err := app.Confirm("Delete ALL papers, scores, runs and push records")
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

	resp, err := api.ClearDatabase(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "✓ %s\n", orDash(resp.Message))
	return nil
}
