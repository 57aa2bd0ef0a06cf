package serverselect

import (
	"errors"
	"fmt"
	"slices"

	"github.com/manifoldco/promptui"

	"github.com/biopaper/paperpush/internal/cli/userconfig"
)

// PromptServerSelection shows an interactive prompt over the known servers.
// The current server is listed first; "Other..." accepts a new URL.
func PromptServerSelection(cfg *userconfig.UserConfig) (string, error) {
	items := orderedServers(cfg)

	prompt := promptui.SelectWithAdd{
		Label:    "Select a server",
		Items:    items,
		AddLabel: "Other...",
		Validate: func(input string) error {
			_, err := userconfig.NormalizeServer(input)
			return err
		},
	}

	_, server, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", fmt.Errorf("server selection cancelled")
		}
		return "", fmt.Errorf("server selection failed: %w", err)
	}

	return userconfig.NormalizeServer(server)
}

func orderedServers(cfg *userconfig.UserConfig) []string {
	servers := make([]string, 0, len(cfg.KnownServers)+1)
	if cfg.Server != "" {
		servers = append(servers, cfg.Server)
	}
	for _, s := range cfg.KnownServers {
		if !slices.Contains(servers, s) {
			servers = append(servers, s)
		}
	}
	if len(servers) == 0 {
		servers = append(servers, userconfig.DefaultServer)
	}
	return servers
}
