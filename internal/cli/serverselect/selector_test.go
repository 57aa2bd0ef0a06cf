package serverselect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biopaper/paperpush/internal/cli/userconfig"
)

func TestOrderedServers(t *testing.T) {
	cfg := &userconfig.UserConfig{
		Server:       "https://b.example.org",
		KnownServers: []string{"https://a.example.org", "https://b.example.org"},
	}
	assert.Equal(t, []string{"https://b.example.org", "https://a.example.org"}, orderedServers(cfg))

	assert.Equal(t, []string{userconfig.DefaultServer}, orderedServers(&userconfig.UserConfig{}))
}
