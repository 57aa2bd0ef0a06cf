package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/biopaper/paperpush/internal/cli/client"
)

const configBody = `{"status":"success","data":{
	"keywords":{"nitrogen":["nitrogen fixation"],"signal":["auxin"],"enzyme":["nitrogenase"]},
	"scoring":{"keywordWeight":10,"journalBonus":5,"citationWeight":2,"freshnessWeight":3},
	"dataSources":[{"name":"pubmed","enabled":true,"windowDays":7}],
	"push":{"pushplusTokens":["t1"],"email":"lab@example.org"},
	"general":{"defaultWindowDays":1,"topK":12,"quickFilterThreshold":0.5}
}}`

func TestConfigGet(t *testing.T) {
	backend := newFakeBackend(t, map[string]reply{"GET /api/config": {body: configBody}})

	t.Run("json", func(t *testing.T) {
		env := newTestEnv(t, backend.URL)
		require.NoError(t, runConfigGet(context.Background(), env.app, formatJSON))

		var cfg client.SystemConfig
		require.NoError(t, json.Unmarshal(env.out.Bytes(), &cfg))
		assert.Equal(t, 12, cfg.General.TopK)
		assert.Equal(t, []string{"nitrogenase"}, cfg.Keywords.Enzyme)
	})

	t.Run("yaml", func(t *testing.T) {
		env := newTestEnv(t, backend.URL)
		require.NoError(t, runConfigGet(context.Background(), env.app, formatYAML))

		var cfg client.SystemConfig
		require.NoError(t, yaml.Unmarshal(env.out.Bytes(), &cfg))
		assert.Equal(t, "pubmed", cfg.DataSources[0].Name)
		assert.Contains(t, env.out.String(), "keywordWeight: 10")
	})

	t.Run("unknown format", func(t *testing.T) {
		env := newTestEnv(t, backend.URL)
		err := runConfigGet(context.Background(), env.app, "toml")
		assert.ErrorContains(t, err, "unsupported output format")
	})
}

func TestConfigSet_FromYAML(t *testing.T) {
	backend := newFakeBackend(t, map[string]reply{
		"PUT /api/config": {body: `{"status":"success","message":"Configuration updated"}`},
	})
	env := newTestEnv(t, backend.URL)

	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
keywords:
  nitrogen: [nitrogen fixation]
scoring:
  keywordWeight: 8
dataSources:
  - name: arxiv
    enabled: false
general:
  topK: 20
`), 0644))

	require.NoError(t, runConfigSet(context.Background(), env.app, file))

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(backend.Last(t).Body), &sent))
	assert.Equal(t, float64(8), sent["scoring"].(map[string]any)["keywordWeight"])
	assert.Equal(t, float64(20), sent["general"].(map[string]any)["topK"])
	assert.Contains(t, env.out.String(), "Configuration updated")
}

func TestConfigSet_RejectsInvalid(t *testing.T) {
	backend := newFakeBackend(t, nil)
	env := newTestEnv(t, backend.URL)
	dir := t.TempDir()

	unknownExt := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(unknownExt, []byte("x = 1"), 0644))
	assert.ErrorContains(t, runConfigSet(context.Background(), env.app, unknownExt), "unsupported config file")

	negative := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(negative, []byte(`{"scoring":{"keywordWeight":-1}}`), 0644))
	assert.ErrorContains(t, runConfigSet(context.Background(), env.app, negative), "invalid request")

	assert.Empty(t, backend.Requests())
}

func TestClearDatabase(t *testing.T) {
	backend := newFakeBackend(t, map[string]reply{
		"POST /api/config/clear-database": {body: `{"status":"success","message":"Database cleared"}`},
	})

	env := newTestEnv(t, backend.URL)
	require.NoError(t, runClearDatabase(context.Background(), env.app, false))
	assert.Len(t, env.confirmed, 1)
	assert.Empty(t, backend.Requests())

	env = newTestEnv(t, backend.URL)
	env.confirmAnswer = true
	require.NoError(t, runClearDatabase(context.Background(), env.app, false))
	assert.Contains(t, env.out.String(), "Database cleared")
}
