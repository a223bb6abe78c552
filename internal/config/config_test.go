package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya411/sac-databricks-widget/internal/adapter"
	"github.com/Adithya411/sac-databricks-widget/internal/config"
)

func TestLoadWithEnvExpansionAndDefaults(t *testing.T) {
	t.Setenv("ISU_PROXY_URL", "https://proxy.example.com/isu-insight")
	cfgPath := writeTempConfig(t, `
widgets:
  - name: isu
    dialect: raw_question
    endpoint_url: ${ISU_PROXY_URL}
  - name: sales
    title: Sales GenAI
    dialect: dataframe_split
    timeout: 15s
`)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Listen)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"isu", "sales"}, cfg.WidgetNames())

	isu, ok := cfg.WidgetByName("isu")
	require.True(t, ok)
	assert.Equal(t, "https://proxy.example.com/isu-insight", isu.EndpointURL)
	assert.Equal(t, adapter.RawQuestion, isu.Dialect)
	assert.Equal(t, "isu", isu.Title)
	assert.Equal(t, 60*time.Second, isu.Timeout)

	sales, ok := cfg.WidgetByName(" sales ")
	require.True(t, ok)
	assert.Equal(t, adapter.DataframeSplit, sales.Dialect)
	assert.Equal(t, "Sales GenAI", sales.Title)
	assert.Equal(t, 15*time.Second, sales.Timeout)
	assert.Empty(t, sales.EndpointURL)
}

func TestLoadReadsDotEnvBesideConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LLM_PROXY_FROM_DOTENV=https://dotenv.example.com/llm\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LLM_PROXY_FROM_DOTENV") })

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
widgets:
  - name: llm
    dialect: raw_prompt
    endpoint_url: ${LLM_PROXY_FROM_DOTENV}
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	llm, _ := cfg.WidgetByName("llm")
	assert.Equal(t, "https://dotenv.example.com/llm", llm.EndpointURL)
}

func TestLoadFailures(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no widgets", `listen: ":1"`, "widgets is required"},
		{"missing name", `
widgets:
  - dialect: raw_prompt
`, "name is required"},
		{"duplicate", `
widgets:
  - name: a
    dialect: raw_prompt
  - name: a
    dialect: raw_question
`, "duplicate widget name"},
		{"unknown dialect", `
widgets:
  - name: a
    dialect: openai_chat
`, "unknown dialect"},
		{"bad scheme", `
widgets:
  - name: a
    dialect: raw_prompt
    endpoint_url: ftp://invalid
`, "must use http/https"},
		{"no host", `
widgets:
  - name: a
    dialect: raw_prompt
    endpoint_url: not-a-url
`, "endpoint_url is invalid"},
		{"negative timeout", `
widgets:
  - name: a
    dialect: raw_prompt
    timeout: -1s
`, "timeout must not be negative"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(writeTempConfig(t, tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(content)), 0o600))
	return path
}
