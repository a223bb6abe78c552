package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya411/sac-databricks-widget/internal/config"
)

func TestPickWidget(t *testing.T) {
	cfg := &config.Config{Widgets: []config.WidgetConfig{
		{Name: "isu", DialectName: "raw_question"},
		{Name: "sales", DialectName: "dataframe_split"},
	}}
	require.NoError(t, cfg.Validate())

	wc, err := pickWidget(cfg, "sales")
	require.NoError(t, err)
	assert.Equal(t, "sales", wc.Name)

	_, err = pickWidget(cfg, "")
	assert.ErrorContains(t, err, "missing required -w")

	_, err = pickWidget(cfg, "nope")
	assert.ErrorContains(t, err, `unknown widget "nope"`)

	single := &config.Config{Widgets: []config.WidgetConfig{{Name: "only", DialectName: "raw_prompt"}}}
	require.NoError(t, single.Validate())
	wc, err = pickWidget(single, "")
	require.NoError(t, err)
	assert.Equal(t, "only", wc.Name)
}

func TestRunAsk(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/isu":
			assert.JSONEq(t, `{"question":"Overdue readings?"}`, string(body))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"answer":"12 meters overdue"}`))
		case "/llm":
			assert.JSONEq(t, `{"prompt":"why?"}`, string(body))
			http.Error(w, "proxy down", http.StatusInternalServerError)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer upstream.Close()

	cfgPath := writeTempConfig(t, `
widgets:
  - name: isu
    dialect: raw_question
    endpoint_url: `+upstream.URL+`/isu
    default_question: "Overdue readings?"
  - name: llm
    dialect: raw_prompt
    endpoint_url: `+upstream.URL+`/llm
`)

	t.Run("success prints answer to stdout", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		err := runAsk([]string{"-c", cfgPath, "-w", "isu"}, discardLogger(), &stdout, &stderr)
		require.NoError(t, err)
		assert.Equal(t, "Success.\n12 meters overdue\n", stdout.String())
		assert.Empty(t, stderr.String())
	})

	t.Run("http error goes to stderr and fails", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		err := runAsk([]string{"-c", cfgPath, "-w", "llm", "-q", "why?"}, discardLogger(), &stdout, &stderr)
		assert.ErrorIs(t, err, errInteractionFailed)
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "Error: HTTP 500\n")
		assert.Contains(t, stderr.String(), "proxy down")
	})

	t.Run("blank question without default fails without calling out", func(t *testing.T) {
		before := hits.Load()
		var stdout, stderr bytes.Buffer
		err := runAsk([]string{"-c", cfgPath, "-w", "llm", "-q", "   "}, discardLogger(), &stdout, &stderr)
		assert.ErrorIs(t, err, errInteractionFailed)
		assert.Equal(t, "Please enter a question.\n", stderr.String())
		assert.Empty(t, stdout.String())
		assert.Equal(t, before, hits.Load())
	})

	t.Run("unknown widget is a usage error", func(t *testing.T) {
		err := runAsk([]string{"-c", cfgPath, "-w", "sales"}, discardLogger(), io.Discard, io.Discard)
		require.Error(t, err)
		assert.NotErrorIs(t, err, errInteractionFailed)
	})
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
