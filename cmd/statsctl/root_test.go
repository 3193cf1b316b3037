package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/baseball-stats/internal/app"
	"github.com/riskibarqy/baseball-stats/internal/config"
	"github.com/riskibarqy/baseball-stats/internal/platform/logging"
)

const upstreamBatch = `[
	{"Player name": "B Bonds", "position": "LF", "Hits": 2935, "home run": 762, "AVG": 0.298},
	{"Player name": "H Aaron", "position": "RF", "Hits": 3771, "home run": 755, "AVG": 0.305}
]`

func newTestContainer(t *testing.T) *app.Container {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upstreamBatch))
	}))
	t.Cleanup(upstream.Close)

	c, err := app.NewContainer(context.Background(), config.Config{
		AppEnv:          config.EnvDev,
		HTTPAddr:        ":0",
		StoreBackend:    config.StoreBackendMemory,
		UpstreamURL:     upstream.URL,
		UpstreamTimeout: 5 * time.Second,
		TextGenTimeout:  time.Second,
	}, logging.NewNop())
	require.NoError(t, err)
	return c
}

func execute(t *testing.T, c *app.Container, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(&stdout, &stderr, func(context.Context) (*app.Container, error) { return c, nil })
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestStatsctl_RefreshThenQueryAndGet(t *testing.T) {
	c := newTestContainer(t)

	out, err := execute(t, c, "refresh")
	require.NoError(t, err)
	var refreshed refreshOutput
	require.NoError(t, sonic.UnmarshalString(out, &refreshed))
	assert.Equal(t, "success", refreshed.Status)
	assert.Equal(t, 2, refreshed.PlayersSaved)
	assert.NotEmpty(t, refreshed.RunID)

	out, err = execute(t, c, "query", "--ordering", "-hits", "--page-size", "1")
	require.NoError(t, err)
	var page struct {
		Results []map[string]any `json:"results"`
		Total   int              `json:"total"`
	}
	require.NoError(t, sonic.UnmarshalString(out, &page))
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "H Aaron", page.Results[0]["player_name"])

	out, err = execute(t, c, "get", "1")
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, sonic.UnmarshalString(out, &rec))
	assert.Equal(t, "B Bonds", rec["player_name"])
}

func TestStatsctl_Errors(t *testing.T) {
	c := newTestContainer(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown player", args: []string{"get", "99"}},
		{name: "non numeric id", args: []string{"get", "abc"}},
		{name: "missing id", args: []string{"get"}},
		{name: "bad ordering", args: []string{"query", "--ordering", "salary"}},
		{name: "negative page", args: []string{"query", "--page", "-1"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, c, tc.args...)
			assert.Error(t, err)
		})
	}
}
