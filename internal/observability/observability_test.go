package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/baseball-stats/internal/config"
	"github.com/riskibarqy/baseball-stats/internal/platform/logging"
)

func TestUptraceOptions(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.Config
		wantOpts   int
		wantReason string
	}{
		{
			name:       "flag off",
			cfg:        config.Config{UptraceEnabled: false, UptraceDSN: "https://token@api.uptrace.dev?grpc=4317"},
			wantReason: "UPTRACE_ENABLED=false",
		},
		{
			name:       "enabled without dsn",
			cfg:        config.Config{UptraceEnabled: true, UptraceDSN: "  "},
			wantReason: "UPTRACE_DSN empty",
		},
		{
			name: "enabled",
			cfg: config.Config{
				UptraceEnabled: true,
				UptraceDSN:     "https://token@api.uptrace.dev?grpc=4317",
				ServiceName:    "baseball-stats-api",
				ServiceVersion: "dev",
				AppEnv:         config.EnvDev,
			},
			wantOpts: 5,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts, reason := uptraceOptions(tc.cfg)
			assert.Len(t, opts, tc.wantOpts)
			assert.Equal(t, tc.wantReason, reason)
		})
	}
}

func TestPyroscopeConfig(t *testing.T) {
	cfg := config.Config{
		AppEnv:                 config.EnvProd,
		ServiceName:            "baseball-stats-api",
		ServiceVersion:         "1.2.3",
		StoreBackend:           config.StoreBackendPostgres,
		PyroscopeAppName:       "baseball-stats-api",
		PyroscopeServerAddress: "http://pyroscope:4040",
	}

	got := pyroscopeConfig(cfg)
	assert.Equal(t, "http://pyroscope:4040", got.ServerAddress)
	assert.Equal(t, map[string]string{
		"env":     config.EnvProd,
		"service": "baseball-stats-api",
		"version": "1.2.3",
		"store":   config.StoreBackendPostgres,
	}, got.Tags)
	assert.Equal(t, profileTypes, got.ProfileTypes)
}

func TestPprofMux(t *testing.T) {
	srv := httptest.NewServer(newPprofMux())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/debug/pprof/cmdline")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/debug/pprof/missing-route-check")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode, "unknown profiles are reported by pprof.Index")
}

func TestStart_AllDisabled(t *testing.T) {
	s, err := Start(config.Config{}, logging.NewNop())
	require.NoError(t, err)
	assert.Len(t, s.stops, 3)

	require.NoError(t, s.Shutdown(context.Background()))
	require.NoError(t, s.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestStack_ShutdownReverseOrderAndJoin(t *testing.T) {
	var order []string
	s := &Stack{logger: logging.NewNop()}
	s.push("first", func(context.Context) error { order = append(order, "first"); return nil })
	s.push("second", func(context.Context) error { order = append(order, "second"); return assert.AnError })

	err := s.Shutdown(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "stop second")
	assert.Equal(t, []string{"second", "first"}, order)
}
