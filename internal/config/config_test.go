package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"DATABASE_PATH", "APP_NAME", "APP_VERSION", "APP_BUILD", "MASTER_FILE_NAME",
	"LOCATION_UPDATE_INTERVAL_SECONDS", "POINT_DISCARD_RADIUS_M",
	"STOP_DETECTION_WINDOW", "STOP_DETECTION_MAX_DISTANCE_M", "FILTER_RULES",
	"ROUTE_STEP_SECONDS", "WORKER_POLL_INTERVAL_MS", "METRICS_TEXTFILE", "LOG_LEVEL",
}

// clearEnv unsets every config key for the test and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "gdsa.db", cfg.DatabasePath)
	assert.Equal(t, 5*time.Second, cfg.UpdateInterval)
	assert.Equal(t, 50.0, cfg.DiscardRadiusM)
	assert.Equal(t, 5, cfg.StopWindow)
	assert.Equal(t, 10.0, cfg.StopMaxDistanceM)
	assert.Equal(t, 6*time.Second, cfg.RouteStep)
	assert.Empty(t, cfg.FilterRules)
	assert.Equal(t, "MasterFile.dat.1.0.1", cfg.MasterFileKey())
}

func TestLoadDotEnvAndOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "# local\nAPP_VERSION=2.3\nAPP_BUILD=41\nSTOP_DETECTION_WINDOW=7\nFILTER_RULES=origin_distance, \nLOCATION_UPDATE_INTERVAL_SECONDS=2.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("APP_BUILD", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "MasterFile.dat.2.3.42", cfg.MasterFileKey())
	assert.Equal(t, 7, cfg.StopWindow)
	assert.Equal(t, []string{"origin_distance"}, cfg.FilterRules)
	assert.Equal(t, 2500*time.Millisecond, cfg.UpdateInterval)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{"STOP_DETECTION_WINDOW", "0"},
		{"POINT_DISCARD_RADIUS_M", "wide"},
		{"POINT_DISCARD_RADIUS_M", "0"},
		{"STOP_DETECTION_MAX_DISTANCE_M", "0"},
		{"STOP_DETECTION_MAX_DISTANCE_M", "-2"},
		{"LOCATION_UPDATE_INTERVAL_SECONDS", "-1"},
		{"WORKER_POLL_INTERVAL_MS", "soon"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}
