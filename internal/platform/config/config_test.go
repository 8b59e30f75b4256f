package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GOOGLE_SCRIPT_URL", "")
	t.Setenv("NEXT_PUBLIC_GOOGLE_SCRIPT_URL", "")
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("SUBMIT_INTERVAL", "")
	t.Setenv("GATEWAY_TIMEOUT", "")
	t.Setenv("RECORDS_CACHE_TTL", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.SubmitInterval)
	assert.Equal(t, 30*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.EndpointConfigured(), "missing endpoint must not fail Load")
	assert.False(t, cfg.FirestoreEnabled())
}

func TestLoadScriptURLFallback(t *testing.T) {
	t.Setenv("GOOGLE_SCRIPT_URL", "")
	t.Setenv("NEXT_PUBLIC_GOOGLE_SCRIPT_URL", "https://script.example/exec")
	t.Setenv("FIREBASE_PROJECT_ID", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://script.example/exec", cfg.ScriptURL)
	assert.True(t, cfg.EndpointConfigured())
}

func TestLoadDurations(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("SUBMIT_INTERVAL", "45")
	t.Setenv("GATEWAY_TIMEOUT", "5s")
	t.Setenv("RECORDS_CACHE_TTL", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.SubmitInterval)
	assert.Equal(t, 5*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, time.Duration(0), cfg.RecordsCacheTTL)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("SUBMIT_INTERVAL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUBMIT_INTERVAL")
}

func TestValidateFirestoreNeedsCredentials(t *testing.T) {
	cfg := Config{Port: "8080", GatewayTimeout: time.Second, FirebaseProjectID: "laisee"}
	require.Error(t, cfg.Validate())

	cfg.FirebaseCredsFile = "/tmp/creds.json"
	require.NoError(t, cfg.Validate())
}
