package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 25, cfg.DBMaxOpenConnections)
	assert.Equal(t, 5, cfg.DBMaxIdleConnections)
	assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Hour, cfg.ScanInterval)
	assert.True(t, cfg.ScanIncludeUpcoming)
	assert.Equal(t, "beamauth", cfg.SystemUsername)
	assert.Equal(t, "beamauth", cfg.MetricsNamespace)
	assert.Equal(t, 8081, cfg.MetricsPort)
	assert.Equal(t, "TLOG", cfg.LogbooksCSV)
	assert.True(t, cfg.NotifyGroupsEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SCAN_INTERVAL_MINUTES", "15")
	t.Setenv("BA_EMAIL_SENDER", "accelerator@example.org")
	t.Setenv("BA_EXPIRED_EMAIL_CSV", "ops@example.org,mcc@example.org")
	t.Setenv("PROXY_HOSTNAME", "ops.example.org")
	t.Setenv("BA_NOTIFY_GROUPS_ENABLED", "false")

	cfg := Load()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 15*time.Minute, cfg.ScanInterval)
	assert.Equal(t, "accelerator@example.org", cfg.EmailSender)
	assert.Equal(t, "ops@example.org,mcc@example.org", cfg.OpsEmailCSV)
	assert.Equal(t, "ops.example.org", cfg.ProxyHostname)
	assert.False(t, cfg.NotifyGroupsEnabled)
}

func TestGetGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		expected string
	}{
		{"debug", "debug"},
		{"info", "release"},
		{"warn", "release"},
		{"error", "release"},
		{"unknown", "release"},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.logLevel}
		assert.Equal(t, tt.expected, cfg.GetGinMode())
	}
}
