package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
app:
  name: attrition-workers
  version: 1.2.0
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: hr
    user: ${TEST_DB_USER}
  redis:
    address: localhost:6379
analytics:
  base_url: https://analytics.example.com
  auth:
    token_url: https://auth.example.com/token
    client_id: dashboard
workers:
  parse-attrition-insight:
    enabled: true
  export-insight-report:
    enabled: false
    timeout: 60000
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// ==========================
// LoadFromFile
// ==========================

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_DB_USER", "hr_reader")
	t.Setenv("ANALYTICS_CLIENT_SECRET", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, "hr_reader", cfg.Database.Postgres.User)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "s3cret", cfg.Analytics.Auth.ClientSecret)
	assert.Equal(t, "dashboard", cfg.Analytics.Auth.ClientID)
	assert.Equal(t, 10000, cfg.Analytics.Timeout)
	assert.Equal(t, 300, cfg.Analytics.CacheTTL)
	assert.Equal(t, ":8080", cfg.Metrics.ListenAddress)
	assert.Equal(t, "configs/activity-registry.json", cfg.RegistryPath)
	assert.Equal(t, "json", cfg.Logging.Format)

	parse := cfg.Workers["parse-attrition-insight"]
	assert.True(t, parse.Enabled)
	assert.Equal(t, 5, parse.MaxJobsActive)
	assert.Equal(t, 30000, parse.Timeout)
	assert.Equal(t, 3, parse.MaxRetries)

	export := cfg.Workers["export-insight-report"]
	assert.False(t, export.Enabled)
	assert.Equal(t, 60000, export.Timeout)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing broker",
			body:    "database:\n  postgres:\n    host: h\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name: "missing analytics url",
			body: "camunda:\n  broker_address: b\ndatabase:\n  postgres:\n    host: h\n    database: d\n    user: u\n" +
				"  redis:\n    address: r\n",
			wantErr: "analytics.base_url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// ==========================
// Helpers
// ==========================

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"build-risk-chart-data": {Enabled: false, MaxJobsActive: 2, Timeout: 1000, MaxRetries: 1},
	}}

	assert.Equal(t, 2, GetWorkerConfig(cfg, "build-risk-chart-data").MaxJobsActive)
	assert.False(t, IsWorkerEnabled(cfg, "build-risk-chart-data"))

	fallback := GetWorkerConfig(cfg, "query-employee-records")
	assert.True(t, fallback.Enabled)
	assert.Equal(t, 30000, fallback.Timeout)
	assert.True(t, IsWorkerEnabled(cfg, "query-employee-records"))
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	dsn := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "hr", SSLMode: "require"}.GetDSN()
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=hr sslmode=require", dsn)
}
