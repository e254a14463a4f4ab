package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
artifacts:
  dir: /srv/artifacts
workers:
  predict-loan-approval:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/srv/artifacts/model.json", cfg.Artifacts.Model)
	assert.Equal(t, "/srv/artifacts/self_employed_encoder.json", cfg.Artifacts.Paths().SelfEmployedEncoder)
	assert.Equal(t, 86400, cfg.Cache.VerdictTTL)
	assert.Equal(t, "loan-decisions", cfg.Database.Elasticsearch.DecisionIndex)
	assert.False(t, cfg.Camunda.Enabled())
	assert.False(t, cfg.Database.Postgres.Enabled())
	assert.False(t, cfg.Database.Redis.Enabled())

	wc := GetWorkerConfig(cfg, "predict-loan-approval")
	assert.True(t, wc.Enabled)
	assert.Equal(t, 5, wc.MaxJobsActive)
	assert.Equal(t, 30000, wc.Timeout)
	assert.True(t, IsWorkerEnabled(cfg, "notify-loan-decision"))
}

func TestLoadFromFile_ExplicitArtifactNames(t *testing.T) {
	path := writeConfig(t, `
artifacts:
  dir: /srv/artifacts
  model: tree-v2.json
  scaler: /opt/scaler.json
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/artifacts/tree-v2.json", cfg.Artifacts.Model)
	assert.Equal(t, "/opt/scaler.json", cfg.Artifacts.Scaler)
	assert.Equal(t, "/srv/artifacts/education_encoder.json", cfg.Artifacts.EducationEncoder)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_REDIS_HOST", "cache.internal:6379")
	t.Setenv("DB_PASSWORD", "s3cret")
	path := writeConfig(t, `
artifacts:
  dir: ./artifacts
database:
  redis:
    address: ${TEST_REDIS_HOST}
  postgres:
    host: db.internal
    database: loans
    user: loan_svc
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "cache.internal:6379", cfg.Database.Redis.Address)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "dbname=loans")
}

func TestLoadFromFile_UnsetPlaceholderDisablesComponent(t *testing.T) {
	t.Setenv("TEST_ZEEBE_ADDRESS", "")
	path := writeConfig(t, `
artifacts:
  dir: ./artifacts
camunda:
  broker_address: ${TEST_ZEEBE_ADDRESS}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Empty(t, cfg.Camunda.BrokerAddress)
	assert.False(t, cfg.Camunda.Enabled())
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "postgres without database",
			body: "database:\n  postgres:\n    host: db\n    user: u\n",
			want: "database.postgres.database",
		},
		{
			name: "sns without topic",
			body: "notifications:\n  sns:\n    enabled: true\n",
			want: "topic_arn",
		},
		{
			name: "email without reviewer",
			body: "notifications:\n  email:\n    enabled: true\n    from_email: loans@example.com\n",
			want: "reviewer_email",
		},
		{
			name: "tracing without endpoint",
			body: "tracing:\n  enabled: true\n",
			want: "jaeger_endpoint",
		},
		{
			name: "bad port",
			body: "server:\n  port: 70000\n",
			want: "server.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
