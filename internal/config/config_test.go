package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func requiredEnv() map[string]string {
	return map[string]string{
		"CLIENT_ID":     "id",
		"CLIENT_SECRET": "secret",
		"TENANT_ID":     "tenant",
		"REGION":        "na1",
		"ENVIRONMENT":   "sandbox",
	}
}

func TestFromEnv_defaults(t *testing.T) {
	cfg, err := FromEnv(envFrom(requiredEnv()))
	require.NoError(t, err)

	assert.Equal(t, "id", cfg.ClientID)
	assert.Equal(t, "secret", cfg.ClientSecret)
	assert.Equal(t, "tenant", cfg.TenantID)
	assert.Equal(t, "na1", cfg.Region)
	assert.Equal(t, "sandbox", cfg.Environment)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "catalog_sync_runs", cfg.RunsTable)
	assert.Nil(t, cfg.S3)
	assert.Nil(t, cfg.Mongo)
	assert.Nil(t, cfg.Postgres)
}

func TestFromEnv_missingRequired(t *testing.T) {
	for _, k := range Required {
		env := requiredEnv()
		delete(env, k)
		_, err := FromEnv(envFrom(env))
		require.Error(t, err, k)
		assert.Equal(t, "missing required environment variable: "+k, err.Error())
	}
}

func TestFromEnv_blankCountsAsMissing(t *testing.T) {
	env := requiredEnv()
	env["TENANT_ID"] = "  "
	_, err := FromEnv(envFrom(env))
	assert.EqualError(t, err, "missing required environment variable: TENANT_ID")
}

func TestFromEnv_optionalServices(t *testing.T) {
	env := requiredEnv()
	env["DATA_DIR"] = "s3://catalog/exports"
	env["AWS_ENDPOINT"] = "http://localhost:9000"
	env["AWS_USE_SSL"] = "false"
	env["MONGO_HOST"] = "mongo.local"
	env["MONGO_USER"] = "root"
	env["PG_HOST"] = "pg.local"
	env["PG_RUNS_TABLE"] = "runs"

	cfg, err := FromEnv(envFrom(env))
	require.NoError(t, err)

	require.NotNil(t, cfg.S3)
	assert.Equal(t, "catalog", cfg.S3.Bucket)
	assert.Equal(t, "http://localhost:9000", cfg.S3.Endpoint)
	assert.False(t, cfg.S3.UseSSL)

	require.NotNil(t, cfg.Mongo)
	assert.Equal(t, "mongo.local", cfg.Mongo.Host)
	assert.Equal(t, "27017", cfg.Mongo.Port)

	require.NotNil(t, cfg.Postgres)
	assert.Equal(t, "pg.local", cfg.Postgres.Host)
	assert.Equal(t, "runs", cfg.RunsTable)
}

func TestSetDataDir(t *testing.T) {
	cfg, err := FromEnv(envFrom(requiredEnv()))
	require.NoError(t, err)

	require.NoError(t, cfg.SetDataDir("s3://bucket/prefix", func(_, def string) string { return def }))
	require.NotNil(t, cfg.S3)
	assert.Equal(t, "bucket", cfg.S3.Bucket)

	require.NoError(t, cfg.SetDataDir("./fixtures", nil))
	assert.Nil(t, cfg.S3)
	assert.Equal(t, "./fixtures", cfg.DataDir)

	assert.Error(t, cfg.SetDataDir("s3:///prefix", nil))
}

func TestLoad_readsProcessEnv(t *testing.T) {
	for k, v := range requiredEnv() {
		t.Setenv(k, v)
	}
	t.Setenv("ENVIRONMENT", "")

	_, err := Load()
	assert.EqualError(t, err, "missing required environment variable: ENVIRONMENT")
}
