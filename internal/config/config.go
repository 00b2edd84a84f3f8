package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"catalog_sync/internal/config/connections/mongo"
	"catalog_sync/internal/config/connections/postgres"
	"catalog_sync/internal/config/connections/s3"

	"github.com/joho/godotenv"
)

// Required lists the environment variables every run needs, in check order.
var Required = []string{
	"CLIENT_ID",
	"CLIENT_SECRET",
	"TENANT_ID",
	"REGION",
	"ENVIRONMENT",
}

type Config struct {
	ClientID     string
	ClientSecret string
	TenantID     string
	Region       string
	Environment  string

	DataDir  string
	LogLevel string
	APIURL   string
	TokenURL string

	// S3 is set when DataDir is an s3:// location.
	S3 *s3.ConnectionInfo
	// Mongo is set when MONGO_HOST is configured.
	Mongo *mongo.ConnectionInfo
	// Postgres is set when PG_HOST is configured.
	Postgres  *postgres.ConnectionInfo
	RunsTable string
}

// Load reads .env (if any) and the process environment. It fails on the
// first missing required variable.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	vals := make(map[string]string, len(Required))
	for _, k := range Required {
		v := strings.TrimSpace(getenv(k))
		if v == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", k)
		}
		vals[k] = v
	}

	get := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		ClientID:     vals["CLIENT_ID"],
		ClientSecret: vals["CLIENT_SECRET"],
		TenantID:     vals["TENANT_ID"],
		Region:       vals["REGION"],
		Environment:  vals["ENVIRONMENT"],

		DataDir:   get("DATA_DIR", "data"),
		LogLevel:  get("LOG_LEVEL", "info"),
		APIURL:    get("COMMERCE_API_URL", ""),
		TokenURL:  get("COMMERCE_TOKEN_URL", ""),
		RunsTable: get("PG_RUNS_TABLE", "catalog_sync_runs"),
	}

	if err := cfg.SetDataDir(cfg.DataDir, get); err != nil {
		return nil, err
	}

	if host := getenv("MONGO_HOST"); host != "" {
		cfg.Mongo = &mongo.ConnectionInfo{
			Scheme:     get("MONGO_SCHEME", "mongodb"),
			User:       get("MONGO_USER", ""),
			Password:   get("MONGO_PASSWORD", ""),
			Host:       host,
			Port:       get("MONGO_PORT", "27017"),
			DB:         get("MONGO_DB", "catalog_sync"),
			AuthSource: get("MONGO_AUTH_SOURCE", ""),
		}
	}

	if host := getenv("PG_HOST"); host != "" {
		cfg.Postgres = &postgres.ConnectionInfo{
			Host:     host,
			Port:     get("PG_PORT", "5432"),
			User:     get("PG_USER", "postgres"),
			Password: get("PG_PASSWORD", ""),
			DB:       get("PG_DB", "catalog_sync"),
			SSLMode:  get("PG_SSLMODE", "disable"),
		}
	}

	return cfg, nil
}

// SetDataDir points the record source at dir, resolving object store
// settings when dir is an s3:// location.
func (c *Config) SetDataDir(dir string, get func(k, def string) string) error {
	c.DataDir = dir
	c.S3 = nil
	if !strings.HasPrefix(dir, "s3://") {
		return nil
	}
	u, err := url.Parse(dir)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid DATA_DIR %q: expected s3://bucket/prefix", dir)
	}
	if get == nil {
		get = func(k, def string) string {
			if v := os.Getenv(k); v != "" {
				return v
			}
			return def
		}
	}
	c.S3 = &s3.ConnectionInfo{
		Endpoint:  get("AWS_ENDPOINT", "s3.amazonaws.com"),
		AccessKey: get("AWS_ACCESS_KEY_ID", ""),
		SecretKey: get("AWS_SECRET_ACCESS_KEY", ""),
		Region:    get("AWS_DEFAULT_REGION", "us-east-1"),
		Bucket:    u.Host,
		UseSSL:    get("AWS_USE_SSL", "true") == "true",
	}
	return nil
}

// Connections holds the optional backing services a run was configured with.
type Connections struct {
	S3       *s3.S3
	Mongo    *mongo.Mongo
	Postgres *postgres.Postgres
}

// Connect opens every configured backing service. Nothing is opened for
// services left unconfigured.
func (c *Config) Connect(ctx context.Context) (*Connections, error) {
	conns := &Connections{}

	if c.S3 != nil {
		s3c, err := s3.NewConnection(*c.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 connect: %w", err)
		}
		conns.S3 = s3c
	}

	if c.Mongo != nil {
		mg, err := mongo.NewConnection(ctx, *c.Mongo)
		if err != nil {
			conns.Close(ctx)
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		conns.Mongo = mg
	}

	if c.Postgres != nil {
		pg, err := postgres.NewConnection(ctx, *c.Postgres)
		if err != nil {
			conns.Close(ctx)
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		conns.Postgres = pg
	}

	return conns, nil
}

func (c *Connections) CheckConnections(ctx context.Context) error {
	var errs []error

	if c.Postgres != nil {
		if c.Postgres.Pool == nil {
			errs = append(errs, errors.New("postgres not initialized"))
		} else if err := c.Postgres.Pool.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres ping failed: %w", err))
		}
	}

	if c.Mongo != nil {
		if c.Mongo.Client == nil {
			errs = append(errs, errors.New("mongo not initialized"))
		} else if err := c.Mongo.Client.Ping(ctx, nil); err != nil {
			errs = append(errs, fmt.Errorf("mongo ping failed: %w", err))
		}
	}

	if c.S3 != nil {
		if c.S3.Client == nil {
			errs = append(errs, errors.New("s3 not initialized"))
		} else if ok, err := c.S3.Client.BucketExists(ctx, c.S3.Bucket); err != nil {
			errs = append(errs, fmt.Errorf("s3 bucket check failed: %w", err))
		} else if !ok {
			errs = append(errs, fmt.Errorf("s3 bucket %q not found", c.S3.Bucket))
		}
	}

	return errors.Join(errs...)
}

func (c *Connections) Close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.Mongo != nil {
		_ = c.Mongo.Close(ctx)
	}
	if c.Postgres != nil {
		c.Postgres.Close()
	}
}
