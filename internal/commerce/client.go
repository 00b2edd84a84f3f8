// Package commerce is a minimal client for the catalog ingestion API: it
// authenticates with OAuth client credentials and posts record batches.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"catalog_sync/internal/records"

	"github.com/rs/zerolog"
)

// MaxBatch is the largest number of records the API accepts per call.
const MaxBatch = 100

const (
	DefaultTokenURL = "https://ims-na1.adobelogin.com/ims/token/v3"
	DefaultScope    = "openid,AdobeID,profile,email,additional_info.roles,additional_info.projectedProductContext,commerce.aco.ingestion"

	tokenSkew = 60 * time.Second
)

var ErrBatchTooLarge = fmt.Errorf("batch exceeds %d records", MaxBatch)

type Credentials struct {
	ClientID     string
	ClientSecret string
}

type Config struct {
	Credentials Credentials
	TenantID    string
	Region      string
	Environment string
	Logger      zerolog.Logger

	// Optional overrides.
	HTTPClient *http.Client
	BaseURL    string
	TokenURL   string
	Scope      string
}

type Client struct {
	http     *http.Client
	baseURL  string
	tokenURL string
	scope    string
	creds    Credentials
	log      zerolog.Logger
	now      func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func New(cfg Config) (*Client, error) {
	var errs []error
	if cfg.Credentials.ClientID == "" {
		errs = append(errs, errors.New("client id is required"))
	}
	if cfg.Credentials.ClientSecret == "" {
		errs = append(errs, errors.New("client secret is required"))
	}
	if cfg.TenantID == "" {
		errs = append(errs, errors.New("tenant id is required"))
	}
	if cfg.BaseURL == "" && cfg.Region == "" {
		errs = append(errs, errors.New("region is required"))
	}
	if cfg.BaseURL == "" && cfg.Environment == "" {
		errs = append(errs, errors.New("environment is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("commerce client: %w", err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURL(cfg.Region, cfg.Environment, cfg.TenantID)
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	scope := cfg.Scope
	if scope == "" {
		scope = DefaultScope
	}

	return &Client{
		http:     hc,
		baseURL:  strings.TrimRight(baseURL, "/"),
		tokenURL: tokenURL,
		scope:    scope,
		creds:    cfg.Credentials,
		log:      cfg.Logger.With().Str("component", "commerce").Logger(),
		now:      time.Now,
	}, nil
}

// BaseURL returns the tenant's API root for a region and environment.
func BaseURL(region, environment, tenantID string) string {
	host := region
	if env := strings.ToLower(environment); env != "" && env != "production" {
		host += "-" + env
	}
	return fmt.Sprintf("https://%s.api.commerce.adobe.com/%s", host, tenantID)
}

func (c *Client) CreateProductMetadata(ctx context.Context, batch []records.Record) (Response, error) {
	return c.post(ctx, "/v1/catalog/products/metadata", batch)
}

func (c *Client) DeleteProductMetadata(ctx context.Context, batch []records.Record) (Response, error) {
	return c.post(ctx, "/v1/catalog/products/metadata/delete", batch)
}

func (c *Client) CreateProducts(ctx context.Context, batch []records.Record) (Response, error) {
	return c.post(ctx, "/v1/catalog/products", batch)
}

func (c *Client) DeleteProducts(ctx context.Context, batch []records.Record) (Response, error) {
	return c.post(ctx, "/v1/catalog/products/delete", batch)
}

func (c *Client) CreatePriceBooks(ctx context.Context, batch []records.Record) (Response, error) {
	return c.post(ctx, "/v1/catalog/price-books", batch)
}

func (c *Client) DeletePriceBooks(ctx context.Context, batch []records.Record) (Response, error) {
	return c.post(ctx, "/v1/catalog/price-books/delete", batch)
}

func (c *Client) CreatePrices(ctx context.Context, batch []records.Record) (Response, error) {
	return c.post(ctx, "/v1/catalog/products/prices", batch)
}

func (c *Client) DeletePrices(ctx context.Context, batch []records.Record) (Response, error) {
	return c.post(ctx, "/v1/catalog/products/prices/delete", batch)
}

func (c *Client) post(ctx context.Context, path string, batch []records.Record) (Response, error) {
	if len(batch) > MaxBatch {
		return Response{}, ErrBatchTooLarge
	}
	if batch == nil {
		batch = []records.Record{}
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return Response{}, fmt.Errorf("encode batch: %w", err)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read %s response: %w", path, err)
	}

	c.log.Debug().
		Str("path", path).
		Int("items", len(batch)).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("[COMMERCE] request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, &APIError{Status: resp.StatusCode, Path: path, Body: string(raw)}
	}
	return decodeResponse(resp.StatusCode, raw)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiresAt) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.creds.ClientID)
	form.Set("client_secret", c.creds.ClientSecret)
	form.Set("scope", c.scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{Status: resp.StatusCode, Path: "token", Body: string(raw)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("token response has no access_token")
	}

	ttl := time.Duration(tr.ExpiresIn) * time.Second
	c.token = tr.AccessToken
	c.expiresAt = c.now().Add(ttl - tokenSkew)
	c.log.Debug().Time("expires_at", c.expiresAt).Msg("[COMMERCE] token refreshed")
	return c.token, nil
}
