package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiStub struct {
	mu    sync.Mutex
	paths []string
	sizes []int
	fail  map[string]int // path -> 1-based call number that answers 500
	seen  map[string]int
}

func (a *apiStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"access_token":"tok","expires_in":3600}`)
	})
	mux.HandleFunc("/tenant/", func(w http.ResponseWriter, r *http.Request) {
		var batch []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&batch))

		a.mu.Lock()
		defer a.mu.Unlock()
		path := strings.TrimPrefix(r.URL.Path, "/tenant")
		a.seen[path]++
		a.paths = append(a.paths, path)
		a.sizes = append(a.sizes, len(batch))
		if a.fail[path] == a.seen[path] {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"message":"try later"}`)
			return
		}
		_, _ = fmt.Fprintf(w, `{"status":"ACCEPTED","acceptedCount":%d}`, len(batch))
	})
	return mux
}

func writeJSON(t *testing.T, dir, name string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0o600))
}

func seedData(t *testing.T, products int) string {
	t.Helper()
	dir := t.TempDir()
	writeJSON(t, dir, "metadata.json", []map[string]any{{"code": "color", "source": map[string]any{"locale": "en-US"}, "label": "Color"}})
	ps := make([]map[string]any, products)
	for i := range ps {
		ps[i] = map[string]any{"sku": fmt.Sprintf("P%03d", i), "source": map[string]any{"locale": "en-US"}, "name": "Tee"}
	}
	writeJSON(t, dir, "products.json", ps)
	writeJSON(t, dir, "pricebooks.json", []map[string]any{{"priceBookId": "west", "currency": "USD"}})
	writeJSON(t, dir, "prices.json", []map[string]any{{"sku": "P000", "priceBookId": "west", "regular": 9.99}})
	return dir
}

func setEnv(t *testing.T, srvURL string) {
	t.Helper()
	t.Setenv("CLIENT_ID", "id")
	t.Setenv("CLIENT_SECRET", "secret")
	t.Setenv("TENANT_ID", "tenant")
	t.Setenv("REGION", "na1")
	t.Setenv("ENVIRONMENT", "sandbox")
	t.Setenv("COMMERCE_API_URL", srvURL+"/tenant")
	t.Setenv("COMMERCE_TOKEN_URL", srvURL+"/token")
	t.Setenv("MONGO_HOST", "")
	t.Setenv("PG_HOST", "")
	t.Setenv("DATA_DIR", "")
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestIngest_endToEnd(t *testing.T) {
	stub := &apiStub{fail: map[string]int{"/v1/catalog/products": 2}, seen: map[string]int{}}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()
	setEnv(t, srv.URL)
	dir := seedData(t, 250)

	logs, err := execute("ingest", "--data-dir", dir)
	require.NoError(t, err, "entity failures do not fail the run")

	assert.Equal(t, []string{
		"/v1/catalog/products/metadata",
		"/v1/catalog/products",
		"/v1/catalog/products",
		"/v1/catalog/price-books",
		"/v1/catalog/products/prices",
	}, stub.paths)
	assert.Equal(t, []int{1, 100, 100, 1, 1}, stub.sizes)

	assert.Contains(t, logs, "Successfully ingested 1 out of 1 items")
	assert.Contains(t, logs, "Error ingesting products")
	assert.NotContains(t, logs, "out of 250 products")
	assert.Contains(t, logs, "Successfully ingested 1 out of 1 prices")
	assert.Contains(t, logs, "[RUN][DONE]")
}

func TestReset_endToEnd(t *testing.T) {
	stub := &apiStub{seen: map[string]int{}}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()
	setEnv(t, srv.URL)
	t.Setenv("DATA_DIR", seedData(t, 2))

	logs, err := execute("reset")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/v1/catalog/products/prices/delete",
		"/v1/catalog/price-books/delete",
		"/v1/catalog/products/delete",
		"/v1/catalog/products/metadata/delete",
	}, stub.paths)
	assert.Contains(t, logs, "Successfully deleted 2 out of 2 products")
}

func TestIngest_missingConfigStopsBeforeAnyCall(t *testing.T) {
	stub := &apiStub{seen: map[string]int{}}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()
	setEnv(t, srv.URL)
	t.Setenv("CLIENT_SECRET", "")

	_, err := execute("ingest", "--data-dir", filepath.Join(t.TempDir(), "does-not-exist"))
	require.EqualError(t, err, "missing required environment variable: CLIENT_SECRET")
	assert.Empty(t, stub.paths)
}

func TestIngest_rejectsUnknownFormat(t *testing.T) {
	stub := &apiStub{seen: map[string]int{}}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()
	setEnv(t, srv.URL)

	_, err := execute("ingest", "--format", "csv")
	assert.ErrorContains(t, err, "unsupported format")
	assert.Empty(t, stub.paths)
}

func TestRootCmd_subcommands(t *testing.T) {
	cmd := NewRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "ingest")
	assert.Contains(t, names, "reset")
}
