package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/blueprint/pkg/cache"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/pipeline"
	"github.com/matzehuels/blueprint/pkg/repository/memory"
)

const importDoc = `{
  "projectVersion": {"name": "v1"},
  "zones": [{"id": 1, "name": "Building"}],
  "devices": [
    {"id": 7, "name": "Gateway", "_zoneId_": 1},
    {"id": 8, "name": "Sensor", "_protocolAdapterName_": "zigbee", "_protocolAdapterVersion_": "3"}
  ],
  "device_device": [[7, 8]]
}`

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	store := memory.New()
	store.AddProtocolAdapter(&model.ProtocolAdapter{Name: "zwave", Version: "2.0"})

	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(store, c, cache.NewScopedKeyer(nil, "test:"), logger)
	t.Cleanup(func() { _ = runner.Close() })

	ts := httptest.NewServer(New(runner, logger, opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type importResponse struct {
	ID        string   `json:"id"`
	VersionID int      `json:"version_id"`
	Errors    []string `json:"errors"`
	Stats     struct {
		Devices int `json:"devices"`
	} `json:"stats"`
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestRequestIDPropagates(t *testing.T) {
	ts := newTestServer(t, Options{})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestImportThenExport(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Post(ts.URL+"/api/v1/imports", "application/json", strings.NewReader(importDoc))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	res := decode[importResponse](t, resp)
	assert.NotEmpty(t, res.ID)
	assert.Positive(t, res.VersionID)
	assert.Equal(t, 2, res.Stats.Devices)
	assert.Equal(t, []string{`ProtocolAdapter not found [name="zigbee", version="3"]`}, res.Errors)

	exportURL := ts.URL + "/api/v1/versions/" + itoa(res.VersionID) + "/export"

	resp, err = http.Get(exportURL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	doc := decode[map[string]any](t, resp)
	assert.Len(t, doc["devices"], 2)
	assert.Len(t, doc["device_device"], 1)

	resp, err = http.Get(exportURL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))

	resp, err = http.Get(exportURL + "?refresh=true")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
}

func TestImportDryRun(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Post(ts.URL+"/api/v1/imports?dry_run=true", "application/json", strings.NewReader(importDoc))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[importResponse](t, resp)
	assert.Zero(t, res.VersionID)
}

func TestErrorStatus(t *testing.T) {
	ts := newTestServer(t, Options{MaxDocumentBytes: 64})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed document", http.MethodPost, "/api/v1/imports", `{"projectVersion": `, http.StatusBadRequest, "GENERIC_ERROR"},
		{"too large", http.MethodPost, "/api/v1/imports", importDoc, http.StatusRequestEntityTooLarge, "DOCUMENT_TOO_LARGE"},
		{"bad id", http.MethodGet, "/api/v1/versions/abc/export", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"zero id", http.MethodGet, "/api/v1/versions/0/export", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown version", http.MethodGet, "/api/v1/versions/999/export", "", http.StatusNotFound, "NOT_FOUND"},
		{"bad graph format", http.MethodPost, "/api/v1/graphs?format=png", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, ts.URL+tt.path, strings.NewReader(tt.body))
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode[errorBody](t, resp)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestGraph(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Post(ts.URL+"/api/v1/graphs?format=dot&kinds=devices,zones&references=true",
		"application/json", strings.NewReader(importDoc))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/vnd.graphviz", resp.Header.Get("Content-Type"))
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"d7" -> "d8";`)
	assert.Contains(t, string(body), `"d7" -> "z1" [style=dashed`)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{errors.New(errors.ErrCodeTimeout, "slow"), http.StatusGatewayTimeout},
		{errors.New(errors.ErrCodeStorage, "down"), http.StatusServiceUnavailable},
		{errors.New(errors.ErrCodeInternal, "bug"), http.StatusInternalServerError},
		{context.Canceled, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusOf(tt.err), tt.err.Error())
	}
}

func TestRequestTimeout(t *testing.T) {
	s := New(pipeline.NewRunner(memory.New(), nil, nil, log.New(io.Discard)), log.New(io.Discard), Options{RequestTimeout: time.Nanosecond})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(importDoc))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
