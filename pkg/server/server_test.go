package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denysvitali/asset-finder/internal/models"
	"github.com/denysvitali/asset-finder/pkg/config"
	"github.com/denysvitali/asset-finder/pkg/server"
)

func writeAsset(t *testing.T, root, rel string, size int) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, make([]byte, size), 0644))
}

func newTestConfig(assetsDir string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:        8080,
			AssetsDir:   assetsDir,
			MountPrefix: "/public",
		},
		Search: config.SearchConfig{
			DefaultKeyword: "GreatLearning",
		},
		Telemetry: config.TelemetryConfig{
			Enabled: false,
		},
	}
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupTestServer(t *testing.T, assetsDir string) *server.Server {
	srv, err := server.New(newTestConfig(assetsDir), newTestLogger())
	require.NoError(t, err, "Failed to create server")
	return srv
}

func setupFixture(t *testing.T) string {
	root := t.TempDir()
	writeAsset(t, root, "a/logo.png", 2048)
	writeAsset(t, root, "a/notes.txt", 10)
	writeAsset(t, root, "a/logo.css", 10)
	writeAsset(t, root, "b/readme_logo.md", 300)
	writeAsset(t, root, "GreatLearning-banner.jpg", 1536)
	return root
}

func doGet(t *testing.T, srv *server.Server, url string) *httptest.ResponseRecorder {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rr, req)
	return rr
}

func TestHandleIndex_RendersGroups(t *testing.T) {
	srv := setupTestServer(t, setupFixture(t))

	rr := doGet(t, srv, "/?keyword=logo")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")

	body := rr.Body.String()
	assert.Contains(t, body, `<img src="/public/a/logo.png" alt="logo.png">`)
	assert.Contains(t, body, "2.0 KB")
	assert.Contains(t, body, `href="/public/b/readme_logo.md"`)
	assert.Contains(t, body, "Total Files Found: <b>3</b>")
	assert.Contains(t, body, "1 files were removed because of extension <b>.css</b>")
	assert.NotContains(t, body, "notes.txt")
}

func TestHandleIndex_DefaultKeyword(t *testing.T) {
	srv := setupTestServer(t, setupFixture(t))

	rr := doGet(t, srv, "/")

	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `value="GreatLearning"`)
	assert.Contains(t, body, "/public/GreatLearning-banner.jpg")
	assert.Contains(t, body, "No other files found.")
}

func TestHandleIndex_EscapesKeyword(t *testing.T) {
	srv := setupTestServer(t, setupFixture(t))

	rr := doGet(t, srv, "/?keyword=%3Cscript%3E")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "<script>")
	assert.Contains(t, rr.Body.String(), "No image files found.")
}

func TestHandleIndex_MissingAssetsDir(t *testing.T) {
	srv := setupTestServer(t, filepath.Join(t.TempDir(), "missing"))

	rr := doGet(t, srv, "/?keyword=logo")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Search failed")
}

func TestHandleSearch_JSON(t *testing.T) {
	srv := setupTestServer(t, setupFixture(t))

	rr := doGet(t, srv, "/api/search?keyword=LoGo")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, "LoGo", resp.Keyword)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Images, 1)
	assert.Equal(t, "/public/a/logo.png", resp.Images[0].URL)
	assert.Equal(t, int64(2048), resp.Images[0].Bytes)
	require.Len(t, resp.Others, 1)
	assert.Equal(t, ".md", resp.Others[0].Ext)
	assert.Equal(t, []string{".css"}, resp.DroppedExtensions)
}

func TestHandleSearch_MissingAssetsDir(t *testing.T) {
	srv := setupTestServer(t, filepath.Join(t.TempDir(), "missing"))

	rr := doGet(t, srv, "/api/search?keyword=logo")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "missing")
}

func TestStaticAssets(t *testing.T) {
	root := setupFixture(t)
	srv := setupTestServer(t, root)

	rr := doGet(t, srv, "/public/a/logo.png")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2048, rr.Body.Len())

	rr = doGet(t, srv, "/public/a/nope.png")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleAlive_Success(t *testing.T) {
	srv := setupTestServer(t, t.TempDir())

	rr := doGet(t, srv, "/alive")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestHandleServerInfo_Success(t *testing.T) {
	root := t.TempDir()
	srv := setupTestServer(t, root)

	rr := doGet(t, srv, "/server_info")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.ServerInfoResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.GreaterOrEqual(t, resp.Uptime, 0.0)
	assert.Equal(t, root, resp.AssetsDir)
	assert.Equal(t, "/public", resp.MountPrefix)
	assert.GreaterOrEqual(t, resp.CPUCount, 1)
}

func TestNew_RejectsMountPrefixOnApiRoute(t *testing.T) {
	cfg := newTestConfig(t.TempDir())
	cfg.Server.MountPrefix = "/api"

	var srv *server.Server
	var err error
	assert.NotPanics(t, func() {
		srv, err = server.New(cfg, newTestLogger())
	})
	assert.Error(t, err)
	assert.Nil(t, srv)
}

func doGetWithExpiredDeadline(t *testing.T, srv *server.Server, url string) *httptest.ResponseRecorder {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rr, req)
	return rr
}

func TestHandleSearch_DeadlineReturnsGatewayTimeout(t *testing.T) {
	cfg := newTestConfig(setupFixture(t))
	cfg.Search.Timeout = time.Minute

	srv, err := server.New(cfg, newTestLogger())
	require.NoError(t, err)

	rr := doGetWithExpiredDeadline(t, srv, "/api/search?keyword=logo")

	assert.Equal(t, http.StatusGatewayTimeout, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "deadline exceeded")
}

func TestHandleIndex_DeadlineReturnsGatewayTimeout(t *testing.T) {
	srv := setupTestServer(t, setupFixture(t))

	rr := doGetWithExpiredDeadline(t, srv, "/?keyword=logo")

	assert.Equal(t, http.StatusGatewayTimeout, rr.Code)
	assert.Contains(t, rr.Body.String(), "Search failed")
}

func TestStaticAssets_EscapedURL(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "kit/logo#1.png", 64)
	srv := setupTestServer(t, root)

	rr := doGet(t, srv, "/api/search?keyword=logo")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Images, 1)
	assert.Equal(t, "/public/kit/logo%231.png", resp.Images[0].URL)

	rr = doGet(t, srv, resp.Images[0].URL)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 64, rr.Body.Len())
}
