package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/njchilds90/goderiv"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func postTool(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, goderiv.ToolResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/tool", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var resp goderiv.ToolResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestTool_Diff(t *testing.T) {
	h := newHandler(DefaultConfig(), zap.NewNop())
	rec, resp := postTool(t, h, `{"tool":"diff","params":{"expr":
		{"type":"pow","base":{"type":"x"},"exp":{"type":"int","value":"2"}}}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "((2) * (x))", resp.String)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestTool_MethodNotAllowed(t *testing.T) {
	h := newHandler(DefaultConfig(), zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/tool", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTool_BadJSON(t *testing.T) {
	h := newHandler(DefaultConfig(), zap.NewNop())

	rec, _ := postTool(t, h, `{"tool":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = postTool(t, h, `{"tool":"diff","bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = postTool(t, h, `{"tool":"diff"} {}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTool_BodyLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBodyBytes = 16
	h := newHandler(cfg, zap.NewNop())
	rec, _ := postTool(t, h, `{"tool":"simplify","params":{"expr":{"type":"x"}}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTool_SizeLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTermSize = 2
	h := newHandler(cfg, zap.NewNop())
	rec, resp := postTool(t, h, `{"tool":"simplify","params":{"expr":
		{"type":"add","left":{"type":"x"},"right":{"type":"x"}}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, resp.Error, "limit is 2")
}

func TestSchemaAndHealth(t *testing.T) {
	h := newHandler(DefaultConfig(), zap.NewNop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schema", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var spec map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.Contains(t, spec, "tools")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	freeAddr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := DefaultConfig()
	cfg.Addr = freeAddr
	srv := newServer(cfg, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, time.Second, zap.NewNop()) }()

	client := &http.Client{Timeout: time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + freeAddr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	client.CloseIdleConnections()
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "server.yaml")
		require.NoError(t, os.WriteFile(path, []byte("addr: \":9090\"\nmax_term_size: 50\nread_timeout: 2s\n"), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, 50, cfg.MaxTermSize)
		assert.Equal(t, 2*time.Second, cfg.duration(cfg.ReadTimeout))
		assert.Equal(t, DefaultConfig().MaxOrder, cfg.MaxOrder)
	})

	t.Run("negative limits are rejected", func(t *testing.T) {
		for _, body := range []string{"max_term_size: -1\n", "max_order: -3\n"} {
			path := filepath.Join(t.TempDir(), "server.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))

			_, err := LoadConfig(path)
			assert.ErrorContains(t, err, "must not be negative", body)
		}
	})

	t.Run("zero limits are allowed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "server.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_term_size: 0\nmax_order: 0\n"), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Zero(t, cfg.MaxTermSize)
		assert.Zero(t, cfg.MaxOrder)
	})

	t.Run("invalid duration is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "server.yaml")
		require.NoError(t, os.WriteFile(path, []byte("idle_timeout: soon\n"), 0644))

		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "idle_timeout")
	})
}
