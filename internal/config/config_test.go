package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults without a config file", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		cfg, v, err := Load("")
		require.NoError(t, err)
		require.NotNil(t, v)

		assert.Equal(t, "https://dramabox.sansekai.my.id/api/dramabox", cfg.API.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.API.Timeout)
		assert.Equal(t, 0, cfg.API.MaxRetries)
		assert.Equal(t, 9, cfg.Catalog.PageSize)
		assert.Equal(t, 300*time.Millisecond, cfg.Search.Debounce)
		assert.Equal(t, 5, cfg.Search.RecentLimit)
		assert.Equal(t, "sqlite", cfg.Store.Backend)
	})

	t.Run("reads yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "api:\n  base_url: http://localhost:9000\n  timeout: 2s\ncatalog:\n  page_size: 12\nstore:\n  backend: memory\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, _, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:9000", cfg.API.BaseURL)
		assert.Equal(t, 2*time.Second, cfg.API.Timeout)
		assert.Equal(t, 12, cfg.Catalog.PageSize)
		assert.Equal(t, "memory", cfg.Store.Backend)
		assert.Equal(t, 300*time.Millisecond, cfg.Search.Debounce)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("CICIDRACI_API_BASE_URL", "http://env.example")

		cfg, _, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "http://env.example", cfg.API.BaseURL)
	})

	t.Run("rejects unknown store backend", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: localstorage\n"), 0644))

		_, _, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store.backend")
	})
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout: 10s")
	assert.Contains(t, string(data), "debounce: 300ms")

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().API.BaseURL, cfg.API.BaseURL)
	assert.Equal(t, Default().API.Timeout, cfg.API.Timeout)
	assert.Equal(t, Default().Search.Debounce, cfg.Search.Debounce)

	err = WriteDefault(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	assert.NoError(t, WriteDefault(path, true))
}

func TestColoredTextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewColoredTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger.Debug("hidden")
	logger.With("component", "catalog").Warn("feed failed", "category", "latest")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "\033[33m"))
	assert.Contains(t, out, "component=catalog")
	assert.Contains(t, out, "category=latest")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("nonsense"))
}

func TestEncode(t *testing.T) {
	cfg := Default()
	cfg.API.Timeout = 1500 * time.Millisecond
	cfg.Search.Debounce = 0

	data, err := Encode(cfg)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "timeout: 1.5s")
	assert.Contains(t, out, "debounce: 0s")
	assert.NotContains(t, out, "1500000000")
}

func TestSetLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := InitLogger(&LoggingConfig{Level: "info", File: path})
	require.NoError(t, err)
	t.Cleanup(func() { SetLogLevel("info") })

	logger.Debug("before reload")
	SetLogLevel("debug")
	logger.Debug("after reload")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "before reload")
	assert.Contains(t, string(data), "after reload")
}
