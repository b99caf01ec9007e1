package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justchokingaround/cicidraci/internal/config"
)

func setFlags(t *testing.T, debug bool, level string, plain bool) {
	t.Helper()
	prevDebug, prevLevel, prevPlain := debugMode, logLevel, noColor
	debugMode, logLevel, noColor = debug, level, plain
	t.Cleanup(func() {
		debugMode, logLevel, noColor = prevDebug, prevLevel, prevPlain
	})
}

func TestApplyFlagOverrides(t *testing.T) {
	t.Run("debug raises the log level", func(t *testing.T) {
		setFlags(t, true, "", false)
		c := config.Default()
		applyFlagOverrides(c)
		assert.True(t, c.Advanced.Debug)
		assert.Equal(t, "debug", c.Logging.Level)
		assert.True(t, c.Logging.Color)
	})

	t.Run("explicit log level wins over debug", func(t *testing.T) {
		setFlags(t, true, "warn", false)
		c := config.Default()
		applyFlagOverrides(c)
		assert.True(t, c.Advanced.Debug)
		assert.Equal(t, "warn", c.Logging.Level)
	})

	t.Run("no-color disables colored logs", func(t *testing.T) {
		setFlags(t, false, "", true)
		c := config.Default()
		applyFlagOverrides(c)
		assert.False(t, c.Advanced.Debug)
		assert.Equal(t, "info", c.Logging.Level)
		assert.False(t, c.Logging.Color)
	})
}

func TestReloadConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	setFlags(t, false, "error", true)
	t.Cleanup(func() {
		setConfig(nil)
		config.SetLogLevel("info")
	})

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteDefault(path, false))
	loaded, v, err := config.Load(path)
	require.NoError(t, err)
	applyFlagOverrides(loaded)
	loaded.Logging.File = filepath.Join(t.TempDir(), "cicidraci.log")
	setConfig(loaded)

	write := func(c *config.Config) {
		data, err := config.Encode(c)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, data, 0644))
		require.NoError(t, v.ReadInConfig())
	}

	t.Run("keeps flag overrides and log file", func(t *testing.T) {
		edited := config.Default()
		edited.Catalog.PageSize = 12
		edited.Logging.Level = "debug"
		write(edited)

		require.NoError(t, reloadConfig(v))
		got := currentConfig()
		assert.Equal(t, 12, got.Catalog.PageSize)
		assert.Equal(t, "error", got.Logging.Level)
		assert.False(t, got.Logging.Color)
		assert.Equal(t, loaded.Logging.File, got.Logging.File)
	})

	t.Run("invalid file leaves the config in place", func(t *testing.T) {
		before := currentConfig()
		edited := config.Default()
		edited.Store.Backend = "bogus"
		write(edited)

		err := reloadConfig(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store.backend")
		assert.Same(t, before, currentConfig())
	})
}
