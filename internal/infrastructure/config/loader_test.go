package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every XDG lookup at temp dirs and clears PAGEKIT_ overrides.
func isolate(t *testing.T) (configDir, cacheHome, downloadDir string) {
	t.Helper()
	root := t.TempDir()
	configDir = filepath.Join(root, "config")
	cacheHome = filepath.Join(root, "cache")
	downloadDir = filepath.Join(root, "downloads")

	t.Setenv("ENV", "")
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_DOWNLOAD_DIR", downloadDir)
	for _, key := range []string{
		"PAGEKIT_LOG_LEVEL",
		"PAGEKIT_LOG_FORMAT",
		"PAGEKIT_FAVICON_TOUCH_ICONS_ENABLED",
		"PAGEKIT_DOWNLOADS_DOWNLOAD_UNRENDERABLE",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return configDir, cacheHome, downloadDir
}

func loadManager(t *testing.T, configDir string) *Manager {
	t.Helper()
	m, err := NewManagerWithDir(configDir)
	require.NoError(t, err)
	require.NoError(t, m.Load())
	return m
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, dirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), filePerm))
}

func TestManager_LoadCreatesDefaultFile(t *testing.T) {
	configDir, cacheHome, downloadDir := isolate(t)

	m := loadManager(t, configDir)

	assert.FileExists(t, filepath.Join(configDir, "config.toml"))
	assert.Equal(t, filepath.Join(configDir, "config.toml"), m.GetConfigFile())

	cfg := m.Get()
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, LogFormatConsole, cfg.Logging.Format)
	assert.False(t, cfg.Favicon.TouchIconsEnabled)
	assert.Equal(t, defaultExportSize, cfg.Favicon.ExportSize)
	assert.Equal(t, filepath.Join(cacheHome, appName, "favicons"), cfg.Favicon.CacheDir)
	assert.Equal(t, downloadDir, cfg.Downloads.Path)
	assert.False(t, cfg.Downloads.DownloadUnrenderable)
	assert.True(t, cfg.Downloads.HistoryEnabled)
	assert.Equal(t, filepath.Join(filepath.Dir(cacheHome), "data", appName, appName+".db"), cfg.Downloads.HistoryDB)
}

func TestManager_LoadReadsFile(t *testing.T) {
	configDir, _, _ := isolate(t)
	writeConfig(t, configDir, `
[favicon]
touch_icons_enabled = true
export_size = 64
cache_dir = "/tmp/icons"

[downloads]
download_unrenderable = true
`)

	cfg := loadManager(t, configDir).Get()

	assert.True(t, cfg.Favicon.TouchIconsEnabled)
	assert.Equal(t, 64, cfg.Favicon.ExportSize)
	assert.Equal(t, "/tmp/icons", cfg.Favicon.CacheDir)
	assert.Equal(t, defaultFetchTimeoutMs, cfg.Favicon.FetchTimeoutMs, "unset keys keep defaults")
	assert.True(t, cfg.Downloads.DownloadUnrenderable)
}

func TestManager_EnvOverrides(t *testing.T) {
	configDir, _, _ := isolate(t)
	t.Setenv("PAGEKIT_LOG_LEVEL", "debug")
	t.Setenv("PAGEKIT_LOG_FORMAT", "json")
	t.Setenv("PAGEKIT_FAVICON_TOUCH_ICONS_ENABLED", "true")

	cfg := loadManager(t, configDir).Get()

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.True(t, cfg.Favicon.TouchIconsEnabled)
}

func TestManager_LoadRejectsInvalidValues(t *testing.T) {
	configDir, _, _ := isolate(t)
	writeConfig(t, configDir, `
[logging]
level = "verbose"

[favicon]
export_size = 0
max_icon_bytes = -1
`)

	m, err := NewManagerWithDir(configDir)
	require.NoError(t, err)

	err = m.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "favicon.export_size")
	assert.Contains(t, err.Error(), "favicon.max_icon_bytes")
}

func TestManager_LoadRejectsMalformedFile(t *testing.T) {
	configDir, _, _ := isolate(t)
	writeConfig(t, configDir, "[favicon\n")

	m, err := NewManagerWithDir(configDir)
	require.NoError(t, err)
	assert.Error(t, m.Load())
}

func TestManager_Set(t *testing.T) {
	configDir, _, _ := isolate(t)
	m := loadManager(t, configDir)

	require.NoError(t, m.Set("favicon.touch_icons_enabled", "true"))
	assert.True(t, m.Get().Favicon.TouchIconsEnabled)

	reloaded := loadManager(t, configDir)
	assert.True(t, reloaded.Get().Favicon.TouchIconsEnabled, "value is persisted")

	err := m.Set("favicon.no_such_key", "1")
	assert.ErrorContains(t, err, "unknown config key")

	err = m.Set("favicon.export_size", "0")
	assert.ErrorContains(t, err, "favicon.export_size")
	assert.Equal(t, defaultExportSize, m.Get().Favicon.ExportSize, "invalid value is not applied")
}

func TestManager_GetReturnsCopy(t *testing.T) {
	configDir, _, _ := isolate(t)
	m := loadManager(t, configDir)

	cfg := m.Get()
	cfg.Favicon.ExportSize = 1

	assert.Equal(t, defaultExportSize, m.Get().Favicon.ExportSize)
}

func TestManager_WatchReloadsOnChange(t *testing.T) {
	configDir, _, _ := isolate(t)
	m := loadManager(t, configDir)

	changed := make(chan *Config, 4)
	m.OnConfigChange(func(cfg *Config) { changed <- cfg })
	require.NoError(t, m.Watch())
	require.NoError(t, m.Watch(), "second call is a no-op")

	writeConfig(t, configDir, "[favicon]\ntouch_icons_enabled = true\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changed:
			if cfg.Favicon.TouchIconsEnabled {
				assert.True(t, m.Get().Favicon.TouchIconsEnabled)
				return
			}
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
}

func TestSetDefaults(t *testing.T) {
	mgr := &Manager{viper: viper.New()}
	mgr.setDefaults()

	assert.Equal(t, "info", mgr.viper.GetString("logging.level"))
	assert.Equal(t, defaultMaxIconBytes, mgr.viper.GetInt("favicon.max_icon_bytes"))
	assert.Contains(t, mgr.viper.AllKeys(), "downloads.download_unrenderable")
}

func TestNormalizeConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = " WARN "
	cfg.Logging.Format = LogFormat("yaml")
	cfg.Favicon.Concurrency = 0

	normalizeConfig(cfg)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, LogFormatConsole, cfg.Logging.Format)
	assert.Equal(t, defaultConcurrency, cfg.Favicon.Concurrency)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Downloads"), expandHome("~/Downloads"))
	assert.Equal(t, "/srv/files", expandHome("/srv/files"))
	assert.Equal(t, "~user/x", expandHome("~user/x"))
}
