package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config         *Config
	viper          *viper.Viper
	configDir      string
	mu             sync.RWMutex
	callbacks      []func(*Config)
	watching       bool
	skipNextReload bool
}

// NewManager creates a configuration manager rooted at the XDG config directory.
func NewManager() (*Manager, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w\nCheck XDG_CONFIG_HOME environment variable or HOME directory", err)
	}
	return NewManagerWithDir(configDir)
}

// NewManagerWithDir creates a configuration manager reading config.toml from dir.
func NewManagerWithDir(configDir string) (*Manager, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	// PAGEKIT_FAVICON_CACHE_DIR, PAGEKIT_DOWNLOADS_PATH, ...
	v.SetEnvPrefix("PAGEKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("logging.level", "PAGEKIT_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind PAGEKIT_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "PAGEKIT_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind PAGEKIT_LOG_FORMAT: %w", err)
	}

	return &Manager{
		viper:     v,
		configDir: configDir,
		callbacks: make([]func(*Config), 0),
	}, nil
}

// Load loads the configuration from file and environment variables.
// A default config file is written on first run.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.configDir, dirPerm); err != nil {
		return fmt.Errorf("failed to ensure config directory: %w", err)
	}

	m.setDefaults()

	if err := m.readConfigFile(); err != nil {
		return err
	}

	config, err := m.decode()
	if err != nil {
		return err
	}

	m.config = config
	return nil
}

func (m *Manager) readConfigFile() error {
	err := m.viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to read config file at %s: %w\nCheck the file format (must be valid TOML) and permissions", m.configFilePath(), err)
	}

	if createErr := m.createDefaultConfig(); createErr != nil {
		return fmt.Errorf("failed to create default config at %s: %w", m.configDir, createErr)
	}
	if rereadErr := m.viper.ReadInConfig(); rereadErr != nil {
		return fmt.Errorf("failed to read newly created config file: %w", rereadErr)
	}
	return nil
}

// decode unmarshals, resolves, normalizes and validates the viper state.
func (m *Manager) decode() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf(
			"failed to parse config file at %s: %w\nCheck for syntax errors, invalid values, or type mismatches",
			m.viper.ConfigFileUsed(),
			err,
		)
	}
	if err := resolvePaths(config); err != nil {
		return nil, err
	}
	normalizeConfig(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func resolvePaths(config *Config) error {
	if config.Favicon.CacheDir == "" {
		dir, err := GetFaviconCacheDir()
		if err != nil {
			return fmt.Errorf("failed to get favicon cache dir: %w", err)
		}
		config.Favicon.CacheDir = dir
	}
	if config.Downloads.Path == "" {
		dir, err := GetDownloadDir()
		if err != nil {
			return fmt.Errorf("failed to get download dir: %w", err)
		}
		config.Downloads.Path = dir
	}
	if config.Downloads.HistoryDB == "" {
		path, err := GetDatabaseFile()
		if err != nil {
			return fmt.Errorf("failed to get history database path: %w", err)
		}
		config.Downloads.HistoryDB = path
	}
	config.Favicon.CacheDir = expandHome(config.Favicon.CacheDir)
	config.Downloads.Path = expandHome(config.Downloads.Path)
	config.Downloads.HistoryDB = expandHome(config.Downloads.HistoryDB)
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func normalizeConfig(config *Config) {
	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	if config.Logging.Level == "" {
		config.Logging.Level = defaultLogLevel
	}

	switch LogFormat(strings.ToLower(string(config.Logging.Format))) {
	case LogFormatJSON:
		config.Logging.Format = LogFormatJSON
	default:
		config.Logging.Format = LogFormatConsole
	}

	if config.Favicon.Concurrency <= 0 {
		config.Favicon.Concurrency = defaultConcurrency
	}
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	configCopy := *m.config
	return &configCopy
}

// Set assigns a single key, validates the result and writes the file.
func (m *Manager) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key = strings.ToLower(key)
	if !slices.Contains(m.viper.AllKeys(), key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	previous := m.viper.Get(key)
	m.viper.Set(key, value)

	config, err := m.decode()
	if err != nil {
		m.viper.Set(key, previous)
		return err
	}

	if err := WriteConfigOrdered(config, m.configFilePath()); err != nil {
		return err
	}
	if m.watching {
		m.skipNextReload = true
	}

	m.config = config
	return nil
}

// GetConfigFile returns the path to the configuration file being used.
func (m *Manager) GetConfigFile() string {
	if used := m.viper.ConfigFileUsed(); used != "" {
		return used
	}
	return m.configFilePath()
}

func (m *Manager) configFilePath() string {
	return filepath.Join(m.configDir, "config.toml")
}

// createDefaultConfig writes the default configuration file.
func (m *Manager) createDefaultConfig() error {
	if err := os.MkdirAll(m.configDir, dirPerm); err != nil {
		return err
	}
	return WriteConfigOrdered(DefaultConfig(), m.configFilePath())
}

// setDefaults registers every key so env overrides and Set can find them.
func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", string(defaults.Logging.Format))

	m.viper.SetDefault("favicon.touch_icons_enabled", defaults.Favicon.TouchIconsEnabled)
	m.viper.SetDefault("favicon.cache_dir", defaults.Favicon.CacheDir)
	m.viper.SetDefault("favicon.fetch_timeout_ms", defaults.Favicon.FetchTimeoutMs)
	m.viper.SetDefault("favicon.max_icon_bytes", defaults.Favicon.MaxIconBytes)
	m.viper.SetDefault("favicon.export_size", defaults.Favicon.ExportSize)
	m.viper.SetDefault("favicon.concurrency", defaults.Favicon.Concurrency)

	m.viper.SetDefault("downloads.path", defaults.Downloads.Path)
	m.viper.SetDefault("downloads.download_unrenderable", defaults.Downloads.DownloadUnrenderable)
	m.viper.SetDefault("downloads.request_timeout_ms", defaults.Downloads.RequestTimeoutMs)
	m.viper.SetDefault("downloads.history_enabled", defaults.Downloads.HistoryEnabled)
	m.viper.SetDefault("downloads.history_db", defaults.Downloads.HistoryDB)
}
