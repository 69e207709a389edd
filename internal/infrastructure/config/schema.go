package config

// Config represents the complete configuration for pagekit.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging" toml:"logging" json:"logging"`
	Favicon   FaviconConfig   `mapstructure:"favicon" yaml:"favicon" toml:"favicon" json:"favicon"`
	Downloads DownloadsConfig `mapstructure:"downloads" yaml:"downloads" toml:"downloads" json:"downloads"`
}

// LogFormat selects the zerolog writer.
type LogFormat string

const (
	LogFormatConsole LogFormat = "console"
	LogFormatJSON    LogFormat = "json"
)

// LoggingConfig controls the logger built at startup.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level  string    `mapstructure:"level" yaml:"level" toml:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error"`
	Format LogFormat `mapstructure:"format" yaml:"format" toml:"format" json:"format" jsonschema:"enum=console,enum=json"`
}

// FaviconConfig controls icon selection, fetching and export.
type FaviconConfig struct {
	// TouchIconsEnabled lets apple-touch-icon candidates win over favicons.
	TouchIconsEnabled bool `mapstructure:"touch_icons_enabled" yaml:"touch_icons_enabled" toml:"touch_icons_enabled" json:"touch_icons_enabled"`
	// CacheDir receives exported PNG icons. Empty means $XDG_CACHE_HOME/pagekit/favicons.
	CacheDir       string `mapstructure:"cache_dir" yaml:"cache_dir" toml:"cache_dir" json:"cache_dir"`
	FetchTimeoutMs int    `mapstructure:"fetch_timeout_ms" yaml:"fetch_timeout_ms" toml:"fetch_timeout_ms" json:"fetch_timeout_ms" jsonschema:"minimum=1"`
	MaxIconBytes   int64  `mapstructure:"max_icon_bytes" yaml:"max_icon_bytes" toml:"max_icon_bytes" json:"max_icon_bytes" jsonschema:"minimum=1"`
	// ExportSize is the square edge of exported icons in pixels.
	ExportSize int `mapstructure:"export_size" yaml:"export_size" toml:"export_size" json:"export_size" jsonschema:"minimum=1,maximum=512"`
	// Concurrency bounds how many pages the CLI processes at once.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency" toml:"concurrency" json:"concurrency" jsonschema:"minimum=1"`
}

// DownloadsConfig controls download disposition and transfers.
type DownloadsConfig struct {
	// Path is the destination directory. Empty means $XDG_DOWNLOAD_DIR or ~/Downloads.
	Path string `mapstructure:"path" yaml:"path" toml:"path" json:"path"`
	// DownloadUnrenderable saves responses whose media type cannot be shown inline.
	DownloadUnrenderable bool `mapstructure:"download_unrenderable" yaml:"download_unrenderable" toml:"download_unrenderable" json:"download_unrenderable"`
	RequestTimeoutMs     int  `mapstructure:"request_timeout_ms" yaml:"request_timeout_ms" toml:"request_timeout_ms" json:"request_timeout_ms" jsonschema:"minimum=1"`
	// HistoryEnabled records finished transfers in a SQLite database.
	HistoryEnabled bool `mapstructure:"history_enabled" yaml:"history_enabled" toml:"history_enabled" json:"history_enabled"`
	// HistoryDB is the database file. Empty means $XDG_DATA_HOME/pagekit/pagekit.db.
	HistoryDB string `mapstructure:"history_db" yaml:"history_db" toml:"history_db" json:"history_db"`
}
