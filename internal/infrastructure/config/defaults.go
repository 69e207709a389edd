package config

// Default configuration constants
const (
	defaultLogLevel  = "info"
	defaultLogFormat = LogFormatConsole

	defaultFetchTimeoutMs = 5000
	defaultMaxIconBytes   = 1 << 20
	defaultExportSize     = 32
	defaultConcurrency    = 4

	defaultRequestTimeoutMs = 30000

	dirPerm  = 0o755
	filePerm = 0o644
)

// DefaultConfig returns the default configuration. Directory paths stay
// empty and are resolved against XDG locations at load time.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Favicon: FaviconConfig{
			TouchIconsEnabled: false,
			FetchTimeoutMs:    defaultFetchTimeoutMs,
			MaxIconBytes:      defaultMaxIconBytes,
			ExportSize:        defaultExportSize,
			Concurrency:       defaultConcurrency,
		},
		Downloads: DownloadsConfig{
			DownloadUnrenderable: false,
			RequestTimeoutMs:     defaultRequestTimeoutMs,
			HistoryEnabled:       true,
		},
	}
}
