// Package cli wires configuration, logging and use cases for the pagekit commands.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/pagekit/internal/application/usecase"
	"github.com/bnema/pagekit/internal/cli/styles"
	"github.com/bnema/pagekit/internal/domain/build"
	"github.com/bnema/pagekit/internal/infrastructure/config"
	"github.com/bnema/pagekit/internal/infrastructure/download"
	"github.com/bnema/pagekit/internal/infrastructure/favicon"
	"github.com/bnema/pagekit/internal/infrastructure/filesystem"
	"github.com/bnema/pagekit/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/pagekit/internal/logging"
)

// App holds CLI dependencies.
type App struct {
	Config    *config.Config
	Manager   *config.Manager
	Theme     *styles.Theme
	BuildInfo build.Info

	// Use cases
	FaviconsUC *usecase.ManageFaviconsUseCase
	ResolveUC  *usecase.ResolveDownloadUseCase
	HistoryUC  *usecase.DownloadHistoryUseCase

	// Services
	FaviconService *favicon.Service
	Downloads      *download.Handler

	historyDB *sqlite.LazyDB
	ctx       context.Context
}

// NewApp loads the configuration from the XDG config directory and creates
// the application.
func NewApp() (*App, error) {
	mgr, err := config.NewManager()
	if err != nil {
		return nil, err
	}
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	return NewAppWithManager(mgr)
}

// NewAppWithManager creates the application from a loaded manager.
func NewAppWithManager(mgr *config.Manager) (*App, error) {
	cfg := mgr.Get()

	logger := logging.New(logging.Config{
		Level:      logging.ParseLevel(cfg.Logging.Level),
		Format:     string(cfg.Logging.Format),
		TimeFormat: "15:04:05",
	})
	ctx := logging.WithContext(context.Background(), logger)

	faviconService := favicon.NewService(favicon.Options{
		CacheDir:     cfg.Favicon.CacheDir,
		ExportSize:   cfg.Favicon.ExportSize,
		FetchTimeout: millis(cfg.Favicon.FetchTimeoutMs),
		MaxIconBytes: cfg.Favicon.MaxIconBytes,
	})

	fs := filesystem.New()
	prepareUC := usecase.NewPrepareDownloadUseCase(fs)

	// The database is opened on first use.
	var historyDB *sqlite.LazyDB
	historyUC := usecase.NewDownloadHistoryUseCase(nil)
	if cfg.Downloads.HistoryEnabled {
		historyDB = sqlite.NewLazyDB(cfg.Downloads.HistoryDB)
		historyUC = usecase.NewDownloadHistoryUseCase(sqlite.NewDownloadHistoryRepository(historyDB))
	}

	app := &App{
		Config:         cfg,
		Manager:        mgr,
		Theme:          styles.NewTheme(),
		FaviconsUC:     usecase.NewManageFaviconsUseCase(faviconService.Fetcher, faviconService.Cache, cfg.Favicon.TouchIconsEnabled),
		ResolveUC:      usecase.NewResolveDownloadUseCase(prepareUC, cfg.Downloads.DownloadUnrenderable),
		HistoryUC:      historyUC,
		FaviconService: faviconService,
		Downloads:      download.NewHandler(millis(cfg.Downloads.RequestTimeoutMs), fs, nil),
		historyDB:      historyDB,
		ctx:            ctx,
	}

	mgr.OnConfigChange(app.applyConfig)

	logger.Debug().
		Str("config", mgr.GetConfigFile()).
		Str("favicon_cache", cfg.Favicon.CacheDir).
		Str("downloads", cfg.Downloads.Path).
		Msg("pagekit initialized")

	return app, nil
}

// Watch reloads toggles from the config file while a command runs.
func (a *App) Watch() error {
	if err := a.Manager.Watch(); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	return nil
}

// applyConfig pushes runtime toggles from a reloaded config into the use cases.
// Paths, sizes and timeouts only apply to the next invocation.
func (a *App) applyConfig(cfg *config.Config) {
	ctx := logging.WithComponent(a.ctx, "config")
	logging.FromContext(ctx).Info().
		Bool("touch_icons_enabled", cfg.Favicon.TouchIconsEnabled).
		Bool("download_unrenderable", cfg.Downloads.DownloadUnrenderable).
		Msg("config reloaded")

	a.FaviconsUC.SetTouchIconsEnabled(ctx, cfg.Favicon.TouchIconsEnabled)
	a.ResolveUC.SetDownloadUnrenderable(cfg.Downloads.DownloadUnrenderable)
}

// Close flushes pending icon exports and closes the history database.
func (a *App) Close() error {
	if a.FaviconService != nil {
		a.FaviconService.Close()
	}
	if a.historyDB != nil {
		return a.historyDB.Close()
	}
	return nil
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return logging.FromContext(a.ctx)
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
