// Package app wires configuration, logging, the local store, the API client
// and the services shared by cmd/folio and cmd/folio-web.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/folio/internal/clients/folioapi"
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/analytics"
	"github.com/bobmcallan/folio/internal/services/dashboard"
	"github.com/bobmcallan/folio/internal/services/session"
	"github.com/bobmcallan/folio/internal/storage/localstore"
)

// App holds all initialized services and clients.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Store       interfaces.LocalStore
	API         interfaces.APIClient
	Sessions    interfaces.SessionManager
	Analytics   interfaces.AnalyticsService
	StartupTime time.Time
}

// Options override pieces of the wiring. Zero values use the defaults.
type Options struct {
	ConfigPath string
	LogLevel   string // overrides config when set
	Store      interfaces.LocalStore
	API        interfaces.APIClient
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath checks the provided path, FOLIO_CONFIG, the binary dir,
// then config/folio.toml.
func resolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and initializes the app.
func NewApp(opts Options) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(resolveConfigPath(opts.ConfigPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.LogLevel != "" {
		config.Logging.Level = opts.LogLevel
	}

	return NewAppFromConfig(config, common.NewLogger(config.Logging.Level), opts)
}

// NewAppFromConfig initializes the app from an already loaded config.
func NewAppFromConfig(config *common.Config, logger *common.Logger, opts Options) (*App, error) {
	startupStart := time.Now()
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	store := opts.Store
	if store == nil {
		fs, err := localstore.NewFileStore(logger.WithComponent("localstore"), config.Session.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}
		store = fs
	}

	api := opts.API
	if api == nil {
		api = folioapi.NewClient(
			folioapi.WithBaseURL(config.API.BaseURL),
			folioapi.WithLogger(logger.WithComponent("api")),
			folioapi.WithRateLimit(config.API.RateLimit),
			folioapi.WithTimeout(config.API.GetTimeout()),
		)
	}

	a := &App{
		Config:      config,
		Logger:      logger,
		Store:       store,
		API:         api,
		Sessions:    session.NewManager(store, logger.WithComponent("session")),
		Analytics:   analytics.NewService(api, logger.WithComponent("analytics")),
		StartupTime: startupStart,
	}

	logger.Debug().
		Str("api", config.API.BaseURL).
		Str("session_path", config.Session.Path).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// NewController builds the dashboard controller for sess.
func (a *App) NewController(sess *models.Session) *dashboard.Controller {
	return dashboard.NewController(a.API, a.Analytics, sess, a.Config.Poll.GetInterval(), a.Logger.WithComponent("dashboard"))
}

// ChartSize returns the configured PNG chart size.
func (a *App) ChartSize() (int, int) {
	return a.Config.Charts.Width, a.Config.Charts.Height
}

// Close releases resources held by the App.
func (a *App) Close() {}
