package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coconutick512/bot-for-crypt/internal/adapter"
	"github.com/coconutick512/bot-for-crypt/internal/assets"
	"github.com/coconutick512/bot-for-crypt/internal/config"
	"github.com/coconutick512/bot-for-crypt/internal/metrics"
	"github.com/coconutick512/bot-for-crypt/internal/report"
	"github.com/coconutick512/bot-for-crypt/internal/server"
	"github.com/coconutick512/bot-for-crypt/internal/storage"
	syncer "github.com/coconutick512/bot-for-crypt/internal/sync"
	"github.com/coconutick512/bot-for-crypt/pkg/utils"
)

// AppVersion contains the application version
const AppVersion = "1.0.0"

// Application represents the main application
type Application struct {
	config     *config.Config
	metrics    *metrics.Manager
	storage    storage.Storage
	registry   *adapter.Registry
	sync       *syncer.Manager
	aggregator *report.Aggregator
	balances   *report.BalanceResolver
	server     *server.HTTPServer
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewApplication creates a new application instance
func NewApplication(cfg *config.Config) (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &Application{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	if err := app.initializeLogger(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := app.initializeComponents(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return app, nil
}

// initializeLogger initializes the application logger
func (app *Application) initializeLogger() error {
	logCfg := app.config.Logging

	if err := utils.InitLogger(logCfg.Level, logCfg.Format, logCfg.Output, logCfg.File); err != nil {
		return err
	}

	utils.GetLogger().WithField("level", logCfg.Level).Info("Logger initialized")
	return nil
}

// initializeComponents initializes all application components
func (app *Application) initializeComponents() error {
	logger := utils.GetLogger()
	logger.Info("Initializing application components")

	app.metrics = metrics.NewManager()

	// Storage
	store, err := storage.NewStorage(&app.config.Storage, app.metrics)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	if err := store.Connect(); err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("failed to run storage migrations: %w", err)
	}
	app.storage = store

	// Asset catalog and network adapters
	catalog := assets.NewCatalog(assets.DefaultAssets())

	app.registry = adapter.NewRegistry(
		adapter.NewEtherscanAdapter(&app.config.Providers, catalog, app.metrics),
		adapter.NewTronAdapter(&app.config.Providers, catalog, app.metrics),
		adapter.NewSolanaAdapter(&app.config.Providers, catalog, app.metrics),
	)

	// Synchronization and reporting
	app.sync = syncer.NewManager(app.storage, app.registry, catalog, app.metrics)
	app.aggregator = report.NewAggregator(app.storage, app.sync)
	app.balances = report.NewBalanceResolver(app.storage, app.registry)

	// HTTP server
	serverCfg := &server.ServerConfig{
		Port:          app.config.Server.Port,
		Host:          app.config.Server.Host,
		ReadTimeout:   app.config.Server.ReadTimeout,
		WriteTimeout:  app.config.Server.WriteTimeout,
		EnableMetrics: app.config.Server.EnableMetrics,
		EnableHealth:  app.config.Server.EnableHealth,
	}
	app.server = server.NewHTTPServer(serverCfg, app.storage, app.sync, app.aggregator, app.balances, app.metrics)

	logger.Info("All components initialized successfully")
	return nil
}

// Start starts the application
func (app *Application) Start() error {
	logger := utils.GetLogger()

	go app.metrics.Run(app.ctx)

	if err := app.server.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	logger.WithField("address", fmt.Sprintf("%s:%d", app.config.Server.Host, app.config.Server.Port)).
		Info("Transfer tracker started")

	return nil
}

// Stop stops the application gracefully
func (app *Application) Stop() {
	logger := utils.GetLogger()
	logger.Info("Stopping transfer tracker")

	app.cancel()

	if app.server != nil {
		if err := app.server.Stop(); err != nil {
			logger.WithField("error", err.Error()).Error("Failed to stop HTTP server")
		}
	}

	if app.storage != nil {
		if err := app.storage.Close(); err != nil {
			logger.WithField("error", err.Error()).Error("Failed to close storage")
		}
	}

	logger.Info("Transfer tracker stopped")
}

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "tracker",
		Short:   "Multi-chain inbound transfer tracker",
		Version: AppVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			app, err := NewApplication(cfg)
			if err != nil {
				return err
			}

			if err := app.Start(); err != nil {
				app.Stop()
				return err
			}

			// Wait for shutdown signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan

			app.Stop()
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
