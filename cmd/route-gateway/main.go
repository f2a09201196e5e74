package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tributary-ai/route-gateway/internal/config"
	"github.com/tributary-ai/route-gateway/internal/dispatch"
	"github.com/tributary-ai/route-gateway/internal/mcpserver"
	"github.com/tributary-ai/route-gateway/internal/provider/google"
	"github.com/tributary-ai/route-gateway/internal/security"
	"github.com/tributary-ai/route-gateway/internal/server"
)

// Application wires the gateway together.
type Application struct {
	config     *config.Config
	limiter    *security.RateLimiter
	audit      *security.AuditLogger
	dispatcher *dispatch.Dispatcher
	server     *server.Server
	logger     *logrus.Logger
}

// NewApplication creates a new application instance.
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logrus.New()
	if err := setupLogger(logger, cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	routeProvider := google.NewDirectionsProvider(cfg.Provider.Google, logger)
	limiter := security.NewRateLimiter(&cfg.Limits, logger)
	audit := security.NewAuditLogger(&cfg.Audit, logger)
	dispatcher := dispatch.NewDispatcher(routeProvider, limiter, audit, logger)

	srv := server.NewServer(dispatcher, limiter, audit, &server.Config{
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}, logger)

	return &Application{
		config:     cfg,
		limiter:    limiter,
		audit:      audit,
		dispatcher: dispatcher,
		server:     srv,
		logger:     logger,
	}, nil
}

// Run starts the HTTP transport and blocks until shutdown.
func (app *Application) Run() error {
	app.logger.Info("Starting route gateway")
	defer app.shutdownComponents()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		if err := app.server.Start(); err != nil {
			serverErrors <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case sig := <-sigChan:
		app.logger.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Stop(shutdownCtx); err != nil {
		app.logger.WithError(err).Error("Server shutdown error")
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("Graceful shutdown completed")
	return nil
}

// RunMCP serves the tool catalog over MCP stdio instead of HTTP.
func (app *Application) RunMCP() error {
	defer app.shutdownComponents()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return mcpserver.NewServer(app.dispatcher, app.logger).Run(ctx)
}

func (app *Application) shutdownComponents() {
	app.limiter.Stop()
	app.audit.Stop()
}

// setupLogger configures the logger based on configuration.
func setupLogger(logger *logrus.Logger, cfg config.LoggingConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %s: %w", cfg.Level, err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	default:
		return fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	switch cfg.Output {
	case "stdout":
		logger.SetOutput(os.Stdout)
	case "stderr":
		logger.SetOutput(os.Stderr)
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", cfg.Output, err)
		}
		logger.SetOutput(file)
	}

	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
	fmt.Fprintf(os.Stderr, "  GOOGLE_MAPS_API_KEY        Google Directions API key (required)\n")
	fmt.Fprintf(os.Stderr, "  ROUTE_GATEWAY_PORT         Server port (default: 8080)\n")
	fmt.Fprintf(os.Stderr, "  ROUTE_GATEWAY_LOG_LEVEL    Log level (debug,info,warn,error,fatal)\n")
	fmt.Fprintf(os.Stderr, "  ROUTE_GATEWAY_LOG_FORMAT   Log format (json,text)\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  %s --config configs/config.yaml\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  GOOGLE_MAPS_API_KEY=xxx %s --mcp\n", os.Args[0])
}

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		mcpMode    = flag.Bool("mcp", false, "Serve tools over MCP stdio instead of HTTP")
		showHelp   = flag.Bool("help", false, "Show help message")
		version    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showHelp {
		printUsage()
		os.Exit(0)
	}

	if *version {
		fmt.Printf("Route Gateway v1.0.0\n")
		os.Exit(0)
	}

	app, err := NewApplication(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create application: %v\n", err)
		os.Exit(1)
	}

	if *mcpMode {
		err = app.RunMCP()
	} else {
		err = app.Run()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}
