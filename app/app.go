// Package app is the composition root: it loads configuration from the
// environment once at startup, wires the broker services together, and
// runs the HTTP server until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ShivamD-ops/AlgoTradeCompanion/broker"
	"github.com/ShivamD-ops/AlgoTradeCompanion/broker/smartapi"
	"github.com/ShivamD-ops/AlgoTradeCompanion/broker/stream"
	"github.com/ShivamD-ops/AlgoTradeCompanion/ops"
	"github.com/ShivamD-ops/AlgoTradeCompanion/web"
)

// Config holds the application configuration, enumerated exactly once.
// No hot-reload.
type Config struct {
	Credentials broker.Credentials

	AppPort string
	AppHost string

	BrokerBaseURL string // optional override for the SmartAPI host
	FeedURL       string // optional override for the smart-stream socket
}

// Defaults.
const (
	DefaultPort = "5001"
	DefaultHost = "0.0.0.0"
)

// App represents the running application.
type App struct {
	Config    *Config
	Version   string
	startTime time.Time
	logger    *slog.Logger
	logBuffer *ops.LogBuffer

	session *broker.Session
	stream  *stream.Service
}

// NewApp creates a new application instance, reading configuration from
// the environment.
func NewApp(logger *slog.Logger) *App {
	return &App{
		Config: &Config{
			Credentials:   broker.CredentialsFromEnv(),
			AppPort:       os.Getenv("ANGEL_API_PORT"),
			AppHost:       os.Getenv("APP_HOST"),
			BrokerBaseURL: os.Getenv("SMARTAPI_BASE_URL"),
			FeedURL:       os.Getenv("SMARTAPI_FEED_URL"),
		},
		Version:   "v0.0.0",
		startTime: time.Now(),
		logger:    logger,
	}
}

// SetVersion sets the server version.
func (app *App) SetVersion(version string) {
	app.Version = version
}

// SetLogBuffer wires the ops log ring buffer into the /ops/logs endpoint.
func (app *App) SetLogBuffer(buf *ops.LogBuffer) {
	app.logBuffer = buf
}

// LoadConfig applies defaults. Credential completeness is deliberately
// not checked here: a bridge with partial credentials still serves
// /health, and authenticate reports the missing fields itself.
func (app *App) LoadConfig() error {
	if app.Config.AppPort == "" {
		app.Config.AppPort = DefaultPort
	}
	if app.Config.AppHost == "" {
		app.Config.AppHost = DefaultHost
	}

	if err := app.Config.Credentials.Validate(); err != nil {
		app.logger.Warn("Incomplete Angel One credentials — login will fail until configured", "error", err)
	}
	return nil
}

// RunServer wires the services and serves until SIGINT/SIGTERM.
func (app *App) RunServer() error {
	client := smartapi.New(smartapi.Config{
		BaseURL: app.Config.BrokerBaseURL,
		APIKey:  app.Config.Credentials.APIKey,
		Logger:  app.logger,
	})

	session, err := broker.NewSession(broker.SessionConfig{
		Credentials: app.Config.Credentials,
		Client:      client,
		Logger:      app.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}
	app.session = session

	streamSvc, err := stream.New(stream.Config{
		Dialer:     stream.NewWebsocketDialer(app.Config.FeedURL),
		Session:    session,
		APIKey:     app.Config.Credentials.APIKey,
		ClientCode: app.Config.Credentials.ClientCode,
		Logger:     app.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream service: %w", err)
	}
	session.SetStream(streamSvc)
	app.stream = streamSvc

	gateway := broker.NewGateway(session, client, app.logger)

	server := web.NewServer(web.Config{
		Session: session,
		Gateway: gateway,
		Stream:  streamSvc,
		Logs:    app.logBuffer,
		Logger:  app.logger,
	})

	addr := app.Config.AppHost + ":" + app.Config.AppPort
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      120 * time.Second,
	}

	app.setupGracefulShutdown(srv)

	app.logger.Info("AngelOne bridge listening", "addr", addr, "version", app.Version)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// setupGracefulShutdown stops the HTTP server and then the streaming
// connection on SIGINT/SIGTERM.
func (app *App) setupGracefulShutdown(srv *http.Server) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	go func() {
		defer stop()
		<-ctx.Done()
		app.logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error("Server shutdown error", "error", err)
		}

		app.stream.Shutdown()
		app.logger.Info("Server shutdown complete")
	}()
}
