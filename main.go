// AlgoTradeCompanion bridges the Angel One SmartAPI trading API behind a
// stable local HTTP interface.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/ShivamD-ops/AlgoTradeCompanion/app"
	"github.com/ShivamD-ops/AlgoTradeCompanion/ops"
)

var (
	// version is injected during the build process.
	version = "v0.0.0"

	// buildString is injected during the build process with build time and git info.
	buildString = "dev build"
)

func initLogger() (*slog.Logger, *ops.LogBuffer) {
	// Default to INFO level, can be overridden by LOG_LEVEL env var.
	// Valid levels: debug, info, warn, error
	var level slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	logBuffer := ops.NewLogBuffer(500)
	inner := slog.NewTextHandler(os.Stderr, opts)
	tee := ops.NewTeeHandler(inner, logBuffer)
	return slog.New(tee), logBuffer
}

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("AngelOne Bridge %s\n", version)
		fmt.Printf("Build: %s\n", buildString)
		os.Exit(0)
	}

	// Optional .env for local development; the environment wins either way.
	_ = godotenv.Load()

	logger, logBuffer := initLogger()

	application := app.NewApp(logger)
	application.SetLogBuffer(logBuffer)

	if err := application.LoadConfig(); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	application.SetVersion(version)

	logger.Info("Starting AngelOne bridge...", "version", version, "build", buildString)
	if err := application.RunServer(); err != nil {
		logger.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}
