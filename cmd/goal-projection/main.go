package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/magnatepoint/goal-projection/internal/config"
	"github.com/magnatepoint/goal-projection/internal/forecast"
	"github.com/magnatepoint/goal-projection/internal/server"
	"github.com/magnatepoint/goal-projection/pkg/constants"
	"github.com/magnatepoint/goal-projection/pkg/datetime"
	"github.com/magnatepoint/goal-projection/pkg/output"
	"github.com/magnatepoint/goal-projection/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 30 * time.Second

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	// Logs go to stderr unless a file is configured so stdout carries only
	// the projection output.
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

// loadEnvFile exports the variables in path into the process environment
// without overriding ones already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	asOfFlag := flag.String("as-of", "", "evaluation date override (YYYY-MM-DD), defaults to the configured asOfDate or today")
	serve := flag.Bool("serve", false, "run the projection HTTP API instead of printing projections")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	envFile := flag.String("env-file", constants.DefaultEnvFile, "optional file of "+config.EnvPrefix+"_* environment overrides")
	flag.Parse()

	if err := loadEnvFile(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load environment file\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}

	if *serve {
		runServer(*serverConfigLocation, *logLevel)
		return
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	asOf, err := conf.ResolveAsOfDate(*asOfFlag, time.Now())
	if err != nil {
		logger.Fatal("failed to resolve as-of date",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	for _, warning := range conf.ValidateConfiguration(asOf) {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	results, err := forecast.GetProjections(logger, *conf, asOf)
	if err != nil {
		logger.Fatal("failed to compute projections",
			zap.String("op", "main"),
			zap.String("asOf", datetime.Format(asOf)),
			zap.Error(err),
		)
	}

	if err := output.Write(os.Stdout, outputFormat, results); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

func runServer(configLocation, logLevel string) {
	cfg, err := server.LoadConfig(configLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main.runServer\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", configLocation, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(cfg.Logging, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main.runServer\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      server.NewHandler(logger, cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("projection API listening",
			zap.String("op", "main.runServer"),
			zap.String("address", cfg.Address),
			zap.String("version", cfg.Version),
			zap.Int64("maxUploadSize", cfg.UploadSizeBytes()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed",
				zap.String("op", "main.runServer"),
				zap.Error(err),
			)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down", zap.String("op", "main.runServer"))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}
}
