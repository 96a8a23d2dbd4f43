package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beamctl/beamctl/device"
	"github.com/beamctl/beamctl/grammar"
)

func main() {
	flag.String("grammar-dir", "grammars", "Directory containing device grammar documents")
	flag.String("device", "benq", "Device id selecting the grammar to use")
	flag.String("serial-port", "", "Serial port override (empty keeps the grammar default)")
	flag.Int("baud-rate", 0, "Baud rate override (0 keeps the grammar default)")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	registry, err := grammar.LoadDir(config.GrammarDir)
	if err != nil {
		logger.Error("Failed to load device grammars", "error", err, "dir", config.GrammarDir)
		os.Exit(1)
	}
	logger.Info("Loaded device grammars", "devices", registry.Devices())

	// Only settings the user explicitly set override the grammar's own
	// serial section.
	overrides := map[string]any{}
	if config.SerialPort != "" {
		overrides["port"] = config.SerialPort
	}
	if config.BaudRate != 0 {
		overrides["baudrate"] = config.BaudRate
	}

	sessionConfig, err := device.NewConfigBuilder().
		WithRegistry(registry).
		WithDeviceID(config.DeviceID).
		WithOverrides(overrides).
		WithDialer(device.SerialDialer{}).
		WithLogger(logger.With("component", "device")).
		Build()
	if err != nil {
		logger.Error("Failed to create session config", "error", err)
		os.Exit(1)
	}

	session, err := device.New(context.Background(), sessionConfig)
	if err != nil {
		logger.Error("Failed to open device session", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting device gateway", "device", config.DeviceID, "port", config.SerialPort)

	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: &Server{
			Logger:  logger.With("component", "server"),
			Session: session,
		},
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	logger.Info("Closing device session")
	if err := session.Close(); err != nil {
		logger.Error("Failed to close device session", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
		os.Exit(1)
	}
}
