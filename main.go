package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CloudSentry/api"
	"CloudSentry/app"
	"CloudSentry/cli"
	"CloudSentry/internal/credstore"
	"CloudSentry/internal/logger"
	"CloudSentry/internal/logrotate"
)

// Exit codes
const (
	ExitSuccess     = 0
	ExitErrorUsage  = 2
	ExitErrorRun    = 1
	ExitErrorServer = 6
)

func main() {
	config, err := cli.ParseFlags()
	if err != nil {
		logger.Init(false, false)
		logger.Error("Invalid arguments: %v", err)
		cli.PrintUsage()
		os.Exit(ExitErrorUsage)
	}

	initLogger(config)

	if config.SaveCredProfile != "" || config.DeleteCredProfile != "" {
		runCredentialCommand(config)
		return
	}

	if config.APIOnly {
		runAPIServer(config)
		return
	}

	runOneShot(config)
}

// runCredentialCommand saves or deletes a named credential profile
func runCredentialCommand(config *cli.Config) {
	store := credstore.NewStore(credstore.DefaultDir())

	if config.SaveCredProfile != "" {
		if err := saveCredProfile(config.SaveCredProfile, store); err != nil {
			logger.Error("Failed to save credentials: %v", err)
			os.Exit(ExitErrorRun)
		}
		logger.Info("Saved credentials for profile %q", config.SaveCredProfile)
		return
	}

	if err := store.Delete(config.DeleteCredProfile); err != nil {
		logger.Error("Failed to delete credentials: %v", err)
		os.Exit(ExitErrorRun)
	}
	logger.Info("Deleted credentials for profile %q", config.DeleteCredProfile)
}

// saveCredProfile reads AWS credentials from the environment and stores
// them under the given profile name.
func saveCredProfile(profile string, store credstore.Store) error {
	creds := credstore.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return store.Save(profile, creds)
}

// runOneShot fetches, filters, detects and exports in a single pass
func runOneShot(config *cli.Config) {
	logger.Info("Starting CloudSentry in one-shot mode")
	logger.Info("Provider: %s", config.Provider)
	logger.Info("Output: %s (%s)", config.OutputPath, config.Format)

	criteria, err := cli.ToCriteria(config)
	if err != nil {
		logger.Error("Invalid filter selection: %v", err)
		os.Exit(ExitErrorUsage)
	}

	// Create context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		logger.Info("Received interrupt signal, shutting down...")
		cancel()
	}()

	application := app.New(cli.ToAppConfig(config))
	if err := application.Initialize(ctx); err != nil {
		logger.Error("Failed to initialize: %v", err)
		os.Exit(ExitErrorRun)
	}

	startTime := time.Now()
	view, err := application.BuildView(ctx, config.Provider, criteria)
	if err != nil {
		if ctx.Err() == context.Canceled {
			logger.Info("Processing was interrupted")
			os.Exit(ExitErrorRun)
		}
		logger.Error("Processing failed: %v", err)
		os.Exit(ExitErrorRun)
	}

	if view.Status == app.StatusNoData {
		logger.Warn("No logs found for provider %s, nothing to do", config.Provider)
		os.Exit(ExitSuccess)
	}

	if view.Fallback {
		logger.Warn("Served fallback data: %s", view.FallbackReason)
	}
	if view.Skipped > 0 {
		logger.Warn("%d raw records were skipped as unparseable", view.Skipped)
	}

	logger.Info("Filtered view: %d records", len(view.Records))
	if len(view.Suspicious) > 0 {
		for _, user := range view.Suspicious {
			logger.Warn("Suspicious activity: %s (%d critical events)",
				user.UserName, user.CriticalEventCount)
		}
	} else {
		logger.Info("No suspicious activity detected")
	}

	if err := application.Export(view); err != nil {
		logger.Error("Export failed: %v", err)
		os.Exit(ExitErrorRun)
	}

	logger.Info("Completed in %d ms", time.Since(startTime).Milliseconds())
}

// runAPIServer starts the API server for headless operation
func runAPIServer(config *cli.Config) {
	logger.Info("Starting CloudSentry in API mode on port %d", config.Port)

	ctx := context.Background()
	application := app.New(cli.ToAppConfig(config))
	if err := application.Initialize(ctx); err != nil {
		logger.Error("Failed to initialize: %v", err)
		os.Exit(ExitErrorServer)
	}

	server := api.NewServer(application, config.Port)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			serverErrChan <- err
		}
		close(serverErrChan)
	}()

	// Set up signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrChan:
		if err != nil {
			logger.Error("Failed to start API server: %v", err)
			os.Exit(ExitErrorServer)
		}
	case sig := <-signalChan:
		logger.Info("Received signal: %v", sig)
		logger.Info("Shutting down API server...")

		shutdownTimeout := time.Duration(config.ShutdownTimeout) * time.Second
		if err := server.Stop(shutdownTimeout); err != nil {
			logger.Error("Error during server shutdown: %v", err)
			os.Exit(ExitErrorServer)
		}
	}

	logger.Info("Server shutdown complete")
}

// initLogger initializes the logger with rotation if a log file is specified
func initLogger(config *cli.Config) {
	if config.LogFile == "" {
		logger.Init(config.Verbose, config.Silent)
		return
	}

	rotateConfig := logrotate.Config{
		MaxSize:    config.LogMaxSize,
		MaxAge:     config.LogMaxAge,
		MaxBackups: config.LogMaxBackups,
		Compress:   config.LogCompress,
		LocalTime:  true,
	}

	logWriter := logrotate.NewWriter(config.LogFile, rotateConfig)

	// Log to both the rotating file and stdout
	multiWriter := logrotate.MultiWriter(logWriter, os.Stdout)

	logger.Init(config.Verbose, config.Silent)
	logger.SetOutput(multiWriter)
}
