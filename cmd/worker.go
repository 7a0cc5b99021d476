package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/care-management/internal/core/events"
	"github.com/frahmantamala/care-management/internal/storage"
	"github.com/frahmantamala/care-management/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools for various services",
	Long:  `Start and manage worker pools for background services like storage cleanup and event handling.`,
}

// Storage worker command
var storageWorkerCmd = &cobra.Command{
	Use:   "storage",
	Short: "Start storage cleanup worker pool",
	Long:  `Start the storage worker pool that deletes superseded contract documents from the drive`,
	Run: func(cmd *cobra.Command, args []string) {
		startStorageWorker()
	},
}

// Event Bus worker command
var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Long:  `Start the event bus `,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var (
	maxWorkers   int
	jobQueueSize int
	apiURL       string
	apiKey       string
)

func startStorageWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logger.LoggerWrapper()

	// Use command line flags if provided, otherwise use config values
	storageConfig := config.Storage
	storageConfig.APIURL = getStringFlag(apiURL, storageConfig.APIURL)
	storageConfig.APIKey = getStringFlag(apiKey, storageConfig.APIKey)
	storageConfig.MaxWorkers = getIntFlag(maxWorkers, storageConfig.MaxWorkers)
	storageConfig.JobQueueSize = getIntFlag(jobQueueSize, storageConfig.JobQueueSize)

	logger.Info("starting storage worker",
		"max_workers", storageConfig.MaxWorkers,
		"job_queue_size", storageConfig.JobQueueSize,
		"api_url", storageConfig.APIURL)

	client := storage.NewClient(storageConfig, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("storage worker is running. Press Ctrl+C to stop.")

	// wait for shutdown signal
	sig := <-sigChan
	logger.Info("received signal, shutting down storage worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		client.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		logger.Info("storage worker pool shutdown complete")
	case <-ctx.Done():
		logger.Warn("shutdown timeout reached, forcing exit")
	}
}

func startEventWorker() {
	_, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logger.LoggerWrapper()

	eventBus := events.NewEventBus(logger)

	for _, eventType := range []string{
		events.ContractCreated,
		events.ContractEnded,
		events.ContractVersionCreated,
		events.ContractVersionUpdated,
		events.ContractVersionDeleted,
		events.ContractDeleted,
		events.SignatureCompleted,
	} {
		eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			logger.Info("received contract event",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"payload", event.Payload())
			return nil
		})
	}

	logger.Info("event bus worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("event bus is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	logger.Info("received signal, shutting down event bus", "signal", sig)
	logger.Info("event bus shutdown complete")
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	storageWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	storageWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	storageWorkerCmd.Flags().StringVar(&apiURL, "api-url", "", "Storage API URL (overrides config)")
	storageWorkerCmd.Flags().StringVar(&apiKey, "api-key", "", "Storage API key (overrides config)")

	workerCmd.AddCommand(storageWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
