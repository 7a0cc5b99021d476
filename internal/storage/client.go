package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/frahmantamala/care-management/internal"
)

// Client deletes files from the document store. Deletions triggered by
// version removal are fire-and-forget: jobs go through a small worker pool
// and a failure never rolls back the contract write that scheduled it.
type Client struct {
	baseURL       string
	apiKey        string
	httpClient    *http.Client
	deleteTimeout time.Duration
	logger        *slog.Logger

	jobs chan string
	wg   sync.WaitGroup
	once sync.Once
}

func NewClient(cfg internal.StorageConfig, logger *slog.Logger) *Client {
	timeout := cfg.DeleteTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = 2
	}
	queueSize := cfg.JobQueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	c := &Client{
		baseURL:       cfg.APIURL,
		apiKey:        cfg.APIKey,
		httpClient:    &http.Client{Timeout: timeout},
		deleteTimeout: timeout,
		logger:        logger,
		jobs:          make(chan string, queueSize),
	}

	for i := 0; i < workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}

	return c
}

// ScheduleDelete enqueues a drive file for deletion. Never blocks the
// caller: a full queue drops the job with a log line instead.
func (c *Client) ScheduleDelete(driveID string) {
	if driveID == "" {
		return
	}
	select {
	case c.jobs <- driveID:
	default:
		c.logger.Warn("storage delete queue full, dropping job", "drive_id", driveID)
	}
}

func (c *Client) worker() {
	defer c.wg.Done()
	for driveID := range c.jobs {
		ctx, cancel := internal.WithTimeout(context.Background(), c.deleteTimeout)
		err := c.deleteFile(ctx, driveID)
		cancel()
		if err != nil {
			c.logger.Error("storage delete failed", "drive_id", driveID, "error", err)
		}
	}
}

func (c *Client) deleteFile(ctx context.Context, driveID string) error {
	url := fmt.Sprintf("%s/files/%s", c.baseURL, driveID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return internal.NewInternalError("failed to build storage request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return internal.NewExternalError("storage unreachable", internal.ErrCodeStorageDelete).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return internal.NewExternalError(
			fmt.Sprintf("storage delete returned status %d", resp.StatusCode),
			internal.ErrCodeStorageDelete)
	}
	return nil
}

// Shutdown stops accepting jobs and waits for in-flight deletions.
func (c *Client) Shutdown() {
	c.once.Do(func() {
		close(c.jobs)
	})
	c.wg.Wait()
}
