package queue

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/zero-day-ai/strum"
)

// ParserSource supplies compiled parsers by definition name. It is satisfied
// by registry.Registry.
type ParserSource interface {
	Parser(name string, opts ...strum.Option) (*strum.Parser, error)
}

// Options configures the worker behavior.
type Options struct {
	// RedisURL is the Redis connection string (e.g., "redis://localhost:6379")
	RedisURL string

	// Queue is the name of the work queue to consume.
	// If empty, defaults to "parse:queue".
	Queue string

	// Concurrency is the number of worker goroutines to start.
	// If 0, defaults to 4.
	Concurrency int

	// ShutdownTimeout is the time to wait for graceful shutdown.
	// If 0, defaults to 30s.
	ShutdownTimeout time.Duration

	// Logger is the structured logger for worker operations.
	// If nil, a default JSON logger will be created.
	Logger *slog.Logger

	// Client overrides the Redis client, mostly for tests.
	// If nil, one is created from RedisURL.
	Client Client
}

// Run starts the worker loop consuming parse requests from a Redis queue.
// It connects to Redis, starts N worker goroutines based on Concurrency,
// maintains a heartbeat, and handles graceful shutdown on SIGTERM/SIGINT.
//
// Each worker goroutine:
//  1. Pops a work item from the queue
//  2. Looks up the named definition and parses the item's text
//  3. Publishes the result to the job's pub/sub channel
//
// The function blocks until a shutdown signal is received or ctx is
// cancelled. On shutdown, it waits for all workers to finish their current
// items before returning.
//
// Returns an error if the Redis connection fails.
func Run(ctx context.Context, source ParserSource, opts Options) error {
	if source == nil {
		return fmt.Errorf("parser source is required")
	}

	if opts.RedisURL == "" {
		opts.RedisURL = "redis://localhost:6379"
	}
	if opts.Queue == "" {
		opts.Queue = "parse:queue"
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	workerID := generateWorkerID()

	logger := opts.Logger.With(
		"queue", opts.Queue,
		"worker_id", workerID,
	)

	logger.Info("worker starting",
		"concurrency", opts.Concurrency,
		"redis_url", opts.RedisURL,
	)

	client := opts.Client
	if client == nil {
		redisClient, err := NewRedisClient(RedisOptions{URL: opts.RedisURL})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		client = redisClient
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := client.IncrementWorkers(ctx, opts.Queue); err != nil {
		logger.Error("failed to increment worker count", "error", err)
	}

	// Decrement on exit with a fresh context since ctx may be cancelled
	defer func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		if err := client.DecrementWorkers(cleanupCtx, opts.Queue); err != nil {
			logger.Error("failed to decrement worker count", "error", err)
		}
	}()

	heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go runHeartbeat(heartbeatCtx, client, workerID, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	var wg sync.WaitGroup
	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func(workerNum int) {
			defer wg.Done()
			workerLoop(ctx, workerNum, source, client, opts.Queue, workerID, logger)
		}(i)
	}

	logger.Info("worker started", "workers", opts.Concurrency)

	select {
	case sig := <-sigChan:
		logger.Info("received signal, initiating graceful shutdown", "signal", sig)
	case <-ctx.Done():
		logger.Info("context cancelled, initiating graceful shutdown")
	}

	cancel()

	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		logger.Info("worker shutdown complete")
	case <-time.After(opts.ShutdownTimeout):
		logger.Warn("worker shutdown timeout exceeded", "timeout", opts.ShutdownTimeout)
	}

	return nil
}

// runHeartbeat sends periodic heartbeats to maintain worker health status.
// It runs in a goroutine and stops when the context is cancelled.
func runHeartbeat(ctx context.Context, client Client, workerID string, logger *slog.Logger) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	logger.Debug("heartbeat goroutine started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("heartbeat goroutine stopped")
			return
		case <-ticker.C:
			if err := client.Heartbeat(ctx, workerID); err != nil {
				// Heartbeat failures are transient, keep the noise down
				logger.Debug("heartbeat failed", "error", err)
			}
		}
	}
}

// workerLoop is the main loop for a single worker goroutine.
// It continuously pops work items from the queue, parses them,
// and publishes results until the context is cancelled.
func workerLoop(ctx context.Context, workerNum int, source ParserSource, client Client, queueName, workerID string, logger *slog.Logger) {
	logger = logger.With("worker_num", workerNum)
	logger.Debug("worker loop started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("worker loop stopped", "reason", "context_cancelled")
			return
		default:
		}

		item, err := client.Pop(ctx, queueName)
		if err != nil {
			if ctx.Err() != nil {
				logger.Debug("worker loop stopped", "reason", "context_error")
				return
			}
			logger.Error("failed to pop work item", "error", err)
			continue
		}

		if item == nil {
			continue
		}

		logger.Info("received work item",
			"job_id", item.JobID,
			"index", item.Index,
			"total", item.Total,
			"definition", item.Definition,
		)

		result := processWorkItem(ctx, source, *item, workerID, logger)

		resultChannel := fmt.Sprintf("results:%s", item.JobID)
		if err := client.Publish(ctx, resultChannel, result); err != nil {
			logger.Error("failed to publish result", "error", err)
		}
	}
}

// processWorkItem parses a single work item and returns a result.
// It handles all errors at each step and ensures a result is always returned.
func processWorkItem(ctx context.Context, source ParserSource, item WorkItem, workerID string, logger *slog.Logger) Result {
	startedAt := time.Now().UnixMilli()

	result := Result{
		JobID:     item.JobID,
		Index:     item.Index,
		WorkerID:  workerID,
		StartedAt: startedAt,
	}

	if err := item.IsValid(); err != nil {
		result.Error = fmt.Sprintf("invalid work item: %v", err)
		result.CompletedAt = time.Now().UnixMilli()
		logger.Error("invalid work item", "error", err)
		return result
	}

	parser, err := source.Parser(item.Definition)
	if err != nil {
		result.Error = fmt.Sprintf("unknown definition: %s", item.Definition)
		result.CompletedAt = time.Now().UnixMilli()
		logger.Error("unknown definition", "definition", item.Definition, "error", err)
		return result
	}

	parsed, err := parser.ParseWithRecovery(ctx, item.Text, item.Strict)
	if err != nil {
		result.Error = err.Error()
		result.CompletedAt = time.Now().UnixMilli()
		logger.Error("parse failed", "definition", item.Definition, "error", err)
		return result
	}

	result.Data = parsed.Data
	result.Errors = parsed.Errors
	result.CompletedAt = time.Now().UnixMilli()

	logger.Info("work item completed",
		"job_id", item.JobID,
		"index", item.Index,
		"field_errors", len(parsed.Errors),
		"duration_ms", result.CompletedAt-result.StartedAt,
	)

	return result
}

// generateWorkerID creates a unique identifier for this worker instance.
// Uses hostname + PID + UUID for uniqueness.
func generateWorkerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	pid := os.Getpid()

	id := uuid.New().String()[:8]

	return fmt.Sprintf("%s-%d-%s", hostname, pid, id)
}
