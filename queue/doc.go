// Package queue provides Redis-based work queue primitives for distributed parsing.
//
// The queue package enables horizontal scaling of bulk parsing by decoupling
// submission from execution. Producers push work items naming a registered
// parser definition, workers consume and parse them, and results flow back
// through Redis pub/sub.
//
// # Core Components
//
// Client: Interface for interacting with Redis queues. Provides methods for:
//   - Push/Pop operations for work queues
//   - Publish/Subscribe for result delivery
//   - Health monitoring and worker tracking
//
// WorkItem: A unit of work containing the definition name, the raw text to
// parse, and the strict flag.
//
// Result: The outcome of parsing a WorkItem, carrying the structured data
// and any per-field error records collected in recovery mode.
//
// Run: The worker loop. It pops items, resolves each against its named
// definition, and publishes results until shut down.
//
// # Redis Key Schema
//
// The queue system uses a structured key naming convention:
//   - parse:queue - List for work items (LPUSH/BRPOP), configurable
//   - queue:<name>:workers - Integer counter for active workers
//   - worker:<id>:health - String with 30s TTL for heartbeat
//   - results:<jobID> - Pub/Sub channel for job results
//
// # Usage
//
// Creating a queue client:
//
//	client, err := queue.NewRedisClient(queue.RedisOptions{
//		URL: "redis://localhost:6379",
//	})
//
// Pushing work:
//
//	err := client.Push(ctx, "parse:queue", queue.WorkItem{
//		JobID:       "job-123",
//		Index:       0,
//		Total:       1,
//		Definition:  "person",
//		Text:        "Dana | 30 | Lisbon",
//		SubmittedAt: time.Now().UnixMilli(),
//	})
//
// Subscribing to results:
//
//	results, err := client.Subscribe(ctx, "results:job-123")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for result := range results {
//		fmt.Println(result.Data, result.Errors)
//	}
//
// Running workers against a registry:
//
//	reg := registry.New()
//	reg.LoadFile("strum.yaml")
//	err := queue.Run(ctx, reg, queue.Options{
//		RedisURL:    "redis://localhost:6379",
//		Concurrency: 8,
//	})
//
// # Error Handling
//
// All methods return errors for Redis connection failures, serialization
// errors, or context cancellation. Per-field parse failures never fail the
// work item: they travel in Result.Errors so a batch keeps flowing.
//
// # Thread Safety
//
// RedisClient is safe for concurrent use by multiple goroutines.
package queue
