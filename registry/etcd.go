package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// StoreConfig configures the etcd-backed definition store.
type StoreConfig struct {
	// Endpoints lists etcd cluster endpoints (e.g., "localhost:2379").
	Endpoints []string

	// Namespace prefixes all keys; defaults to "strum".
	Namespace string

	// DialTimeout is the maximum time to wait for connection establishment;
	// defaults to 5s.
	DialTimeout time.Duration

	// Logger records watch-loop diagnostics. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Store shares parser definitions across services through etcd. Definitions
// are stored as JSON under /<namespace>/definitions/<name>, so every consumer
// of the same namespace parses input with the same rules.
//
// Thread-safety: all methods are safe for concurrent use.
type Store struct {
	client    *clientv3.Client
	namespace string
	logger    *slog.Logger
}

// NewStore creates a definition store connected to the given etcd cluster.
// Connectivity is verified with a health check; the store must be closed via
// Close() when no longer needed.
func NewStore(cfg StoreConfig) (*Store, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("store endpoints cannot be empty")
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "strum"
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 5 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := cli.Get(ctx, "health-check"); err != nil && err != context.DeadlineExceeded {
		cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	return &Store{client: cli, namespace: namespace, logger: logger}, nil
}

// NewStoreFromEnv creates a store using the STRUM_REGISTRY_ENDPOINTS
// environment variable, which should contain a comma-separated list of etcd
// endpoints.
//
// If the variable is not set, this returns (nil, nil): the caller works from
// local definitions only, which is not an error.
func NewStoreFromEnv() (*Store, error) {
	endpoints := os.Getenv("STRUM_REGISTRY_ENDPOINTS")
	if endpoints == "" {
		return nil, nil
	}

	list := strings.Split(endpoints, ",")
	for i, ep := range list {
		list[i] = strings.TrimSpace(ep)
	}

	return NewStore(StoreConfig{Endpoints: list})
}

// Publish writes a definition to the store, making it visible to every
// consumer of the namespace. The definition is validated locally first.
func (s *Store) Publish(ctx context.Context, def Definition) error {
	if err := New().Register(def); err != nil {
		return err
	}

	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	if _, err := s.client.Put(ctx, s.key(def.Name), string(data)); err != nil {
		return fmt.Errorf("failed to publish definition %q: %w", def.Name, err)
	}

	return nil
}

// Fetch retrieves one definition by name.
func (s *Store) Fetch(ctx context.Context, name string) (Definition, error) {
	resp, err := s.client.Get(ctx, s.key(name))
	if err != nil {
		return Definition{}, fmt.Errorf("failed to fetch definition %q: %w", name, err)
	}
	if len(resp.Kvs) == 0 {
		return Definition{}, fmt.Errorf("definition %q not found", name)
	}

	var def Definition
	if err := json.Unmarshal(resp.Kvs[0].Value, &def); err != nil {
		return Definition{}, fmt.Errorf("failed to unmarshal definition %q: %w", name, err)
	}

	return def, nil
}

// List retrieves every definition in the namespace.
func (s *Store) List(ctx context.Context) ([]Definition, error) {
	resp, err := s.client.Get(ctx, s.prefix(), clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}

	defs := make([]Definition, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var def Definition
		if err := json.Unmarshal(kv.Value, &def); err != nil {
			s.logger.Warn("skipping malformed definition",
				"key", string(kv.Key),
				"error", err)
			continue
		}
		defs = append(defs, def)
	}

	return defs, nil
}

// Delete removes a definition from the store.
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.client.Delete(ctx, s.key(name)); err != nil {
		return fmt.Errorf("failed to delete definition %q: %w", name, err)
	}
	return nil
}

// Sync loads every stored definition into reg and then follows updates until
// ctx is cancelled: published definitions are (re-)registered, deleted ones
// removed. Malformed or invalid updates are logged and skipped so one bad
// publish cannot stall the watch loop.
func (s *Store) Sync(ctx context.Context, reg *Registry) error {
	defs, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			s.logger.Warn("skipping invalid definition",
				"definition", def.Name,
				"error", err)
		}
	}

	watch := s.client.Watch(ctx, s.prefix(), clientv3.WithPrefix())

	go func() {
		for resp := range watch {
			if err := resp.Err(); err != nil {
				s.logger.Warn("definition watch error", "error", err)
				continue
			}

			for _, ev := range resp.Events {
				name := strings.TrimPrefix(string(ev.Kv.Key), s.prefix())

				switch ev.Type {
				case clientv3.EventTypePut:
					var def Definition
					if err := json.Unmarshal(ev.Kv.Value, &def); err != nil {
						s.logger.Warn("skipping malformed definition update",
							"definition", name,
							"error", err)
						continue
					}
					if err := reg.Register(def); err != nil {
						s.logger.Warn("skipping invalid definition update",
							"definition", name,
							"error", err)
						continue
					}

				case clientv3.EventTypeDelete:
					reg.Remove(name)
				}
			}
		}
	}()

	return nil
}

// Close releases the underlying etcd connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(name string) string {
	return s.prefix() + name
}

func (s *Store) prefix() string {
	return "/" + s.namespace + "/definitions/"
}
