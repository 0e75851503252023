package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/strum"
	"github.com/zero-day-ai/strum/pattern"
	"github.com/zero-day-ai/strum/schema"
)

// stubSource serves one parser under the name "person" and fails lookups
// for everything else.
type stubSource struct {
	parser *strum.Parser
}

func (s *stubSource) Parser(name string, opts ...strum.Option) (*strum.Parser, error) {
	if name != "person" {
		return nil, fmt.Errorf("definition %q not found", name)
	}
	return s.parser, nil
}

func newStubSource(t *testing.T) *stubSource {
	t.Helper()

	personSchema := schema.Object(map[string]schema.JSON{
		"name": schema.String(),
		"age":  schema.Int(),
		"city": schema.String(),
	}, "name", "age", "city")

	parser, err := strum.New(nil,
		strum.WithDefaultPattern(pattern.MustTemplate("{name} | {age} | {city}")),
		strum.WithValidator(personSchema),
	)
	require.NoError(t, err)

	return &stubSource{parser: parser}
}

func TestProcessWorkItem(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	ctx := context.Background()

	t.Run("successful parse", func(t *testing.T) {
		source := newStubSource(t)
		item := validWorkItem()

		result := processWorkItem(ctx, source, item, "worker-1", logger)

		assert.True(t, result.OK())
		assert.Equal(t, item.JobID, result.JobID)
		assert.Equal(t, item.Index, result.Index)
		assert.Equal(t, "worker-1", result.WorkerID)
		assert.Equal(t, "Dana", result.Data["name"])
		assert.Equal(t, int64(30), result.Data["age"])
		assert.Equal(t, "Lisbon", result.Data["city"])
		assert.GreaterOrEqual(t, result.CompletedAt, result.StartedAt)
	})

	t.Run("unknown definition", func(t *testing.T) {
		source := newStubSource(t)
		item := validWorkItem()
		item.Definition = "bogus"

		result := processWorkItem(ctx, source, item, "worker-1", logger)

		assert.False(t, result.OK())
		assert.Contains(t, result.Error, "unknown definition")
		assert.Nil(t, result.Data)
	})

	t.Run("invalid work item", func(t *testing.T) {
		source := newStubSource(t)
		item := validWorkItem()
		item.Text = ""

		result := processWorkItem(ctx, source, item, "worker-1", logger)

		assert.False(t, result.OK())
		assert.Contains(t, result.Error, "invalid work item")
	})

	t.Run("strict failure becomes item error", func(t *testing.T) {
		source := newStubSource(t)
		item := validWorkItem()
		item.Text = "Dana | thirty | Lisbon"
		item.Strict = true

		result := processWorkItem(ctx, source, item, "worker-1", logger)

		assert.False(t, result.OK())
		assert.NotEmpty(t, result.Error)
		assert.Empty(t, result.Errors)
	})

	t.Run("recovery failure becomes field errors", func(t *testing.T) {
		source := newStubSource(t)
		item := validWorkItem()
		item.Text = "Dana | thirty | Lisbon"
		item.Strict = false

		result := processWorkItem(ctx, source, item, "worker-1", logger)

		assert.Empty(t, result.Error)
		require.NotEmpty(t, result.Errors)
		assert.Equal(t, "age", result.Errors[0].Path)
		assert.Equal(t, "Dana", result.Data["name"])
	})
}

func TestWorkerEndToEnd(t *testing.T) {
	client, _ := setupTestClient(t)
	source := newStubSource(t)
	logger := slog.New(slog.DiscardHandler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := client.Subscribe(ctx, "results:job-123")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		workerLoop(ctx, 0, source, client, "parse:queue", "worker-1", logger)
	}()

	item := validWorkItem()
	require.NoError(t, client.Push(ctx, "parse:queue", item))

	select {
	case result := <-results:
		assert.True(t, result.OK())
		assert.Equal(t, "Dana", result.Data["name"])
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for worker result")
	}

	cancel()
	wg.Wait()
}
