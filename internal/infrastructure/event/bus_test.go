package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Task", uuid.New(), uuid.New())}
}

type recordingHandler struct {
	mu      sync.Mutex
	types   []string
	handled []shared.DomainEvent
	err     error
	panic   bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panic {
		panic("boom")
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Routing(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())

	tasks := &recordingHandler{types: []string{"TaskCompleted"}}
	all := &recordingHandler{}
	bus.Subscribe(tasks)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(ctx, newTestEvent("TaskCompleted"), newTestEvent("SaleCreated")))

	assert.Equal(t, 1, tasks.count())
	assert.Equal(t, 2, all.count())

	bus.Unsubscribe(tasks)
	require.NoError(t, bus.Publish(ctx, newTestEvent("TaskCompleted")))
	assert.Equal(t, 1, tasks.count())
	assert.Equal(t, 3, all.count())
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(nil)

	failing := &recordingHandler{types: []string{"SaleCreated"}, err: errors.New("db down")}
	panicking := &recordingHandler{types: []string{"SaleCreated"}, panic: true}
	healthy := &recordingHandler{types: []string{"SaleCreated"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	assert.NoError(t, bus.Publish(ctx, newTestEvent("SaleCreated")))
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Stop(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(nil)
	h := &recordingHandler{types: []string{"X"}}
	bus.Subscribe(h)

	require.NoError(t, bus.Stop(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("X")))
	assert.Zero(t, h.count())

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("X")))
	assert.Equal(t, 1, h.count())
}

func TestIdempotentHandler(t *testing.T) {
	ctx := context.Background()
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	t.Run("handles each event once", func(t *testing.T) {
		inner := &recordingHandler{types: []string{"X"}}
		h := NewIdempotentHandler(inner, store, nil)
		evt := newTestEvent("X")

		require.NoError(t, h.Handle(ctx, evt))
		require.NoError(t, h.Handle(ctx, evt))
		assert.Equal(t, 1, inner.count())
		assert.Equal(t, []string{"X"}, h.EventTypes())
	})

	t.Run("retries after a failure", func(t *testing.T) {
		inner := &recordingHandler{types: []string{"X"}, err: errors.New("temporary")}
		h := NewIdempotentHandler(inner, store, nil)
		evt := newTestEvent("X")

		assert.Error(t, h.Handle(ctx, evt))
		inner.err = nil
		assert.NoError(t, h.Handle(ctx, evt))
		assert.Equal(t, 2, inner.count())
	})
}
