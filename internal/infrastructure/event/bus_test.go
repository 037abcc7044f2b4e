package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, shared.AggregateRef{Type: invoicing.AggregateTypeInvoice, ID: uuid.New()}, uuid.New()),
	}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func newStartedBus(t *testing.T) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	return bus
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := newStartedBus(t)
	handler := newTestHandler(invoicing.EventTypeInvoiceIssued)
	bus.Subscribe(handler)

	first := newTestEvent(invoicing.EventTypeInvoiceIssued)
	second := newTestEvent(invoicing.EventTypeInvoiceIssued)
	require.NoError(t, bus.Publish(context.Background(), first, second))

	require.Equal(t, 2, handler.count())
	assert.Equal(t, first, handler.handled[0])
	assert.Equal(t, second, handler.handled[1])
}

func TestInMemoryEventBus_Publish_Routing(t *testing.T) {
	bus := newStartedBus(t)
	issued := newTestHandler(invoicing.EventTypeInvoiceIssued)
	generated := newTestHandler(invoicing.EventTypeScheduleGenerated)
	wildcard := newTestHandler()
	bus.Subscribe(issued)
	bus.Subscribe(generated)
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent(invoicing.EventTypeInvoiceIssued),
		newTestEvent(invoicing.EventTypeAgreementCreated),
	))

	assert.Equal(t, 1, issued.count())
	assert.Equal(t, 0, generated.count())
	assert.Equal(t, 2, wildcard.count())
}

func TestInMemoryEventBus_Publish_HandlerFailures(t *testing.T) {
	bus := newStartedBus(t)

	failing := newTestHandler(invoicing.EventTypeInvoiceIssued)
	failing.err = errors.New("handler error")
	panicking := newTestHandler(invoicing.EventTypeInvoiceIssued)
	panicking.panicWith = "boom"
	healthy := newTestHandler(invoicing.EventTypeInvoiceIssued)

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent(invoicing.EventTypeInvoiceIssued))

	require.NoError(t, err)
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, panicking.count())
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := newStartedBus(t)
	handler := newTestHandler(invoicing.EventTypeInvoiceIssued)
	bus.Subscribe(handler)

	_ = bus.Publish(context.Background(), newTestEvent(invoicing.EventTypeInvoiceIssued))
	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent(invoicing.EventTypeInvoiceIssued))

	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	assert.False(t, bus.Running())
	require.NoError(t, bus.Start(ctx))
	assert.True(t, bus.Running())
	require.NoError(t, bus.Stop(ctx))
	assert.False(t, bus.Running())
}

func TestInMemoryEventBus_Publish_DropsWhenStopped(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler()
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(invoicing.EventTypeInvoiceIssued)))
	assert.Equal(t, 0, handler.count())
}

func TestInMemoryEventBus_Publish_CancelledContext(t *testing.T) {
	bus := newStartedBus(t)
	handler := newTestHandler()
	bus.Subscribe(handler)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(ctx, newTestEvent(invoicing.EventTypeInvoiceIssued))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, handler.count())
}
