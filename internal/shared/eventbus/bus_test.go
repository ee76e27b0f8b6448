package eventbus_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"course-station/internal/shared/eventbus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBus() *eventbus.EventBus {
	return eventbus.NewEventBusWithConfig(nil, eventbus.BusConfig{
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	})
}

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	bus := fastBus()

	var got []string
	var mu sync.Mutex
	for i := 0; i < 3; i++ {
		bus.Subscribe(eventbus.EventEnrollmentAdmitted, func(ctx context.Context, e eventbus.Event) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, e.Type())
			return nil
		})
	}

	event := eventbus.NewEvent(eventbus.EventEnrollmentAdmitted, "admission", map[string]string{"id": "e1"})
	require.NoError(t, bus.Publish(context.Background(), event))
	assert.Len(t, got, 3)
	assert.Equal(t, 3, bus.GetSubscriberCount(eventbus.EventEnrollmentAdmitted))
}

func TestPublishNoSubscribers(t *testing.T) {
	bus := fastBus()

	event := eventbus.NewEvent(eventbus.EventEnrollmentCancelled, "admission", nil)
	assert.NoError(t, bus.Publish(context.Background(), event))
}

func TestPublishRetriesFailingHandler(t *testing.T) {
	bus := fastBus()

	var attempts int32
	bus.Subscribe(eventbus.EventEnrollmentAdmitted, func(ctx context.Context, e eventbus.Event) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	})

	event := eventbus.NewEvent(eventbus.EventEnrollmentAdmitted, "admission", nil)
	require.NoError(t, bus.Publish(context.Background(), event))
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestPublishExhaustsRetries(t *testing.T) {
	bus := fastBus()

	sentinel := errors.New("broken handler")
	bus.Subscribe(eventbus.EventEnrollmentAdmitted, func(ctx context.Context, e eventbus.Event) error {
		return sentinel
	})

	event := eventbus.NewEvent(eventbus.EventEnrollmentAdmitted, "admission", nil)
	err := bus.Publish(context.Background(), event)
	assert.ErrorIs(t, err, sentinel)
}

func TestPublishAndForgetDoesNotBlock(t *testing.T) {
	bus := fastBus()

	done := make(chan struct{})
	bus.Subscribe(eventbus.EventEnrollmentAdmitted, func(ctx context.Context, e eventbus.Event) error {
		close(done)
		return nil
	})

	event := eventbus.NewEvent(eventbus.EventEnrollmentAdmitted, "admission", nil)
	bus.PublishAndForget(context.Background(), event)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was never invoked")
	}
}

// Delivery must survive cancellation of the originating request context.
func TestPublishAndForgetSurvivesCancelledContext(t *testing.T) {
	bus := fastBus()

	done := make(chan struct{})
	var calls int32
	bus.Subscribe(eventbus.EventEnrollmentAdmitted, func(ctx context.Context, e eventbus.Event) error {
		if atomic.AddInt32(&calls, 1) < 2 {
			return errors.New("transient")
		}
		close(done)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	event := eventbus.NewEvent(eventbus.EventEnrollmentAdmitted, "admission", nil)
	bus.PublishAndForget(ctx, event)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("retry aborted by cancelled request context")
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := fastBus()

	bus.Subscribe(eventbus.EventEnrollmentAdmitted, func(ctx context.Context, e eventbus.Event) error {
		t.Fatal("handler should have been removed")
		return nil
	})
	bus.Unsubscribe(eventbus.EventEnrollmentAdmitted)

	assert.Zero(t, bus.GetSubscriberCount(eventbus.EventEnrollmentAdmitted))
	event := eventbus.NewEvent(eventbus.EventEnrollmentAdmitted, "admission", nil)
	assert.NoError(t, bus.Publish(context.Background(), event))
}
