package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"course-station/internal/shared/logger"
)

// Event types emitted by the catalog module.
const (
	EventEnrollmentAdmitted  = "enrollment.admitted"
	EventEnrollmentCancelled = "enrollment.cancelled"
)

// Event represents a generic event
type Event interface {
	Type() string
	Data() interface{}
	Timestamp() time.Time
	Source() string
}

// Handler defines the event handler function type
type Handler func(ctx context.Context, event Event) error

// EventBusInterface defines the contract for event bus implementations
type EventBusInterface interface {
	Subscribe(eventType string, handler Handler)
	Publish(ctx context.Context, event Event) error
	PublishAndForget(ctx context.Context, event Event)
	Unsubscribe(eventType string)
	GetSubscriberCount(eventType string) int
}

// BaseEvent is a plain Event implementation
type BaseEvent struct {
	EventType   string
	EventData   interface{}
	EventTime   time.Time
	EventSource string
}

func (e BaseEvent) Type() string         { return e.EventType }
func (e BaseEvent) Data() interface{}    { return e.EventData }
func (e BaseEvent) Timestamp() time.Time { return e.EventTime }
func (e BaseEvent) Source() string       { return e.EventSource }

// NewEvent creates a BaseEvent stamped with the current time
func NewEvent(eventType, source string, data interface{}) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventData:   data,
		EventTime:   time.Now(),
		EventSource: source,
	}
}

// EventBus represents an in-memory event bus
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   logger.Logger
	config   BusConfig
}

// BusConfig holds configuration for the event bus
type BusConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultBusConfig returns default configuration
func DefaultBusConfig() BusConfig {
	return BusConfig{
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
	}
}

// NewEventBus creates a new event bus instance
func NewEventBus(log logger.Logger) *EventBus {
	return NewEventBusWithConfig(log, DefaultBusConfig())
}

// NewEventBusWithConfig creates a new event bus with custom configuration
func NewEventBusWithConfig(log logger.Logger, config BusConfig) *EventBus {
	if log == nil {
		log = &noopLogger{}
	}
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   log,
		config:   config,
	}
}

// Subscribe adds a handler for a specific event type
func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
}

// Unsubscribe removes all handlers for an event type
func (eb *EventBus) Unsubscribe(eventType string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	delete(eb.handlers, eventType)
}

// GetSubscriberCount returns the number of handlers for an event type
func (eb *EventBus) GetSubscriberCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}

// Publish delivers an event to all subscribed handlers synchronously, retrying
// each failing handler up to MaxRetries times.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers := append([]Handler(nil), eb.handlers[event.Type()]...)
	eb.mu.RUnlock()

	for _, handler := range handlers {
		if err := eb.deliver(ctx, handler, event); err != nil {
			return fmt.Errorf("event %s delivery failed: %w", event.Type(), err)
		}
	}
	return nil
}

// PublishAndForget delivers an event asynchronously; failures are logged, never
// returned. Used where delivery must not affect the originating operation.
func (eb *EventBus) PublishAndForget(ctx context.Context, event Event) {
	go func() {
		if err := eb.Publish(context.WithoutCancel(ctx), event); err != nil {
			eb.logger.Warnf("async event delivery failed: %v", err)
		}
	}()
}

func (eb *EventBus) deliver(ctx context.Context, handler Handler, event Event) error {
	var err error
	for attempt := 0; attempt <= eb.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(eb.config.RetryDelay):
			}
		}
		if err = handler(ctx, event); err == nil {
			return nil
		}
	}
	return err
}

type noopLogger struct{}

func (noopLogger) Debug(args ...interface{})                 {}
func (noopLogger) Info(args ...interface{})                  {}
func (noopLogger) Warn(args ...interface{})                  {}
func (noopLogger) Error(args ...interface{})                 {}
func (noopLogger) Fatal(args ...interface{})                 {}
func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Warnf(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}
func (noopLogger) Fatalf(format string, args ...interface{}) {}
func (n noopLogger) WithFields(map[string]interface{}) logger.Logger {
	return n
}
func (n noopLogger) WithContext(context.Context) logger.Logger { return n }
func (n noopLogger) WithComponent(string) logger.Logger        { return n }
