package persistence

import (
	"context"

	"course-station/internal/catalog/domain/model"
	"course-station/internal/shared/eventbus"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stream names for the enrollment event trail.
const (
	admittedStream  = "enrollments:admitted"
	cancelledStream = "enrollments:cancelled"
)

// RedisEventStore appends enrollment lifecycle events to Redis Streams so
// external consumers can follow admissions and cancellations. It is a trail,
// not a cache: seat and quota counts are always derived live from the
// enrollment collection.
type RedisEventStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisEventStore creates a new Redis-based enrollment event store
func NewRedisEventStore(client *redis.Client, log *zap.Logger) *RedisEventStore {
	return &RedisEventStore{
		client: client,
		logger: log,
	}
}

// AppendAdmitted records an accepted admission
func (r *RedisEventStore) AppendAdmitted(ctx context.Context, event model.EnrollmentEvent) error {
	return r.append(ctx, admittedStream, eventbus.EventEnrollmentAdmitted, event)
}

// AppendCancelled records a cancelled enrollment
func (r *RedisEventStore) AppendCancelled(ctx context.Context, event model.EnrollmentEvent) error {
	return r.append(ctx, cancelledStream, eventbus.EventEnrollmentCancelled, event)
}

func (r *RedisEventStore) append(ctx context.Context, stream, eventType string, event model.EnrollmentEvent) error {
	_, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"type":         eventType,
			"eventId":      event.EventID,
			"enrollmentId": event.EnrollmentID,
			"userEmail":    event.UserEmail,
			"courseId":     event.CourseID,
			"occurredAt":   event.OccurredAt.UnixNano(),
		},
	}).Result()

	if err != nil {
		r.logger.Error("Failed to append enrollment event",
			zap.String("stream", stream),
			zap.String("eventType", eventType),
			zap.Error(err))
		return err
	}

	r.logger.Debug("Enrollment event appended",
		zap.String("stream", stream),
		zap.String("eventType", eventType),
		zap.String("enrollmentId", event.EnrollmentID))

	return nil
}
