package repository

import (
	"context"

	"course-station/internal/catalog/domain/model"
)

// ReplaceOutcome reports the result of a replace-or-insert write.
type ReplaceOutcome struct {
	MatchedCount  int64  `json:"matchedCount"`
	UpsertedCount int64  `json:"upsertedCount"`
	UpsertedID    string `json:"upsertedId,omitempty"`
}

// DeleteOutcome reports the result of a delete.
type DeleteOutcome struct {
	DeletedCount int64 `json:"deletedCount"`
}

// CourseRepository is the persistence contract for courses. It enforces no
// business rules; admission policy lives in the usecase layer.
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) (string, error)
	GetByID(ctx context.Context, id string) (*model.Course, error)
	// List returns courses matching the filter. When latest is true the result
	// is sorted by createdAt descending and capped at limit.
	List(ctx context.Context, filter model.CourseFilter, latest bool, limit int64) ([]model.Course, error)
	// FindByIDs returns the courses whose ids appear in ids, in storage order.
	FindByIDs(ctx context.Context, ids []string) ([]model.Course, error)
	ReplaceOrInsert(ctx context.Context, id string, course *model.Course) (*ReplaceOutcome, error)
	Delete(ctx context.Context, id string) (*DeleteOutcome, error)
}

// EnrollmentRepository is the persistence contract for enrollments. Creation
// goes through the admission usecase only; the repository's unique
// (userEmail, courseId) index backstops the duplicate check.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) (string, error)
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	FindByUserAndCourse(ctx context.Context, userEmail, courseID string) (*model.Enrollment, error)
	CountByCourse(ctx context.Context, courseID string) (int64, error)
	CountByUser(ctx context.Context, userEmail string) (int64, error)
	ListByUser(ctx context.Context, userEmail string) ([]model.Enrollment, error)
	Delete(ctx context.Context, id string) (*DeleteOutcome, error)
	// AggregateTopCourses ranks courses by enrollment count descending. Equal
	// counts are ordered by course id ascending so the ranking is stable.
	AggregateTopCourses(ctx context.Context, limit int64) ([]model.CourseRanking, error)
}

// EnrollmentEventStore persists admission and cancellation events for external
// consumers. Implementations must tolerate being nil-configured at startup.
type EnrollmentEventStore interface {
	AppendAdmitted(ctx context.Context, event model.EnrollmentEvent) error
	AppendCancelled(ctx context.Context, event model.EnrollmentEvent) error
}
