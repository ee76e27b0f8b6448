package usecase

import (
	"context"
	"errors"
	"time"

	"course-station/internal/catalog/domain/model"
	"course-station/internal/catalog/domain/repository"
	apperrors "course-station/internal/shared/errors"
	"course-station/internal/shared/eventbus"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultEnrollmentQuota is the maximum number of courses a user may be
// enrolled in at once, unless configured otherwise.
const DefaultEnrollmentQuota = 3

// AdmissionRequest carries one enrollment attempt.
type AdmissionRequest struct {
	UserEmail    string `json:"userEmail"`
	CourseID     string `json:"courseId"`
	CourseName   string `json:"courseName"`
	CourseBanner string `json:"courseBanner,omitempty"`
}

// AdmissionUsecaseInterface is the single authority allowed to create and
// remove enrollments.
type AdmissionUsecaseInterface interface {
	RequestEnrollment(ctx context.Context, req AdmissionRequest) (*model.Enrollment, error)
	CancelEnrollment(ctx context.Context, enrollmentID string) error
}

// AdmissionUsecase decides accept/reject for enrollment attempts. The checks
// read counters that the accepted insert then changes, so each attempt holds
// the course lock and the user lock for the whole sequence; the repository's
// unique (userEmail, courseId) index backstops the duplicate rule for any
// writer outside this process.
type AdmissionUsecase struct {
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	events      repository.EnrollmentEventStore
	bus         eventbus.EventBusInterface
	quota       int64
	courseLocks *keyedMutex
	userLocks   *keyedMutex
	log         *zap.Logger
}

// NewAdmissionUsecase creates a new admission usecase. events may be nil when
// no external event store is configured; quota values below 1 fall back to the
// default.
func NewAdmissionUsecase(
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	events repository.EnrollmentEventStore,
	bus eventbus.EventBusInterface,
	quota int64,
	log *zap.Logger,
) *AdmissionUsecase {
	if quota < 1 {
		quota = DefaultEnrollmentQuota
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AdmissionUsecase{
		courses:     courses,
		enrollments: enrollments,
		events:      events,
		bus:         bus,
		quota:       quota,
		courseLocks: newKeyedMutex(),
		userLocks:   newKeyedMutex(),
		log:         log,
	}
}

// RequestEnrollment admits a user into a course or rejects the attempt.
// Check order is fixed: capacity, then quota, then duplicate, so a repeat
// attempt against a full course still reports the capacity rejection.
func (uc *AdmissionUsecase) RequestEnrollment(ctx context.Context, req AdmissionRequest) (*model.Enrollment, error) {
	if req.UserEmail == "" || req.CourseID == "" || req.CourseName == "" {
		return nil, apperrors.ErrInvalidRequest
	}
	if _, err := primitive.ObjectIDFromHex(req.CourseID); err != nil {
		return nil, apperrors.ErrInvalidIdentifier
	}

	// Lock order is course then user, everywhere, so concurrent admissions
	// cannot deadlock.
	uc.courseLocks.Lock(req.CourseID)
	defer uc.courseLocks.Unlock(req.CourseID)
	uc.userLocks.Lock(req.UserEmail)
	defer uc.userLocks.Unlock(req.UserEmail)

	course, err := uc.courses.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	enrolled, err := uc.enrollments.CountByCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if enrolled >= int64(course.TotalSeats) {
		uc.log.Info("Admission rejected: course full",
			zap.String("courseId", req.CourseID),
			zap.String("userEmail", req.UserEmail),
			zap.Int64("enrolled", enrolled),
			zap.Int("totalSeats", course.TotalSeats))
		return nil, apperrors.ErrCapacityExceeded
	}

	held, err := uc.enrollments.CountByUser(ctx, req.UserEmail)
	if err != nil {
		return nil, err
	}
	if held >= uc.quota {
		uc.log.Info("Admission rejected: quota reached",
			zap.String("userEmail", req.UserEmail),
			zap.Int64("held", held),
			zap.Int64("quota", uc.quota))
		return nil, apperrors.ErrQuotaExceeded
	}

	_, err = uc.enrollments.FindByUserAndCourse(ctx, req.UserEmail, req.CourseID)
	if err == nil {
		return nil, apperrors.ErrAlreadyEnrolled
	}
	if !errors.Is(err, apperrors.ErrEnrollmentNotFound) {
		return nil, err
	}

	enrollment := &model.Enrollment{
		UserEmail:    req.UserEmail,
		CourseID:     req.CourseID,
		CourseName:   req.CourseName,
		CourseBanner: req.CourseBanner,
		EnrolledDate: time.Now(),
	}

	id, err := uc.enrollments.Create(ctx, enrollment)
	if err != nil {
		// The unique index catches a duplicate inserted by another writer
		// between the check and the insert.
		return nil, err
	}

	uc.log.Info("Admission accepted",
		zap.String("enrollmentId", id),
		zap.String("courseId", req.CourseID),
		zap.String("userEmail", req.UserEmail))

	uc.publish(ctx, eventbus.EventEnrollmentAdmitted, enrollment)
	return enrollment, nil
}

// CancelEnrollment removes an enrollment, freeing its seat and quota slot.
// Capacity and quota are derived live from the enrollment count, so the
// deletion alone releases both.
func (uc *AdmissionUsecase) CancelEnrollment(ctx context.Context, enrollmentID string) error {
	// Read the record first so the cancellation event carries the pair.
	enrollment, err := uc.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return err
	}

	outcome, err := uc.enrollments.Delete(ctx, enrollmentID)
	if err != nil {
		return err
	}
	if outcome.DeletedCount == 0 {
		return apperrors.ErrEnrollmentNotFound
	}

	uc.log.Info("Enrollment cancelled",
		zap.String("enrollmentId", enrollmentID),
		zap.String("courseId", enrollment.CourseID),
		zap.String("userEmail", enrollment.UserEmail))

	uc.publish(ctx, eventbus.EventEnrollmentCancelled, enrollment)
	return nil
}

// publish fans the event out to the in-process bus and, when configured, the
// Redis stream. Delivery failures are logged and never fail the admission.
func (uc *AdmissionUsecase) publish(ctx context.Context, eventType string, enrollment *model.Enrollment) {
	event := model.EnrollmentEvent{
		EventID:      uuid.NewString(),
		EnrollmentID: enrollment.ID.Hex(),
		UserEmail:    enrollment.UserEmail,
		CourseID:     enrollment.CourseID,
		OccurredAt:   time.Now(),
	}

	if uc.bus != nil {
		uc.bus.PublishAndForget(ctx, eventbus.NewEvent(eventType, "catalog.admission", event))
	}

	if uc.events != nil {
		var err error
		switch eventType {
		case eventbus.EventEnrollmentAdmitted:
			err = uc.events.AppendAdmitted(ctx, event)
		case eventbus.EventEnrollmentCancelled:
			err = uc.events.AppendCancelled(ctx, event)
		}
		if err != nil {
			uc.log.Warn("Enrollment event store append failed",
				zap.String("eventType", eventType),
				zap.Error(err))
		}
	}
}
