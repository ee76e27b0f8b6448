package usecase

import (
	"context"

	"course-station/internal/catalog/domain/model"
	"course-station/internal/catalog/domain/repository"
	apperrors "course-station/internal/shared/errors"

	"go.uber.org/zap"
)

// CourseUsecaseInterface covers course lifecycle management.
type CourseUsecaseInterface interface {
	CreateCourse(ctx context.Context, course *model.Course) (string, error)
	GetCourse(ctx context.Context, id string) (*model.Course, error)
	UpdateCourse(ctx context.Context, id string, course *model.Course) (*repository.ReplaceOutcome, error)
	DeleteCourse(ctx context.Context, id string) (*repository.DeleteOutcome, error)
}

// CourseUsecase implements course creation, replacement and deletion.
type CourseUsecase struct {
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	log         *zap.Logger
}

// NewCourseUsecase creates a new course usecase
func NewCourseUsecase(
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	log *zap.Logger,
) *CourseUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CourseUsecase{
		courses:     courses,
		enrollments: enrollments,
		log:         log,
	}
}

// CreateCourse stores a new course. Seat normalization and the createdAt stamp
// happen in the repository.
func (uc *CourseUsecase) CreateCourse(ctx context.Context, course *model.Course) (string, error) {
	if course.Title == "" || course.CreatorEmail == "" {
		return "", apperrors.ErrInvalidRequest
	}

	id, err := uc.courses.Create(ctx, course)
	if err != nil {
		return "", err
	}

	uc.log.Info("Course created",
		zap.String("courseId", id),
		zap.String("creatorEmail", course.CreatorEmail),
		zap.Int("totalSeats", course.TotalSeats))
	return id, nil
}

// GetCourse retrieves a course by id
func (uc *CourseUsecase) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	return uc.courses.GetByID(ctx, id)
}

// UpdateCourse replaces the course document, inserting it when absent.
func (uc *CourseUsecase) UpdateCourse(ctx context.Context, id string, course *model.Course) (*repository.ReplaceOutcome, error) {
	return uc.courses.ReplaceOrInsert(ctx, id, course)
}

// DeleteCourse removes a course. Deletion does not cascade: enrollments
// referencing the course stay in place and keep occupying their holders'
// quota. The remaining count is logged so the orphaned records are visible.
func (uc *CourseUsecase) DeleteCourse(ctx context.Context, id string) (*repository.DeleteOutcome, error) {
	outcome, err := uc.courses.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	if outcome.DeletedCount > 0 {
		if orphaned, countErr := uc.enrollments.CountByCourse(ctx, id); countErr == nil && orphaned > 0 {
			uc.log.Warn("Course deleted with active enrollments",
				zap.String("courseId", id),
				zap.Int64("orphanedEnrollments", orphaned))
		}
	}
	return outcome, nil
}
