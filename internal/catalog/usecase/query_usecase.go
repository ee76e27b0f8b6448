package usecase

import (
	"context"
	"errors"

	"course-station/internal/catalog/domain/model"
	"course-station/internal/catalog/domain/repository"
	apperrors "course-station/internal/shared/errors"

	"go.uber.org/zap"
)

// DefaultPageLimit caps latest-first and popularity listings.
const DefaultPageLimit = 8

// EnrollmentStatus answers "is this user enrolled in this course".
type EnrollmentStatus struct {
	Enrolled     bool   `json:"enrolled"`
	EnrollmentID string `json:"enrollmentId,omitempty"`
}

// QueryUsecaseInterface is the read-only aggregation surface over courses and
// enrollments. None of its operations mutate state; all derive from the live
// enrollment facts, so results are exact as of each read.
type QueryUsecaseInterface interface {
	SeatsLeft(ctx context.Context, courseID string) (int64, error)
	IsEnrolled(ctx context.Context, userEmail, courseID string) (*EnrollmentStatus, error)
	PopularCourses(ctx context.Context, limit int64) ([]model.Course, error)
	ListCourses(ctx context.Context, filter model.CourseFilter, latest bool) ([]model.Course, error)
	ListEnrollmentsByUser(ctx context.Context, userEmail string) ([]model.Enrollment, error)
	CountEnrollmentsByUser(ctx context.Context, userEmail string) (int64, error)
}

// QueryUsecase implements the capacity and popularity queries.
type QueryUsecase struct {
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	pageLimit   int64
	log         *zap.Logger
}

// NewQueryUsecase creates a new query usecase. pageLimit values below 1 fall
// back to the default.
func NewQueryUsecase(
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	pageLimit int64,
	log *zap.Logger,
) *QueryUsecase {
	if pageLimit < 1 {
		pageLimit = DefaultPageLimit
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &QueryUsecase{
		courses:     courses,
		enrollments: enrollments,
		pageLimit:   pageLimit,
		log:         log,
	}
}

// SeatsLeft returns the course capacity minus its current enrollment count.
func (uc *QueryUsecase) SeatsLeft(ctx context.Context, courseID string) (int64, error) {
	course, err := uc.courses.GetByID(ctx, courseID)
	if err != nil {
		return 0, err
	}

	enrolled, err := uc.enrollments.CountByCourse(ctx, courseID)
	if err != nil {
		return 0, err
	}
	return int64(course.TotalSeats) - enrolled, nil
}

// IsEnrolled reports whether the user holds an enrollment in the course.
func (uc *QueryUsecase) IsEnrolled(ctx context.Context, userEmail, courseID string) (*EnrollmentStatus, error) {
	if userEmail == "" || courseID == "" {
		return nil, apperrors.ErrInvalidRequest
	}

	enrollment, err := uc.enrollments.FindByUserAndCourse(ctx, userEmail, courseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrEnrollmentNotFound) {
			return &EnrollmentStatus{Enrolled: false}, nil
		}
		return nil, err
	}
	return &EnrollmentStatus{
		Enrolled:     true,
		EnrollmentID: enrollment.ID.Hex(),
	}, nil
}

// PopularCourses returns the most-enrolled courses in rank order. The course
// lookup comes back in storage order, so the result is re-ordered to match the
// aggregation ranking. Rankings pointing at deleted courses are skipped.
func (uc *QueryUsecase) PopularCourses(ctx context.Context, limit int64) ([]model.Course, error) {
	if limit < 1 || limit > uc.pageLimit {
		limit = uc.pageLimit
	}

	rankings, err := uc.enrollments.AggregateTopCourses(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(rankings) == 0 {
		return []model.Course{}, nil
	}

	ids := make([]string, len(rankings))
	for i, ranking := range rankings {
		ids[i] = ranking.CourseID
	}

	courses, err := uc.courses.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.Course, len(courses))
	for _, course := range courses {
		byID[course.ID.Hex()] = course
	}

	ranked := make([]model.Course, 0, len(rankings))
	for _, ranking := range rankings {
		course, ok := byID[ranking.CourseID]
		if !ok {
			uc.log.Debug("Popularity ranking references missing course",
				zap.String("courseId", ranking.CourseID),
				zap.Int64("count", ranking.Count))
			continue
		}
		ranked = append(ranked, course)
	}
	return ranked, nil
}

// ListCourses returns courses matching the filter, newest first and capped
// when latest is set.
func (uc *QueryUsecase) ListCourses(ctx context.Context, filter model.CourseFilter, latest bool) ([]model.Course, error) {
	return uc.courses.List(ctx, filter, latest, uc.pageLimit)
}

// ListEnrollmentsByUser returns all enrollments held by a user.
func (uc *QueryUsecase) ListEnrollmentsByUser(ctx context.Context, userEmail string) ([]model.Enrollment, error) {
	if userEmail == "" {
		return nil, apperrors.ErrInvalidRequest
	}
	return uc.enrollments.ListByUser(ctx, userEmail)
}

// CountEnrollmentsByUser returns a user's total enrollment count.
func (uc *QueryUsecase) CountEnrollmentsByUser(ctx context.Context, userEmail string) (int64, error) {
	if userEmail == "" {
		return 0, apperrors.ErrInvalidRequest
	}
	return uc.enrollments.CountByUser(ctx, userEmail)
}
