package usecase_test

import (
	"context"
	"sync"

	"course-station/internal/catalog/domain/model"
	"course-station/internal/catalog/domain/repository"
	apperrors "course-station/internal/shared/errors"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mock course repository
type mockCourseRepository struct {
	mock.Mock
}

func (m *mockCourseRepository) Create(ctx context.Context, course *model.Course) (string, error) {
	args := m.Called(ctx, course)
	return args.String(0), args.Error(1)
}

func (m *mockCourseRepository) GetByID(ctx context.Context, id string) (*model.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *mockCourseRepository) List(ctx context.Context, filter model.CourseFilter, latest bool, limit int64) ([]model.Course, error) {
	args := m.Called(ctx, filter, latest, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Course), args.Error(1)
}

func (m *mockCourseRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Course, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Course), args.Error(1)
}

func (m *mockCourseRepository) ReplaceOrInsert(ctx context.Context, id string, course *model.Course) (*repository.ReplaceOutcome, error) {
	args := m.Called(ctx, id, course)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ReplaceOutcome), args.Error(1)
}

func (m *mockCourseRepository) Delete(ctx context.Context, id string) (*repository.DeleteOutcome, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DeleteOutcome), args.Error(1)
}

// Mock enrollment repository
type mockEnrollmentRepository struct {
	mock.Mock
}

func (m *mockEnrollmentRepository) Create(ctx context.Context, enrollment *model.Enrollment) (string, error) {
	args := m.Called(ctx, enrollment)
	return args.String(0), args.Error(1)
}

func (m *mockEnrollmentRepository) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Enrollment), args.Error(1)
}

func (m *mockEnrollmentRepository) FindByUserAndCourse(ctx context.Context, userEmail, courseID string) (*model.Enrollment, error) {
	args := m.Called(ctx, userEmail, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Enrollment), args.Error(1)
}

func (m *mockEnrollmentRepository) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockEnrollmentRepository) CountByUser(ctx context.Context, userEmail string) (int64, error) {
	args := m.Called(ctx, userEmail)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockEnrollmentRepository) ListByUser(ctx context.Context, userEmail string) ([]model.Enrollment, error) {
	args := m.Called(ctx, userEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Enrollment), args.Error(1)
}

func (m *mockEnrollmentRepository) Delete(ctx context.Context, id string) (*repository.DeleteOutcome, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DeleteOutcome), args.Error(1)
}

func (m *mockEnrollmentRepository) AggregateTopCourses(ctx context.Context, limit int64) ([]model.CourseRanking, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CourseRanking), args.Error(1)
}

// fakeEnrollmentStore is an in-memory enrollment repository whose individual
// operations are atomic but deliberately unserialized across calls, so race
// tests exercise the admission controller's own locking.
type fakeEnrollmentStore struct {
	mu      sync.Mutex
	rows    map[string]model.Enrollment
	pairSet map[string]struct{}
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{
		rows:    make(map[string]model.Enrollment),
		pairSet: make(map[string]struct{}),
	}
}

func pairKey(userEmail, courseID string) string {
	return userEmail + "\x00" + courseID
}

func (f *fakeEnrollmentStore) Create(ctx context.Context, enrollment *model.Enrollment) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := pairKey(enrollment.UserEmail, enrollment.CourseID)
	if _, dup := f.pairSet[key]; dup {
		return "", apperrors.ErrAlreadyEnrolled
	}

	enrollment.ID = primitive.NewObjectID()
	id := enrollment.ID.Hex()
	f.rows[id] = *enrollment
	f.pairSet[key] = struct{}{}
	return id, nil
}

func (f *fakeEnrollmentStore) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	return &row, nil
}

func (f *fakeEnrollmentStore) FindByUserAndCourse(ctx context.Context, userEmail, courseID string) (*model.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.UserEmail == userEmail && row.CourseID == courseID {
			found := row
			return &found, nil
		}
	}
	return nil, apperrors.ErrEnrollmentNotFound
}

func (f *fakeEnrollmentStore) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if row.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

func (f *fakeEnrollmentStore) CountByUser(ctx context.Context, userEmail string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if row.UserEmail == userEmail {
			n++
		}
	}
	return n, nil
}

func (f *fakeEnrollmentStore) ListByUser(ctx context.Context, userEmail string) ([]model.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Enrollment{}
	for _, row := range f.rows {
		if row.UserEmail == userEmail {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentStore) Delete(ctx context.Context, id string) (*repository.DeleteOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return &repository.DeleteOutcome{DeletedCount: 0}, nil
	}
	delete(f.rows, id)
	delete(f.pairSet, pairKey(row.UserEmail, row.CourseID))
	return &repository.DeleteOutcome{DeletedCount: 1}, nil
}

func (f *fakeEnrollmentStore) AggregateTopCourses(ctx context.Context, limit int64) ([]model.CourseRanking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int64)
	for _, row := range f.rows {
		counts[row.CourseID]++
	}
	rankings := make([]model.CourseRanking, 0, len(counts))
	for courseID, count := range counts {
		rankings = append(rankings, model.CourseRanking{CourseID: courseID, Count: count})
	}
	return rankings, nil
}
