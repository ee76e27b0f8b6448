package usecase_test

import (
	"context"
	"testing"

	"course-station/internal/catalog/domain/model"
	"course-station/internal/catalog/usecase"
	apperrors "course-station/internal/shared/errors"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QueryUsecaseTestSuite struct {
	suite.Suite
	mockCourses     *mockCourseRepository
	mockEnrollments *mockEnrollmentRepository
	usecase         *usecase.QueryUsecase
}

func (s *QueryUsecaseTestSuite) SetupTest() {
	s.mockCourses = new(mockCourseRepository)
	s.mockEnrollments = new(mockEnrollmentRepository)
	s.usecase = usecase.NewQueryUsecase(s.mockCourses, s.mockEnrollments, 8, nil)
}

func (s *QueryUsecaseTestSuite) TestSeatsLeft() {
	courseID := primitive.NewObjectID()
	s.mockCourses.On("GetByID", mock.Anything, courseID.Hex()).
		Return(&model.Course{ID: courseID, TotalSeats: 10}, nil)
	s.mockEnrollments.On("CountByCourse", mock.Anything, courseID.Hex()).Return(int64(7), nil)

	seats, err := s.usecase.SeatsLeft(context.Background(), courseID.Hex())
	s.Require().NoError(err)
	s.Equal(int64(3), seats)
}

func (s *QueryUsecaseTestSuite) TestSeatsLeftCourseNotFound() {
	id := primitive.NewObjectID().Hex()
	s.mockCourses.On("GetByID", mock.Anything, id).Return(nil, apperrors.ErrCourseNotFound)

	_, err := s.usecase.SeatsLeft(context.Background(), id)
	s.ErrorIs(err, apperrors.ErrCourseNotFound)
}

func (s *QueryUsecaseTestSuite) TestIsEnrolled() {
	enrollmentID := primitive.NewObjectID()
	s.mockEnrollments.On("FindByUserAndCourse", mock.Anything, "user1@example.com", "course1").
		Return(&model.Enrollment{ID: enrollmentID}, nil)

	status, err := s.usecase.IsEnrolled(context.Background(), "user1@example.com", "course1")
	s.Require().NoError(err)
	s.True(status.Enrolled)
	s.Equal(enrollmentID.Hex(), status.EnrollmentID)
}

func (s *QueryUsecaseTestSuite) TestIsEnrolledNegative() {
	s.mockEnrollments.On("FindByUserAndCourse", mock.Anything, "user1@example.com", "course1").
		Return(nil, apperrors.ErrEnrollmentNotFound)

	status, err := s.usecase.IsEnrolled(context.Background(), "user1@example.com", "course1")
	s.Require().NoError(err)
	s.False(status.Enrolled)
	s.Empty(status.EnrollmentID)
}

func (s *QueryUsecaseTestSuite) TestIsEnrolledMissingParams() {
	_, err := s.usecase.IsEnrolled(context.Background(), "", "course1")
	s.ErrorIs(err, apperrors.ErrInvalidRequest)
}

// The course lookup returns storage order; the result must follow the
// aggregation's rank order.
func (s *QueryUsecaseTestSuite) TestPopularCoursesPreservesRankOrder() {
	first := model.Course{ID: primitive.NewObjectID(), Title: "First"}
	second := model.Course{ID: primitive.NewObjectID(), Title: "Second"}
	third := model.Course{ID: primitive.NewObjectID(), Title: "Third"}

	rankings := []model.CourseRanking{
		{CourseID: first.ID.Hex(), Count: 9},
		{CourseID: second.ID.Hex(), Count: 5},
		{CourseID: third.ID.Hex(), Count: 2},
	}
	s.mockEnrollments.On("AggregateTopCourses", mock.Anything, int64(3)).Return(rankings, nil)
	// Storage order differs from rank order.
	s.mockCourses.On("FindByIDs", mock.Anything, mock.Anything).
		Return([]model.Course{third, first, second}, nil)

	courses, err := s.usecase.PopularCourses(context.Background(), 3)
	s.Require().NoError(err)
	s.Require().Len(courses, 3)
	s.Equal("First", courses[0].Title)
	s.Equal("Second", courses[1].Title)
	s.Equal("Third", courses[2].Title)
}

// Rankings referencing deleted courses are dropped, not errors.
func (s *QueryUsecaseTestSuite) TestPopularCoursesSkipsOrphanedRanking() {
	kept := model.Course{ID: primitive.NewObjectID(), Title: "Kept"}
	deletedID := primitive.NewObjectID().Hex()

	rankings := []model.CourseRanking{
		{CourseID: deletedID, Count: 4},
		{CourseID: kept.ID.Hex(), Count: 3},
	}
	s.mockEnrollments.On("AggregateTopCourses", mock.Anything, int64(2)).Return(rankings, nil)
	s.mockCourses.On("FindByIDs", mock.Anything, mock.Anything).Return([]model.Course{kept}, nil)

	courses, err := s.usecase.PopularCourses(context.Background(), 2)
	s.Require().NoError(err)
	s.Require().Len(courses, 1)
	s.Equal("Kept", courses[0].Title)
}

func (s *QueryUsecaseTestSuite) TestPopularCoursesEmpty() {
	s.mockEnrollments.On("AggregateTopCourses", mock.Anything, int64(8)).
		Return([]model.CourseRanking{}, nil)

	courses, err := s.usecase.PopularCourses(context.Background(), 0)
	s.Require().NoError(err)
	s.Empty(courses)
}

func (s *QueryUsecaseTestSuite) TestListCourses() {
	filter := model.CourseFilter{CreatorEmail: "teacher@example.com"}
	s.mockCourses.On("List", mock.Anything, filter, true, int64(8)).
		Return([]model.Course{{Title: "Newest"}}, nil)

	courses, err := s.usecase.ListCourses(context.Background(), filter, true)
	s.Require().NoError(err)
	s.Len(courses, 1)
}

func (s *QueryUsecaseTestSuite) TestListEnrollmentsByUserRequiresEmail() {
	_, err := s.usecase.ListEnrollmentsByUser(context.Background(), "")
	s.ErrorIs(err, apperrors.ErrInvalidRequest)
}

func (s *QueryUsecaseTestSuite) TestCountEnrollmentsByUser() {
	s.mockEnrollments.On("CountByUser", mock.Anything, "user1@example.com").Return(int64(2), nil)

	count, err := s.usecase.CountEnrollmentsByUser(context.Background(), "user1@example.com")
	s.Require().NoError(err)
	s.Equal(int64(2), count)
}

func TestQueryUsecaseTestSuite(t *testing.T) {
	suite.Run(t, new(QueryUsecaseTestSuite))
}
