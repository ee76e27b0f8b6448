package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enrollment records one user's seat in one course. The (userEmail, courseId)
// pair is unique; courseId is kept as the course's hex id, and courseName and
// courseBanner are denormalized display copies taken at admission time.
type Enrollment struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserEmail    string             `json:"userEmail" bson:"userEmail"`
	CourseID     string             `json:"courseId" bson:"courseId"`
	CourseName   string             `json:"courseName" bson:"courseName"`
	CourseBanner string             `json:"courseBanner,omitempty" bson:"courseBanner,omitempty"`
	EnrolledDate time.Time          `json:"enrolledDate" bson:"enrolledDate"`
}

// EnrollmentEvent is the payload published on the event bus and appended to the
// Redis stream when an enrollment is admitted or cancelled.
type EnrollmentEvent struct {
	EventID      string    `json:"eventId"`
	EnrollmentID string    `json:"enrollmentId"`
	UserEmail    string    `json:"userEmail"`
	CourseID     string    `json:"courseId"`
	OccurredAt   time.Time `json:"occurredAt"`
}
