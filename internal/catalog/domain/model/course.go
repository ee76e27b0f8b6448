package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultTotalSeats is applied when a course is created without a usable
// totalSeats value.
const DefaultTotalSeats = 2

// Course represents a course offered in the catalog. Title, banner and
// description are display data the enrollment logic never interprets.
type Course struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title        string             `json:"title" bson:"title"`
	Banner       string             `json:"banner,omitempty" bson:"banner,omitempty"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	CreatorEmail string             `json:"creatorEmail" bson:"creatorEmail"`
	TotalSeats   int                `json:"totalSeats" bson:"totalSeats"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

// NormalizeSeats coerces totalSeats into a valid capacity, falling back to the
// default when the provided value is zero or negative.
func (c *Course) NormalizeSeats() {
	if c.TotalSeats < 1 {
		c.TotalSeats = DefaultTotalSeats
	}
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	CreatorEmail string
}

// CourseRanking is one entry of the popularity aggregation: a course and its
// current enrollment count, ordered by count descending.
type CourseRanking struct {
	CourseID string `bson:"_id"`
	Count    int64  `bson:"count"`
}
