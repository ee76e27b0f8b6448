package mongodb

import (
	"context"
	"time"

	"course-station/internal/catalog/domain/model"
	"course-station/internal/catalog/domain/repository"
	apperrors "course-station/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoEnrollmentRepository implements the EnrollmentRepository interface using MongoDB
type MongoEnrollmentRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoEnrollmentRepository creates a new MongoDB enrollment repository.
// The unique (userEmail, courseId) index is the storage-level backstop for the
// duplicate-enrollment rule: a racing insert that slips past the usecase check
// fails here with a duplicate-key error.
func NewMongoEnrollmentRepository(db *mongo.Database) (*MongoEnrollmentRepository, error) {
	repo := &MongoEnrollmentRepository{
		db:         db,
		collection: db.Collection("enrollments"),
	}

	ctx := context.Background()

	uniquePairIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "userEmail", Value: 1},
			{Key: "courseId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.collection.Indexes().CreateOne(ctx, uniquePairIndex); err != nil {
		return nil, err
	}

	// courseId index for capacity counts and the popularity aggregation
	courseIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "courseId", Value: 1}},
	}
	if _, err := repo.collection.Indexes().CreateOne(ctx, courseIndex); err != nil {
		return nil, err
	}

	return repo, nil
}

// Create inserts a new enrollment, stamping enrolledDate. A duplicate-key
// violation maps to ErrAlreadyEnrolled.
func (r *MongoEnrollmentRepository) Create(ctx context.Context, enrollment *model.Enrollment) (string, error) {
	if enrollment.EnrolledDate.IsZero() {
		enrollment.EnrolledDate = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, enrollment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.ErrAlreadyEnrolled
		}
		return "", storeFault(err)
	}

	oid := result.InsertedID.(primitive.ObjectID)
	enrollment.ID = oid
	return oid.Hex(), nil
}

// GetByID retrieves an enrollment by its hex identifier
func (r *MongoEnrollmentRepository) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrInvalidIdentifier
	}

	var enrollment model.Enrollment
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&enrollment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		return nil, storeFault(err)
	}
	return &enrollment, nil
}

// FindByUserAndCourse returns the enrollment for the (userEmail, courseId)
// pair, or ErrEnrollmentNotFound.
func (r *MongoEnrollmentRepository) FindByUserAndCourse(ctx context.Context, userEmail, courseID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.collection.FindOne(ctx, bson.M{"userEmail": userEmail, "courseId": courseID}).Decode(&enrollment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		return nil, storeFault(err)
	}
	return &enrollment, nil
}

// CountByCourse counts enrollments referencing a course
func (r *MongoEnrollmentRepository) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"courseId": courseID})
	if err != nil {
		return 0, storeFault(err)
	}
	return count, nil
}

// CountByUser counts a user's enrollments across all courses
func (r *MongoEnrollmentRepository) CountByUser(ctx context.Context, userEmail string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"userEmail": userEmail})
	if err != nil {
		return 0, storeFault(err)
	}
	return count, nil
}

// ListByUser returns all enrollments held by a user
func (r *MongoEnrollmentRepository) ListByUser(ctx context.Context, userEmail string) ([]model.Enrollment, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userEmail": userEmail})
	if err != nil {
		return nil, storeFault(err)
	}
	defer cursor.Close(ctx)

	enrollments := []model.Enrollment{}
	if err := cursor.All(ctx, &enrollments); err != nil {
		return nil, storeFault(err)
	}
	return enrollments, nil
}

// Delete removes an enrollment by id, freeing its seat and quota slot.
func (r *MongoEnrollmentRepository) Delete(ctx context.Context, id string) (*repository.DeleteOutcome, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrInvalidIdentifier
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, storeFault(err)
	}
	return &repository.DeleteOutcome{DeletedCount: result.DeletedCount}, nil
}

// AggregateTopCourses groups enrollments by course and ranks by count
// descending. Ties are broken by course id ascending; MongoDB's sort is not
// stable for equal counts, so the secondary key makes the ranking
// deterministic.
func (r *MongoEnrollmentRepository) AggregateTopCourses(ctx context.Context, limit int64) ([]model.CourseRanking, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$courseId"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "count", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		bson.D{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeFault(err)
	}
	defer cursor.Close(ctx)

	rankings := []model.CourseRanking{}
	if err := cursor.All(ctx, &rankings); err != nil {
		return nil, storeFault(err)
	}
	return rankings, nil
}
