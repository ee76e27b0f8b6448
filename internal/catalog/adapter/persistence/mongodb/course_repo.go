package mongodb

import (
	"context"
	"fmt"
	"time"

	"course-station/internal/catalog/domain/model"
	"course-station/internal/catalog/domain/repository"
	apperrors "course-station/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCourseRepository implements the CourseRepository interface using MongoDB
type MongoCourseRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoCourseRepository creates a new MongoDB course repository
func NewMongoCourseRepository(db *mongo.Database) (*MongoCourseRepository, error) {
	repo := &MongoCourseRepository{
		db:         db,
		collection: db.Collection("courses"),
	}

	ctx := context.Background()

	// createdAt index for latest-first listings
	createdAtIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}
	if _, err := repo.collection.Indexes().CreateOne(ctx, createdAtIndex); err != nil {
		return nil, err
	}

	// creatorEmail index for owner-filtered listings
	creatorIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "creatorEmail", Value: 1}},
	}
	if _, err := repo.collection.Indexes().CreateOne(ctx, creatorIndex); err != nil {
		return nil, err
	}

	return repo, nil
}

// Create inserts a new course, normalizing totalSeats and stamping createdAt.
func (r *MongoCourseRepository) Create(ctx context.Context, course *model.Course) (string, error) {
	course.NormalizeSeats()
	course.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, course)
	if err != nil {
		return "", storeFault(err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	course.ID = oid
	return oid.Hex(), nil
}

// GetByID retrieves a course by its hex identifier
func (r *MongoCourseRepository) GetByID(ctx context.Context, id string) (*model.Course, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrInvalidIdentifier
	}

	var course model.Course
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&course)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, storeFault(err)
	}
	return &course, nil
}

// List returns courses matching the filter, newest first and capped at limit
// when latest is set.
func (r *MongoCourseRepository) List(ctx context.Context, filter model.CourseFilter, latest bool, limit int64) ([]model.Course, error) {
	query := bson.M{}
	if filter.CreatorEmail != "" {
		query["creatorEmail"] = filter.CreatorEmail
	}

	opts := options.Find()
	if latest {
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
		if limit > 0 {
			opts.SetLimit(limit)
		}
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, storeFault(err)
	}
	defer cursor.Close(ctx)

	courses := []model.Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, storeFault(err)
	}
	return courses, nil
}

// FindByIDs returns the courses whose hex ids appear in ids. Unknown and
// malformed ids are skipped; the popularity join tolerates orphaned rankings.
func (r *MongoCourseRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Course, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []model.Course{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, storeFault(err)
	}
	defer cursor.Close(ctx)

	courses := []model.Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, storeFault(err)
	}
	return courses, nil
}

// ReplaceOrInsert performs a full-document upsert keyed by id.
func (r *MongoCourseRepository) ReplaceOrInsert(ctx context.Context, id string, course *model.Course) (*repository.ReplaceOutcome, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrInvalidIdentifier
	}

	course.ID = oid
	course.NormalizeSeats()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": oid}, course, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, storeFault(err)
	}

	outcome := &repository.ReplaceOutcome{
		MatchedCount:  result.MatchedCount,
		UpsertedCount: result.UpsertedCount,
	}
	if upserted, ok := result.UpsertedID.(primitive.ObjectID); ok {
		outcome.UpsertedID = upserted.Hex()
	}
	return outcome, nil
}

// Delete removes a course by id. Existing enrollments are left in place; see
// the catalog usecase for the orphan policy.
func (r *MongoCourseRepository) Delete(ctx context.Context, id string) (*repository.DeleteOutcome, error) {
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

// storeFault marks an infrastructure-level failure so callers can distinguish
// it from business-rule rejections.
func storeFault(err error) error {
	return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
}
