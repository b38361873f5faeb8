package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tutorhub/internal/models"
	"tutorhub/internal/repositories/interfaces"
	"tutorhub/internal/utils"
	"tutorhub/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ratingRepository struct {
	collection *mongo.Collection
}

func NewRatingRepository(db *mongo.Database) interfaces.RatingRepository {
	return &ratingRepository{
		collection: db.Collection(database.RatingsCollection),
	}
}

// Basic CRUD operations
func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	now := time.Now().UTC()
	rating.ID = primitive.NewObjectID()
	rating.CreatedAt = now
	rating.UpdatedAt = now
	if rating.Tags == nil {
		rating.Tags = []string{}
	}

	_, err := r.collection.InsertOne(ctx, rating)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("rating already exists for match %s: %w", rating.MatchID.Hex(), interfaces.ErrDuplicate)
		}
		return fmt.Errorf("failed to create rating: %w", err)
	}

	return nil
}

func (r *ratingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rating, error) {
	var rating models.Rating
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rating)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("rating %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	return &rating, nil
}

func (r *ratingRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.Rating, error) {
	set := bson.M{}
	for k, v := range updates {
		set[k] = v
	}
	for _, field := range models.ImmutableRatingFields {
		delete(set, field)
	}
	set[models.RatingFieldUpdatedAt] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var rating models.Rating
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&rating)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("rating %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update rating: %w", err)
	}

	return &rating, nil
}

func (r *ratingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("rating %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	return nil
}

// Match ratings
func (r *ratingRepository) GetByMatchID(ctx context.Context, matchID primitive.ObjectID) ([]*models.Rating, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"match_id": matchID})
	if err != nil {
		return nil, fmt.Errorf("failed to find ratings by match ID: %w", err)
	}

	return decodeRatings(ctx, cursor)
}

func (r *ratingRepository) ExistsForRater(ctx context.Context, matchID, ratedBy primitive.ObjectID, raterType models.RaterType) (bool, error) {
	filter := bson.M{
		"match_id":   matchID,
		"rated_by":   ratedBy,
		"rater_type": raterType,
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check existing rating: %w", err)
	}

	return count > 0, nil
}

// Ratings addressed to a user
func (r *ratingRepository) GetByRatedUser(ctx context.Context, ratedUser primitive.ObjectID, raterType models.RaterType, params *utils.PaginationParams) ([]*models.Rating, int64, error) {
	filter := ratedUserFilter(ratedUser, raterType)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ratings: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find ratings: %w", err)
	}

	ratings, err := decodeRatings(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}

	return ratings, total, nil
}

func (r *ratingRepository) GetAllByRatedUser(ctx context.Context, ratedUser primitive.ObjectID, raterType models.RaterType) ([]*models.Rating, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, ratedUserFilter(ratedUser, raterType), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find ratings for user: %w", err)
	}

	return decodeRatings(ctx, cursor)
}

// Helper methods
func ratedUserFilter(ratedUser primitive.ObjectID, raterType models.RaterType) bson.M {
	return bson.M{
		"rated_user": ratedUser,
		"rater_type": raterType,
	}
}

func decodeRatings(ctx context.Context, cursor *mongo.Cursor) ([]*models.Rating, error) {
	defer cursor.Close(ctx)

	ratings := make([]*models.Rating, 0)
	for cursor.Next(ctx) {
		var rating models.Rating
		if err := cursor.Decode(&rating); err != nil {
			return nil, fmt.Errorf("failed to decode rating: %w", err)
		}
		ratings = append(ratings, &rating)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ratings: %w", err)
	}

	return ratings, nil
}
