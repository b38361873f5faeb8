package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tutorhub/internal/models"
	"tutorhub/internal/repositories/interfaces"
	"tutorhub/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type tutorProfileRepository struct {
	collection *mongo.Collection
}

func NewTutorProfileRepository(db *mongo.Database) interfaces.TutorProfileRepository {
	return &tutorProfileRepository{
		collection: db.Collection(database.TutorProfilesCollection),
	}
}

func (r *tutorProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.TutorProfile, error) {
	var profile models.TutorProfile
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("tutor profile %s: %w", userID.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tutor profile: %w", err)
	}

	return &profile, nil
}

func (r *tutorProfileRepository) UpdateRatingSummary(ctx context.Context, userID primitive.ObjectID, averageRating float64, ratingCount int64) error {
	update := bson.M{"$set": bson.M{
		models.TutorProfileFieldAverageRating: averageRating,
		models.TutorProfileFieldRatingCount:   ratingCount,
		"updated_at":                          time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to update tutor rating summary: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("tutor profile %s: %w", userID.Hex(), interfaces.ErrNotFound)
	}

	return nil
}
