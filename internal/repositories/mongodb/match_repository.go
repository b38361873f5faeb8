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

type matchRepository struct {
	collection *mongo.Collection
}

func NewMatchRepository(db *mongo.Database) interfaces.MatchRepository {
	return &matchRepository{
		collection: db.Collection(database.MatchesCollection),
	}
}

func (r *matchRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Match, error) {
	var match models.Match
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&match)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("match %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return &match, nil
}

func (r *matchRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range updates {
		set[k] = v
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("match %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	return nil
}
