package interfaces

import (
	"context"

	"tutorhub/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MatchRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Match, error)
	// Update sets the given fields. A nil value is stored as null.
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
}
