package interfaces

import (
	"context"

	"tutorhub/internal/models"
	"tutorhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RatingRepository interface {
	// Create assigns the id and timestamps. A second rating for the same
	// (match, rater, rater type) fails with ErrDuplicate.
	Create(ctx context.Context, rating *models.Rating) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rating, error)
	// Update applies the mutable fields in updates and returns the stored
	// document after the write. Immutable keys are dropped.
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.Rating, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Match ratings
	GetByMatchID(ctx context.Context, matchID primitive.ObjectID) ([]*models.Rating, error)
	ExistsForRater(ctx context.Context, matchID, ratedBy primitive.ObjectID, raterType models.RaterType) (bool, error)

	// Ratings addressed to a user from one rater type
	GetByRatedUser(ctx context.Context, ratedUser primitive.ObjectID, raterType models.RaterType, params *utils.PaginationParams) ([]*models.Rating, int64, error)
	GetAllByRatedUser(ctx context.Context, ratedUser primitive.ObjectID, raterType models.RaterType) ([]*models.Rating, error)
}
