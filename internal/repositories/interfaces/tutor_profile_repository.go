package interfaces

import (
	"context"

	"tutorhub/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TutorProfileRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.TutorProfile, error)
	// UpdateRatingSummary overwrites the tutor's aggregate rating fields.
	UpdateRatingSummary(ctx context.Context, userID primitive.ObjectID, averageRating float64, ratingCount int64) error
}
