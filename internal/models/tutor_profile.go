package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TutorProfile struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Subjects      []string           `json:"subjects" bson:"subjects"`
	AverageRating float64            `json:"average_rating" bson:"average_rating" default:"0"`
	RatingCount   int64              `json:"rating_count" bson:"rating_count" default:"0"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

const (
	TutorProfileFieldAverageRating = "average_rating"
	TutorProfileFieldRatingCount   = "rating_count"
)
