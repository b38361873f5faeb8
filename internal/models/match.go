package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusActive    MatchStatus = "active"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCancelled MatchStatus = "cancelled"
)

// Match is owned by the matching workflow. The rating service only reads it
// and writes the denormalized rating summary fields.
type Match struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ParentID     primitive.ObjectID `json:"parent_id" bson:"parent_id"`
	TutorID      primitive.ObjectID `json:"tutor_id" bson:"tutor_id"`
	Status       MatchStatus        `json:"status" bson:"status"`
	ParentRating *int               `json:"parent_rating" bson:"parent_rating"`
	ParentReview *string            `json:"parent_review" bson:"parent_review"`
	TutorRating  *int               `json:"tutor_rating" bson:"tutor_rating"`
	TutorReview  *string            `json:"tutor_review" bson:"tutor_review"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

const (
	MatchFieldParentRating = "parent_rating"
	MatchFieldParentReview = "parent_review"
	MatchFieldTutorRating  = "tutor_rating"
	MatchFieldTutorReview  = "tutor_review"
)
