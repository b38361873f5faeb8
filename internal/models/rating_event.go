package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingEvent is published on the rating change feed after a rating
// mutation and all of its dependent writes have completed.
type RatingEvent struct {
	Type          string             `json:"type"`
	RatingID      primitive.ObjectID `json:"rating_id"`
	MatchID       primitive.ObjectID `json:"match_id"`
	RatedBy       primitive.ObjectID `json:"rated_by"`
	RaterType     RaterType          `json:"rater_type"`
	RatedUser     primitive.ObjectID `json:"rated_user"`
	OverallRating int                `json:"overall_rating"`
	OccurredAt    time.Time          `json:"occurred_at"`
}

func NewRatingEvent(eventType string, rating *Rating, at time.Time) *RatingEvent {
	return &RatingEvent{
		Type:          eventType,
		RatingID:      rating.ID,
		MatchID:       rating.MatchID,
		RatedBy:       rating.RatedBy,
		RaterType:     rating.RaterType,
		RatedUser:     rating.RatedUser,
		OverallRating: rating.OverallRating,
		OccurredAt:    at,
	}
}
