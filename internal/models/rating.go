package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Rating struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MatchID              primitive.ObjectID `json:"match_id" bson:"match_id" validate:"required"`
	RatedBy              primitive.ObjectID `json:"rated_by" bson:"rated_by" validate:"required"`
	RaterType            RaterType          `json:"rater_type" bson:"rater_type" validate:"required"`
	RatedUser            primitive.ObjectID `json:"rated_user" bson:"rated_user" validate:"required"`
	OverallRating        int                `json:"overall_rating" bson:"overall_rating" validate:"required,min=1,max=5"`
	TeachingQuality      *int               `json:"teaching_quality,omitempty" bson:"teaching_quality,omitempty"`
	ClassroomPerformance *int               `json:"classroom_performance,omitempty" bson:"classroom_performance,omitempty"`
	StudentProgress      *int               `json:"student_progress,omitempty" bson:"student_progress,omitempty"`
	Communication        *int               `json:"communication,omitempty" bson:"communication,omitempty"`
	Punctuality          *int               `json:"punctuality,omitempty" bson:"punctuality,omitempty"`
	ReviewText           string             `json:"review_text,omitempty" bson:"review_text,omitempty"`
	Tags                 []string           `json:"tags" bson:"tags"`
	CreatedAt            time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" bson:"updated_at"`
}

type RatingDimension string

const (
	DimensionTeachingQuality      RatingDimension = "teaching_quality"
	DimensionClassroomPerformance RatingDimension = "classroom_performance"
	DimensionStudentProgress      RatingDimension = "student_progress"
	DimensionCommunication        RatingDimension = "communication"
	DimensionPunctuality          RatingDimension = "punctuality"
)

// RatingDimensions lists the optional per-dimension scores in display order.
var RatingDimensions = []RatingDimension{
	DimensionTeachingQuality,
	DimensionClassroomPerformance,
	DimensionStudentProgress,
	DimensionCommunication,
	DimensionPunctuality,
}

// Dimension returns the score for d, or nil when the rating does not carry it.
func (r *Rating) Dimension(d RatingDimension) *int {
	switch d {
	case DimensionTeachingQuality:
		return r.TeachingQuality
	case DimensionClassroomPerformance:
		return r.ClassroomPerformance
	case DimensionStudentProgress:
		return r.StudentProgress
	case DimensionCommunication:
		return r.Communication
	case DimensionPunctuality:
		return r.Punctuality
	}
	return nil
}

// Mutable fields accepted by a rating update. Identity, authorship and
// created_at are never part of this set.
const (
	RatingFieldOverallRating = "overall_rating"
	RatingFieldReviewText    = "review_text"
	RatingFieldTags          = "tags"
	RatingFieldUpdatedAt     = "updated_at"
)

var ImmutableRatingFields = []string{"_id", "match_id", "rated_by", "rater_type", "rated_user", "created_at"}

type DimensionStats struct {
	TeachingQuality      float64 `json:"teaching_quality"`
	ClassroomPerformance float64 `json:"classroom_performance"`
	StudentProgress      float64 `json:"student_progress"`
	Communication        float64 `json:"communication"`
	Punctuality          float64 `json:"punctuality"`
}

func (s *DimensionStats) Set(d RatingDimension, value float64) {
	switch d {
	case DimensionTeachingQuality:
		s.TeachingQuality = value
	case DimensionClassroomPerformance:
		s.ClassroomPerformance = value
	case DimensionStudentProgress:
		s.StudentProgress = value
	case DimensionCommunication:
		s.Communication = value
	case DimensionPunctuality:
		s.Punctuality = value
	}
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type RatingStats struct {
	AverageRating  float64        `json:"average_rating"`
	TotalRatings   int            `json:"total_ratings"`
	DimensionStats DimensionStats `json:"dimension_stats"`
	CommonTags     []TagCount     `json:"common_tags"`
}
