package validators

import (
	"fmt"

	"tutorhub/internal/models"
	"tutorhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingCreateRequest is the body of a new rating. The author and their role
// come from the authenticated identity and are never read from the body.
type RatingCreateRequest struct {
	MatchID              string   `json:"match_id" validate:"required,object_id"`
	RatedUser            string   `json:"rated_user" validate:"required,object_id"`
	OverallRating        int      `json:"overall_rating" validate:"required,rating_score"`
	TeachingQuality      *int     `json:"teaching_quality" validate:"omitempty,rating_score"`
	ClassroomPerformance *int     `json:"classroom_performance" validate:"omitempty,rating_score"`
	StudentProgress      *int     `json:"student_progress" validate:"omitempty,rating_score"`
	Communication        *int     `json:"communication" validate:"omitempty,rating_score"`
	Punctuality          *int     `json:"punctuality" validate:"omitempty,rating_score"`
	ReviewText           string   `json:"review_text" validate:"max=1000"`
	Tags                 []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

// RatingUpdateRequest is a partial update. Nil fields are left untouched.
type RatingUpdateRequest struct {
	OverallRating        *int     `json:"overall_rating" validate:"omitempty,rating_score"`
	TeachingQuality      *int     `json:"teaching_quality" validate:"omitempty,rating_score"`
	ClassroomPerformance *int     `json:"classroom_performance" validate:"omitempty,rating_score"`
	StudentProgress      *int     `json:"student_progress" validate:"omitempty,rating_score"`
	Communication        *int     `json:"communication" validate:"omitempty,rating_score"`
	Punctuality          *int     `json:"punctuality" validate:"omitempty,rating_score"`
	ReviewText           *string  `json:"review_text" validate:"omitempty,max=1000"`
	Tags                 []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

func ValidateRatingCreate(req *RatingCreateRequest) ValidationErrors {
	req.Tags = utils.CleanStrings(req.Tags)
	return ValidateStruct(req)
}

func ValidateRatingUpdate(req *RatingUpdateRequest) ValidationErrors {
	if req.Tags != nil {
		req.Tags = utils.CleanStrings(req.Tags)
	}
	errors := ValidateStruct(req)

	if req.IsEmpty() {
		errors = append(errors, ValidationError{
			Field:   "body",
			Tag:     "required",
			Message: "At least one rating field must be provided",
		})
	}

	return errors
}

// ValidateUserType checks the user type path segment of the per-user reads.
func ValidateUserType(userType string) (models.RaterType, ValidationErrors) {
	t, ok := models.ParseRaterType(userType)
	if !ok {
		return "", ValidationErrors{{
			Field:   "user_type",
			Tag:     "rater_type",
			Value:   userType,
			Message: "User type must be tutor or parent",
		}}
	}
	return t, nil
}

// ValidateObjectID parses a hex id taken from a path parameter.
func ValidateObjectID(field, value string) (primitive.ObjectID, ValidationErrors) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, ValidationErrors{{
			Field:   field,
			Tag:     "object_id",
			Value:   value,
			Message: fmt.Sprintf("%s: %s", field, ErrInvalidObjectID.Error()),
		}}
	}
	return id, nil
}

// ToRating builds the rating document for the given author.
func (r *RatingCreateRequest) ToRating(ratedBy primitive.ObjectID, raterType models.RaterType) (*models.Rating, error) {
	matchID, err := primitive.ObjectIDFromHex(r.MatchID)
	if err != nil {
		return nil, fmt.Errorf("match_id: %w", ErrInvalidObjectID)
	}
	ratedUser, err := primitive.ObjectIDFromHex(r.RatedUser)
	if err != nil {
		return nil, fmt.Errorf("rated_user: %w", ErrInvalidObjectID)
	}

	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}

	return &models.Rating{
		MatchID:              matchID,
		RatedBy:              ratedBy,
		RaterType:            raterType,
		RatedUser:            ratedUser,
		OverallRating:        r.OverallRating,
		TeachingQuality:      r.TeachingQuality,
		ClassroomPerformance: r.ClassroomPerformance,
		StudentProgress:      r.StudentProgress,
		Communication:        r.Communication,
		Punctuality:          r.Punctuality,
		ReviewText:           r.ReviewText,
		Tags:                 tags,
	}, nil
}

func (r *RatingUpdateRequest) IsEmpty() bool {
	return r.OverallRating == nil && r.ReviewText == nil && r.Tags == nil &&
		r.TeachingQuality == nil && r.ClassroomPerformance == nil &&
		r.StudentProgress == nil && r.Communication == nil && r.Punctuality == nil
}

// ToUpdates returns the supplied mutable fields keyed by their stored names.
func (r *RatingUpdateRequest) ToUpdates() map[string]interface{} {
	updates := make(map[string]interface{})

	if r.OverallRating != nil {
		updates[models.RatingFieldOverallRating] = *r.OverallRating
	}
	dims := map[models.RatingDimension]*int{
		models.DimensionTeachingQuality:      r.TeachingQuality,
		models.DimensionClassroomPerformance: r.ClassroomPerformance,
		models.DimensionStudentProgress:      r.StudentProgress,
		models.DimensionCommunication:        r.Communication,
		models.DimensionPunctuality:          r.Punctuality,
	}
	for dim, value := range dims {
		if value != nil {
			updates[string(dim)] = *value
		}
	}
	if r.ReviewText != nil {
		updates[models.RatingFieldReviewText] = *r.ReviewText
	}
	if r.Tags != nil {
		updates[models.RatingFieldTags] = append([]string{}, r.Tags...)
	}

	return updates
}
