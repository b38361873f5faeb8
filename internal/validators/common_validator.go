package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"tutorhub/internal/models"
	"tutorhub/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report json field names so messages match the request body
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validation functions
	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("rating_score", validateRatingScore)
	validate.RegisterValidation("rater_type", validateRaterType)
}

// Common validation errors
var (
	ErrInvalidObjectID  = errors.New("invalid object ID format")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrInvalidRaterType = errors.New("user type must be tutor or parent")
)

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return ValidationErrors{{Field: "body", Tag: "invalid", Message: err.Error()}}
		}
		for _, err := range fieldErrors {
			validationError := ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Value:   fmt.Sprintf("%v", err.Value()),
				Message: getErrorMessage(err),
			}
			validationErrors = append(validationErrors, validationError)
		}
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
	case "max":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s entries", err.Field(), err.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	case "object_id":
		return "Invalid ID format"
	case "rating_score":
		return fmt.Sprintf("%s must be between %d and %d", err.Field(), utils.MinRatingScore, utils.MaxRatingScore)
	case "rater_type":
		return "User type must be tutor or parent"
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

// Custom validation functions
func validateObjectID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let required tag handle empty values
	}
	_, err := primitive.ObjectIDFromHex(value)
	return err == nil
}

func validateRatingScore(fl validator.FieldLevel) bool {
	score := fl.Field().Int()
	return score >= utils.MinRatingScore && score <= utils.MaxRatingScore
}

func validateRaterType(fl validator.FieldLevel) bool {
	return models.RaterType(fl.Field().String()).IsValid()
}

func IsValidObjectID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
