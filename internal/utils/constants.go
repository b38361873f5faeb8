package utils

import "time"

// Application Constants
const (
	AppName    = "TutorHub"
	AppVersion = "1.0.0"

	// Pagination
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	// Authentication
	JWTAccessTokenTTL = 24 * time.Hour

	// Ratings
	MinRatingScore       = 1
	MaxRatingScore       = 5
	MaxReviewTextLength  = 1000
	MaxRatingTags        = 10
	MaxRatingTagLength   = 50
	CommonTagsLimit      = 5
	DefaultStatsCacheTTL = 10 * time.Minute
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidToken     = "invalid token"
	ErrInvalidInput     = "invalid input"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrNotFound         = "not found"
	ErrConflict         = "conflict"
	ErrValidationFailed = "validation failed"
)

// Cache Keys
const (
	CacheRatingStatsPrefix = "rating_stats:"
)

// Event Types
const (
	EventRatingCreated = "rating.created"
	EventRatingUpdated = "rating.updated"
	EventRatingDeleted = "rating.deleted"
)
