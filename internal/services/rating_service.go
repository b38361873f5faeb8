package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tutorhub/internal/config"
	"tutorhub/internal/models"
	"tutorhub/internal/repositories/interfaces"
	"tutorhub/internal/utils"
	"tutorhub/internal/validators"
	"tutorhub/pkg/cache"
	"tutorhub/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Author is the authenticated caller of a rating operation.
type Author struct {
	UserID primitive.ObjectID
	Role   models.UserType
}

type RatingService interface {
	// Rating CRUD
	CreateRating(ctx context.Context, author Author, req *validators.RatingCreateRequest) (*models.Rating, error)
	GetRating(ctx context.Context, ratingID primitive.ObjectID) (*models.Rating, error)
	UpdateRating(ctx context.Context, author Author, ratingID primitive.ObjectID, req *validators.RatingUpdateRequest) (*models.Rating, error)
	DeleteRating(ctx context.Context, author Author, ratingID primitive.ObjectID) error

	// Reads
	GetMatchRatings(ctx context.Context, matchID primitive.ObjectID) ([]*models.Rating, error)
	GetUserRatings(ctx context.Context, userID primitive.ObjectID, userType string, params *utils.PaginationParams) ([]*models.Rating, *utils.PaginationMeta, error)
	GetUserRatingStats(ctx context.Context, userID primitive.ObjectID, userType string) (*models.RatingStats, error)
}

type ratingService struct {
	ratingRepo  interfaces.RatingRepository
	cache       interfaces.CacheService
	coordinator *ratingCoordinator
	statsTTL    time.Duration
	logger      *logger.Logger
}

// NewRatingService wires the rating facade. cache and publisher may be nil.
func NewRatingService(
	cfg *config.RatingConfig,
	ratingRepo interfaces.RatingRepository,
	matchRepo interfaces.MatchRepository,
	tutorProfileRepo interfaces.TutorProfileRepository,
	cacheService interfaces.CacheService,
	publisher RatingEventPublisher,
	log *logger.Logger,
) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		cache:      cacheService,
		statsTTL:   cfg.StatsCacheDuration,
		logger:     log,
		coordinator: &ratingCoordinator{
			ratingRepo:          ratingRepo,
			matchRepo:           matchRepo,
			tutorProfileRepo:    tutorProfileRepo,
			cache:               cacheService,
			publisher:           publisher,
			resetEmptyAggregate: cfg.ResetEmptyAggregate,
			logger:              log,
			now:                 func() time.Time { return time.Now().UTC() },
		},
	}
}

func (s *ratingService) CreateRating(ctx context.Context, author Author, req *validators.RatingCreateRequest) (*models.Rating, error) {
	raterType, ok := models.ParseRaterType(string(author.Role))
	if !ok {
		return nil, fmt.Errorf("%w: only parents and tutors can rate", ErrForbidden)
	}

	if errs := validators.ValidateRatingCreate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, errs)
	}

	rating, err := req.ToRating(author.UserID, raterType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if rating.RatedUser == rating.RatedBy {
		return nil, fmt.Errorf("%w: users cannot rate themselves", ErrInvalidInput)
	}

	return s.coordinator.create(ctx, rating)
}

func (s *ratingService) GetRating(ctx context.Context, ratingID primitive.ObjectID) (*models.Rating, error) {
	rating, err := s.ratingRepo.GetByID(ctx, ratingID)
	if err != nil {
		return nil, notFoundOr(err, "rating", ratingID, "failed to get rating")
	}
	return rating, nil
}

func (s *ratingService) UpdateRating(ctx context.Context, author Author, ratingID primitive.ObjectID, req *validators.RatingUpdateRequest) (*models.Rating, error) {
	if errs := validators.ValidateRatingUpdate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, errs)
	}

	existing, err := s.GetRating(ctx, ratingID)
	if err != nil {
		return nil, err
	}
	if existing.RatedBy != author.UserID {
		return nil, fmt.Errorf("%w: only the author can update a rating", ErrForbidden)
	}

	return s.coordinator.update(ctx, ratingID, req.ToUpdates())
}

func (s *ratingService) DeleteRating(ctx context.Context, author Author, ratingID primitive.ObjectID) error {
	existing, err := s.GetRating(ctx, ratingID)
	if err != nil {
		return err
	}
	if existing.RatedBy != author.UserID && author.Role != models.UserTypeAdmin {
		return fmt.Errorf("%w: only the author can delete a rating", ErrForbidden)
	}

	return s.coordinator.delete(ctx, ratingID)
}

func (s *ratingService) GetMatchRatings(ctx context.Context, matchID primitive.ObjectID) ([]*models.Rating, error) {
	ratings, err := s.ratingRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match ratings: %w", err)
	}
	return ratings, nil
}

// GetUserRatings pages through the ratings written about userID by the
// opposite role, newest first.
func (s *ratingService) GetUserRatings(ctx context.Context, userID primitive.ObjectID, userType string, params *utils.PaginationParams) ([]*models.Rating, *utils.PaginationMeta, error) {
	ratedAs, err := parseUserType(userType)
	if err != nil {
		return nil, nil, err
	}

	ratings, total, err := s.ratingRepo.GetByRatedUser(ctx, userID, ratedAs.Opposite(), params)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user ratings: %w", err)
	}

	return ratings, utils.CreatePaginationMeta(params, total), nil
}

func (s *ratingService) GetUserRatingStats(ctx context.Context, userID primitive.ObjectID, userType string) (*models.RatingStats, error) {
	ratedAs, err := parseUserType(userType)
	if err != nil {
		return nil, err
	}

	key := utils.RatingStatsCacheKey(userID.Hex(), string(ratedAs))
	if s.cache != nil {
		var cached models.RatingStats
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WithContext(ctx).WithField("cache_key", key).WithError(err).Warn("Failed to read rating stats cache")
		}
	}

	ratings, err := s.ratingRepo.GetAllByRatedUser(ctx, userID, ratedAs.Opposite())
	if err != nil {
		return nil, fmt.Errorf("failed to get user ratings: %w", err)
	}

	stats := roundStats(AggregateRatings(ratings), 2)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, s.statsTTL); err != nil {
			s.logger.WithContext(ctx).WithField("cache_key", key).WithError(err).Warn("Failed to cache rating stats")
		}
	}

	return stats, nil
}

func parseUserType(userType string) (models.RaterType, error) {
	t, errs := validators.ValidateUserType(userType)
	if len(errs) > 0 {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, errs)
	}
	return t, nil
}
