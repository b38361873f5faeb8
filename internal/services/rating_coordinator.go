package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tutorhub/internal/models"
	"tutorhub/internal/repositories/interfaces"
	"tutorhub/internal/utils"
	"tutorhub/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingEventPublisher delivers rating events to the change feed.
type RatingEventPublisher interface {
	PublishRatingEvent(ctx context.Context, event *models.RatingEvent) error
}

// raterRole describes what a rating authored in one role writes besides the
// rating document itself.
type raterRole struct {
	ratingField string
	reviewField string
	// feedsAggregate marks ratings that make up the tutor's public average.
	feedsAggregate bool
	// participants returns the author and the rated party of a match.
	participants func(match *models.Match) (author, rated primitive.ObjectID)
}

var raterRoles = map[models.RaterType]raterRole{
	models.RaterTypeParent: {
		ratingField:    models.MatchFieldParentRating,
		reviewField:    models.MatchFieldParentReview,
		feedsAggregate: true,
		participants: func(m *models.Match) (primitive.ObjectID, primitive.ObjectID) {
			return m.ParentID, m.TutorID
		},
	},
	models.RaterTypeTutor: {
		ratingField:    models.MatchFieldTutorRating,
		reviewField:    models.MatchFieldTutorReview,
		feedsAggregate: false,
		participants: func(m *models.Match) (primitive.ObjectID, primitive.ObjectID) {
			return m.TutorID, m.ParentID
		},
	},
}

func roleOf(raterType models.RaterType) (raterRole, error) {
	role, ok := raterRoles[raterType]
	if !ok {
		return raterRole{}, fmt.Errorf("%w: unknown rater type %q", ErrInvalidInput, raterType)
	}
	return role, nil
}

// ratingCoordinator runs a rating write followed by the writes that depend
// on it: the match rating summary and, for parent ratings, the tutor's
// aggregate profile. The rating write is never rolled back when a dependent
// write fails.
type ratingCoordinator struct {
	ratingRepo          interfaces.RatingRepository
	matchRepo           interfaces.MatchRepository
	tutorProfileRepo    interfaces.TutorProfileRepository
	cache               interfaces.CacheService
	publisher           RatingEventPublisher
	resetEmptyAggregate bool
	logger              *logger.Logger
	now                 func() time.Time
}

func (c *ratingCoordinator) create(ctx context.Context, rating *models.Rating) (*models.Rating, error) {
	role, err := roleOf(rating.RaterType)
	if err != nil {
		return nil, err
	}

	match, err := c.matchRepo.GetByID(ctx, rating.MatchID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, fmt.Errorf("%w: match %s", ErrNotFound, rating.MatchID.Hex())
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	if err := checkParticipants(role, match, rating); err != nil {
		return nil, err
	}

	exists, err := c.ratingRepo.ExistsForRater(ctx, rating.MatchID, rating.RatedBy, rating.RaterType)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing rating: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s already rated match %s", ErrConflict, rating.RaterType, rating.MatchID.Hex())
	}

	// The unique index decides races the existence check cannot see.
	if err := c.ratingRepo.Create(ctx, rating); err != nil {
		if errors.Is(err, interfaces.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s already rated match %s", ErrConflict, rating.RaterType, rating.MatchID.Hex())
		}
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}

	c.invalidateStats(ctx, rating)
	defer c.invalidateStats(ctx, rating)

	if err := c.propagate(ctx, role, rating); err != nil {
		return nil, err
	}

	c.publish(ctx, utils.EventRatingCreated, rating)
	return rating, nil
}

func (c *ratingCoordinator) update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.Rating, error) {
	existing, err := c.ratingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "rating", id, "failed to get rating")
	}

	changes := make(map[string]interface{}, len(updates))
	for k, v := range updates {
		changes[k] = v
	}
	for _, field := range models.ImmutableRatingFields {
		delete(changes, field)
	}
	delete(changes, models.RatingFieldUpdatedAt)

	updated, err := c.ratingRepo.Update(ctx, id, changes)
	if err != nil {
		return nil, notFoundOr(err, "rating", id, "failed to update rating")
	}

	c.invalidateStats(ctx, updated)
	defer c.invalidateStats(ctx, updated)

	// Only a new overall score reaches the match summary and the aggregate.
	if _, ok := changes[models.RatingFieldOverallRating]; ok {
		role, err := roleOf(existing.RaterType)
		if err != nil {
			return nil, err
		}
		if err := c.propagate(ctx, role, updated); err != nil {
			return nil, err
		}
	}

	c.publish(ctx, utils.EventRatingUpdated, updated)
	return updated, nil
}

func (c *ratingCoordinator) delete(ctx context.Context, id primitive.ObjectID) error {
	existing, err := c.ratingRepo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "rating", id, "failed to get rating")
	}

	role, err := roleOf(existing.RaterType)
	if err != nil {
		return err
	}

	if err := c.ratingRepo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "rating", id, "failed to delete rating")
	}

	c.invalidateStats(ctx, existing)
	defer c.invalidateStats(ctx, existing)

	cleared := map[string]interface{}{
		role.ratingField: nil,
		role.reviewField: nil,
	}
	if err := c.matchRepo.Update(ctx, existing.MatchID, cleared); err != nil {
		return c.dependencyFailure(ctx, existing, "failed to clear match rating summary", err)
	}

	if role.feedsAggregate {
		if err := c.recomputeTutorAggregate(ctx, existing.RatedUser); err != nil {
			return c.dependencyFailure(ctx, existing, "failed to recompute tutor rating", err)
		}
	}

	c.publish(ctx, utils.EventRatingDeleted, existing)
	return nil
}

// propagate writes the rating's score and review onto the match and, when
// the role feeds it, refreshes the rated tutor's aggregate.
func (c *ratingCoordinator) propagate(ctx context.Context, role raterRole, rating *models.Rating) error {
	summary := map[string]interface{}{
		role.ratingField: rating.OverallRating,
		role.reviewField: reviewValue(rating.ReviewText),
	}
	if err := c.matchRepo.Update(ctx, rating.MatchID, summary); err != nil {
		return c.dependencyFailure(ctx, rating, "failed to update match rating summary", err)
	}

	if role.feedsAggregate {
		if err := c.recomputeTutorAggregate(ctx, rating.RatedUser); err != nil {
			return c.dependencyFailure(ctx, rating, "failed to recompute tutor rating", err)
		}
	}

	return nil
}

// recomputeTutorAggregate rebuilds the tutor's average and count from every
// parent rating addressed to them.
func (c *ratingCoordinator) recomputeTutorAggregate(ctx context.Context, tutorID primitive.ObjectID) error {
	ratings, err := c.ratingRepo.GetAllByRatedUser(ctx, tutorID, models.RaterTypeParent)
	if err != nil {
		return fmt.Errorf("failed to load tutor ratings: %w", err)
	}

	if len(ratings) == 0 && !c.resetEmptyAggregate {
		return nil
	}

	stats := AggregateRatings(ratings)
	average := utils.RoundFloat(stats.AverageRating, 1)

	err = c.tutorProfileRepo.UpdateRatingSummary(ctx, tutorID, average, int64(stats.TotalRatings))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			c.logger.WithContext(ctx).
				WithField("tutor_id", tutorID.Hex()).
				Warn("Tutor profile missing, rating summary not stored")
			return nil
		}
		return fmt.Errorf("failed to store tutor rating summary: %w", err)
	}

	return nil
}

func (c *ratingCoordinator) dependencyFailure(ctx context.Context, rating *models.Rating, msg string, err error) error {
	c.logger.WithContext(ctx).
		WithRatingID(rating.ID).
		WithMatchID(rating.MatchID).
		WithField("rated_user", rating.RatedUser.Hex()).
		WithError(err).
		Error(msg)
	return fmt.Errorf("%w: %s: %w", ErrDependencyWrite, msg, err)
}

// invalidateStats drops the cached stats of the rated user. Failures are
// logged and never fail the operation. Writers call it right after the rating
// write and again once the dependent writes are done, so a stats read that
// loaded the old rating set and cached it in between is dropped too.
func (c *ratingCoordinator) invalidateStats(ctx context.Context, rating *models.Rating) {
	if c.cache == nil {
		return
	}
	key := utils.RatingStatsCacheKey(rating.RatedUser.Hex(), string(rating.RaterType.Opposite()))
	if err := c.cache.Delete(ctx, key); err != nil {
		c.logger.WithContext(ctx).WithField("cache_key", key).WithError(err).Warn("Failed to invalidate rating stats cache")
	}
}

func (c *ratingCoordinator) publish(ctx context.Context, eventType string, rating *models.Rating) {
	c.logger.WithContext(ctx).LogRatingEvent(rating.ID, eventType, map[string]interface{}{
		"match_id":   rating.MatchID.Hex(),
		"rater_type": string(rating.RaterType),
	})

	if c.publisher == nil {
		return
	}
	event := models.NewRatingEvent(eventType, rating, c.now())
	if err := c.publisher.PublishRatingEvent(ctx, event); err != nil {
		c.logger.WithContext(ctx).WithRatingID(rating.ID).WithError(err).Warn("Failed to publish rating event")
	}
}

func checkParticipants(role raterRole, match *models.Match, rating *models.Rating) error {
	author, rated := role.participants(match)
	if author != rating.RatedBy {
		return fmt.Errorf("%w: not the %s of match %s", ErrForbidden, rating.RaterType, match.ID.Hex())
	}
	if rated != rating.RatedUser {
		return fmt.Errorf("%w: rated_user is not the other party of match %s", ErrInvalidInput, match.ID.Hex())
	}
	return nil
}

// reviewValue stores an empty review as null on the match.
func reviewValue(review string) interface{} {
	if review == "" {
		return nil
	}
	return review
}

func notFoundOr(err error, entity string, id primitive.ObjectID, msg string) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id.Hex())
	}
	return fmt.Errorf("%s: %w", msg, err)
}
