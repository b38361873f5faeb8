package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"tutorhub/internal/models"
	"tutorhub/internal/repositories/interfaces"
	"tutorhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ratingRepository struct {
	store *Store
	now   func() time.Time
}

func NewRatingRepository(store *Store) interfaces.RatingRepository {
	return &ratingRepository{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.ratings {
		if existing.MatchID == rating.MatchID && existing.RatedBy == rating.RatedBy && existing.RaterType == rating.RaterType {
			return fmt.Errorf("rating already exists for match %s: %w", rating.MatchID.Hex(), interfaces.ErrDuplicate)
		}
	}

	now := r.now()
	rating.ID = primitive.NewObjectID()
	rating.CreatedAt = now
	rating.UpdatedAt = now
	if rating.Tags == nil {
		rating.Tags = []string{}
	}

	r.store.ratings[rating.ID] = cloneRating(rating)
	return nil
}

func (r *ratingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rating, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rating, ok := r.store.ratings[id]
	if !ok {
		return nil, fmt.Errorf("rating %s: %w", id.Hex(), interfaces.ErrNotFound)
	}
	return cloneRating(rating), nil
}

func (r *ratingRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.Rating, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.ratings[id]
	if !ok {
		return nil, fmt.Errorf("rating %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	updated := cloneRating(stored)
	for key, value := range updates {
		if err := applyRatingField(updated, key, value); err != nil {
			return nil, err
		}
	}
	updated.UpdatedAt = r.now()

	r.store.ratings[id] = updated
	return cloneRating(updated), nil
}

func (r *ratingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.ratings[id]; !ok {
		return fmt.Errorf("rating %s: %w", id.Hex(), interfaces.ErrNotFound)
	}
	delete(r.store.ratings, id)
	return nil
}

func (r *ratingRepository) GetByMatchID(ctx context.Context, matchID primitive.ObjectID) ([]*models.Rating, error) {
	return r.filter(func(rating *models.Rating) bool {
		return rating.MatchID == matchID
	}), nil
}

func (r *ratingRepository) ExistsForRater(ctx context.Context, matchID, ratedBy primitive.ObjectID, raterType models.RaterType) (bool, error) {
	matches := r.filter(func(rating *models.Rating) bool {
		return rating.MatchID == matchID && rating.RatedBy == ratedBy && rating.RaterType == raterType
	})
	return len(matches) > 0, nil
}

func (r *ratingRepository) GetByRatedUser(ctx context.Context, ratedUser primitive.ObjectID, raterType models.RaterType, params *utils.PaginationParams) ([]*models.Rating, int64, error) {
	all := r.byRatedUser(ratedUser, raterType)
	sort.SliceStable(all, func(i, j int) bool {
		return newerFirst(all[i], all[j])
	})

	total := int64(len(all))
	start := params.GetSkip()
	if start < 0 || start >= len(all) {
		return []*models.Rating{}, total, nil
	}
	end := start + params.GetLimit()
	if end > len(all) {
		end = len(all)
	}

	return all[start:end], total, nil
}

func (r *ratingRepository) GetAllByRatedUser(ctx context.Context, ratedUser primitive.ObjectID, raterType models.RaterType) ([]*models.Rating, error) {
	all := r.byRatedUser(ratedUser, raterType)
	sort.SliceStable(all, func(i, j int) bool {
		return newerFirst(all[j], all[i])
	})
	return all, nil
}

func (r *ratingRepository) byRatedUser(ratedUser primitive.ObjectID, raterType models.RaterType) []*models.Rating {
	return r.filter(func(rating *models.Rating) bool {
		return rating.RatedUser == ratedUser && rating.RaterType == raterType
	})
}

func (r *ratingRepository) filter(keep func(*models.Rating) bool) []*models.Rating {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*models.Rating, 0)
	for _, rating := range r.store.ratings {
		if keep(rating) {
			result = append(result, cloneRating(rating))
		}
	}
	return result
}

func newerFirst(a, b *models.Rating) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) > 0
}

func applyRatingField(rating *models.Rating, key string, value interface{}) error {
	switch key {
	case "_id", "match_id", "rated_by", "rater_type", "rated_user", "created_at", models.RatingFieldUpdatedAt:
		return nil
	case models.RatingFieldOverallRating:
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("overall_rating: unexpected type %T", value)
		}
		rating.OverallRating = v
	case models.RatingFieldReviewText:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("review_text: unexpected type %T", value)
		}
		rating.ReviewText = v
	case models.RatingFieldTags:
		v, ok := value.([]string)
		if !ok {
			return fmt.Errorf("tags: unexpected type %T", value)
		}
		rating.Tags = append([]string{}, v...)
	default:
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("%s: unexpected type %T", key, value)
		}
		switch models.RatingDimension(key) {
		case models.DimensionTeachingQuality:
			rating.TeachingQuality = &v
		case models.DimensionClassroomPerformance:
			rating.ClassroomPerformance = &v
		case models.DimensionStudentProgress:
			rating.StudentProgress = &v
		case models.DimensionCommunication:
			rating.Communication = &v
		case models.DimensionPunctuality:
			rating.Punctuality = &v
		default:
			return fmt.Errorf("unknown rating field %q", key)
		}
	}
	return nil
}
