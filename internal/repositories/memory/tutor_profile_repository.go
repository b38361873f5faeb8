package memory

import (
	"context"
	"fmt"
	"time"

	"tutorhub/internal/models"
	"tutorhub/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type tutorProfileRepository struct {
	store *Store
}

func NewTutorProfileRepository(store *Store) interfaces.TutorProfileRepository {
	return &tutorProfileRepository{store: store}
}

func (r *tutorProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.TutorProfile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	profile, ok := r.store.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("tutor profile %s: %w", userID.Hex(), interfaces.ErrNotFound)
	}
	p := *profile
	return &p, nil
}

func (r *tutorProfileRepository) UpdateRatingSummary(ctx context.Context, userID primitive.ObjectID, averageRating float64, ratingCount int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	profile, ok := r.store.profiles[userID]
	if !ok {
		return fmt.Errorf("tutor profile %s: %w", userID.Hex(), interfaces.ErrNotFound)
	}

	p := *profile
	p.AverageRating = averageRating
	p.RatingCount = ratingCount
	p.UpdatedAt = time.Now().UTC()
	r.store.profiles[userID] = &p
	return nil
}
