package memory

import (
	"context"
	"fmt"
	"time"

	"tutorhub/internal/models"
	"tutorhub/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type matchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) interfaces.MatchRepository {
	return &matchRepository{store: store}
}

func (r *matchRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Match, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	match, ok := r.store.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id.Hex(), interfaces.ErrNotFound)
	}
	return cloneMatch(match), nil
}

func (r *matchRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.matches[id]
	if !ok {
		return fmt.Errorf("match %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	match := cloneMatch(stored)
	for key, value := range updates {
		switch key {
		case models.MatchFieldParentRating:
			match.ParentRating = toIntPtr(value)
		case models.MatchFieldParentReview:
			match.ParentReview = toStringPtr(value)
		case models.MatchFieldTutorRating:
			match.TutorRating = toIntPtr(value)
		case models.MatchFieldTutorReview:
			match.TutorReview = toStringPtr(value)
		default:
			return fmt.Errorf("unsupported match field %q", key)
		}
	}
	match.UpdatedAt = time.Now().UTC()

	r.store.matches[id] = match
	return nil
}

func toIntPtr(value interface{}) *int {
	switch v := value.(type) {
	case int:
		return &v
	case *int:
		return cloneInt(v)
	}
	return nil
}

func toStringPtr(value interface{}) *string {
	switch v := value.(type) {
	case string:
		return &v
	case *string:
		return cloneString(v)
	}
	return nil
}
