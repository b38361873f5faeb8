// Package memory provides in-process implementations of the repository
// interfaces. They keep the same contracts as the MongoDB repositories,
// including the unique (match, rater, rater type) constraint on ratings, and
// back local development runs and tests.
package memory

import (
	"sync"

	"tutorhub/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu       sync.RWMutex
	ratings  map[primitive.ObjectID]*models.Rating
	matches  map[primitive.ObjectID]*models.Match
	profiles map[primitive.ObjectID]*models.TutorProfile
}

func NewStore() *Store {
	return &Store{
		ratings:  make(map[primitive.ObjectID]*models.Rating),
		matches:  make(map[primitive.ObjectID]*models.Match),
		profiles: make(map[primitive.ObjectID]*models.TutorProfile),
	}
}

// PutMatch seeds a match the way the matching workflow would create it.
func (s *Store) PutMatch(match *models.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if match.ID.IsZero() {
		match.ID = primitive.NewObjectID()
	}
	s.matches[match.ID] = cloneMatch(match)
}

// PutTutorProfile seeds a tutor profile keyed by its user id.
func (s *Store) PutTutorProfile(profile *models.TutorProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	p := *profile
	s.profiles[profile.UserID] = &p
}

func cloneRating(r *models.Rating) *models.Rating {
	c := *r
	c.TeachingQuality = cloneInt(r.TeachingQuality)
	c.ClassroomPerformance = cloneInt(r.ClassroomPerformance)
	c.StudentProgress = cloneInt(r.StudentProgress)
	c.Communication = cloneInt(r.Communication)
	c.Punctuality = cloneInt(r.Punctuality)
	if r.Tags != nil {
		c.Tags = append([]string{}, r.Tags...)
	}
	return &c
}

func cloneMatch(m *models.Match) *models.Match {
	c := *m
	c.ParentRating = cloneInt(m.ParentRating)
	c.TutorRating = cloneInt(m.TutorRating)
	c.ParentReview = cloneString(m.ParentReview)
	c.TutorReview = cloneString(m.TutorReview)
	return &c
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
