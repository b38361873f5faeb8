package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tutorhub/internal/config"
	"tutorhub/internal/models"
	"tutorhub/internal/repositories/interfaces"
	"tutorhub/internal/repositories/memory"
	"tutorhub/internal/utils"
	"tutorhub/internal/validators"
	"tutorhub/pkg/cache"
	"tutorhub/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	store    *memory.Store
	service  *ratingService
	profiles interfaces.TutorProfileRepository
	matches  interfaces.MatchRepository
	ratings  interfaces.RatingRepository
}

func newFixture(t *testing.T, cfg *config.RatingConfig) *fixture {
	t.Helper()
	if cfg == nil {
		cfg = &config.RatingConfig{StatsCacheDuration: time.Minute, ResetEmptyAggregate: true}
	}

	store := memory.NewStore()
	f := &fixture{
		store:    store,
		ratings:  memory.NewRatingRepository(store),
		matches:  memory.NewMatchRepository(store),
		profiles: memory.NewTutorProfileRepository(store),
	}
	f.service = NewRatingService(cfg, f.ratings, f.matches, f.profiles, nil, nil, logger.Discard()).(*ratingService)
	return f
}

// seedMatch stores a match between parent and tutor and makes sure the tutor
// has a profile.
func (f *fixture) seedMatch(parent, tutor primitive.ObjectID) primitive.ObjectID {
	match := &models.Match{ParentID: parent, TutorID: tutor, Status: models.MatchStatusCompleted}
	f.store.PutMatch(match)
	if _, err := f.profiles.GetByUserID(context.Background(), tutor); err != nil {
		f.store.PutTutorProfile(&models.TutorProfile{UserID: tutor})
	}
	return match.ID
}

func (f *fixture) profile(t *testing.T, tutor primitive.ObjectID) *models.TutorProfile {
	t.Helper()
	p, err := f.profiles.GetByUserID(context.Background(), tutor)
	require.NoError(t, err)
	return p
}

func (f *fixture) match(t *testing.T, id primitive.ObjectID) *models.Match {
	t.Helper()
	m, err := f.matches.GetByID(context.Background(), id)
	require.NoError(t, err)
	return m
}

func parent(id primitive.ObjectID) Author { return Author{UserID: id, Role: models.UserTypeParent} }
func tutor(id primitive.ObjectID) Author  { return Author{UserID: id, Role: models.UserTypeTutor} }

func createReq(matchID, ratedUser primitive.ObjectID, overall int) *validators.RatingCreateRequest {
	return &validators.RatingCreateRequest{
		MatchID:       matchID.Hex(),
		RatedUser:     ratedUser.Hex(),
		OverallRating: overall,
	}
}

func TestRatingService_TutorAggregateScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p1, p2, t1 := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	m1 := f.seedMatch(p1, t1)
	m2 := f.seedMatch(p2, t1)

	first, err := f.service.CreateRating(ctx, parent(p1), createReq(m1, t1, 4))
	require.NoError(t, err)
	assert.Equal(t, 4.0, f.profile(t, t1).AverageRating)
	assert.Equal(t, int64(1), f.profile(t, t1).RatingCount)

	_, err = f.service.CreateRating(ctx, parent(p2), createReq(m2, t1, 2))
	require.NoError(t, err)
	assert.Equal(t, 3.0, f.profile(t, t1).AverageRating)
	assert.Equal(t, int64(2), f.profile(t, t1).RatingCount)

	require.NoError(t, f.service.DeleteRating(ctx, parent(p1), first.ID))
	assert.Equal(t, 2.0, f.profile(t, t1).AverageRating)
	assert.Equal(t, int64(1), f.profile(t, t1).RatingCount)
}

func TestRatingService_CreatePropagatesToMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p1, t1 := primitive.NewObjectID(), primitive.NewObjectID()
	m1 := f.seedMatch(p1, t1)

	req := createReq(m1, t1, 5)
	req.ReviewText = "Very patient"
	rating, err := f.service.CreateRating(ctx, parent(p1), req)
	require.NoError(t, err)
	assert.Equal(t, p1, rating.RatedBy)
	assert.Equal(t, models.RaterTypeParent, rating.RaterType)
	assert.False(t, rating.CreatedAt.IsZero())
	assert.Equal(t, rating.CreatedAt, rating.UpdatedAt)

	match := f.match(t, m1)
	require.NotNil(t, match.ParentRating)
	assert.Equal(t, 5, *match.ParentRating)
	require.NotNil(t, match.ParentReview)
	assert.Equal(t, "Very patient", *match.ParentReview)
	assert.Nil(t, match.TutorRating)

	// A tutor rating writes the tutor pair and leaves the tutor aggregate alone.
	_, err = f.service.CreateRating(ctx, tutor(t1), createReq(m1, p1, 3))
	require.NoError(t, err)

	match = f.match(t, m1)
	require.NotNil(t, match.TutorRating)
	assert.Equal(t, 3, *match.TutorRating)
	assert.Nil(t, match.TutorReview)
	assert.Equal(t, 5.0, f.profile(t, t1).AverageRating)
	assert.Equal(t, int64(1), f.profile(t, t1).RatingCount)
}

func TestRatingService_CreateErrors(t *testing.T) {
	ctx := context.Background()
	p1, t1 := primitive.NewObjectID(), primitive.NewObjectID()

	tests := []struct {
		name    string
		author  func(f *fixture) Author
		request func(f *fixture, matchID primitive.ObjectID) *validators.RatingCreateRequest
		wantErr error
	}{
		{
			name:    "match does not exist",
			author:  func(*fixture) Author { return parent(p1) },
			request: func(_ *fixture, _ primitive.ObjectID) *validators.RatingCreateRequest { return createReq(primitive.NewObjectID(), t1, 4) },
			wantErr: ErrNotFound,
		},
		{
			name:    "score out of range",
			author:  func(*fixture) Author { return parent(p1) },
			request: func(_ *fixture, m primitive.ObjectID) *validators.RatingCreateRequest { return createReq(m, t1, 6) },
			wantErr: ErrInvalidInput,
		},
		{
			name:   "review too long",
			author: func(*fixture) Author { return parent(p1) },
			request: func(_ *fixture, m primitive.ObjectID) *validators.RatingCreateRequest {
				req := createReq(m, t1, 4)
				req.ReviewText = string(make([]byte, 1001))
				return req
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "self rating",
			author:  func(*fixture) Author { return parent(p1) },
			request: func(_ *fixture, m primitive.ObjectID) *validators.RatingCreateRequest { return createReq(m, p1, 4) },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "rated user outside the match",
			author:  func(*fixture) Author { return parent(p1) },
			request: func(_ *fixture, m primitive.ObjectID) *validators.RatingCreateRequest { return createReq(m, primitive.NewObjectID(), 4) },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "author not a party of the match",
			author:  func(*fixture) Author { return parent(primitive.NewObjectID()) },
			request: func(_ *fixture, m primitive.ObjectID) *validators.RatingCreateRequest { return createReq(m, t1, 4) },
			wantErr: ErrForbidden,
		},
		{
			name:    "admin cannot rate",
			author:  func(*fixture) Author { return Author{UserID: p1, Role: models.UserTypeAdmin} },
			request: func(_ *fixture, m primitive.ObjectID) *validators.RatingCreateRequest { return createReq(m, t1, 4) },
			wantErr: ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			matchID := f.seedMatch(p1, t1)

			rating, err := f.service.CreateRating(ctx, tt.author(f), tt.request(f, matchID))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, rating)

			stored, err := f.ratings.GetAllByRatedUser(ctx, t1, models.RaterTypeParent)
			require.NoError(t, err)
			assert.Empty(t, stored)
		})
	}
}

func TestRatingService_DuplicateCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p1, t1 := primitive.NewObjectID(), primitive.NewObjectID()
	m1 := f.seedMatch(p1, t1)

	_, err := f.service.CreateRating(ctx, parent(p1), createReq(m1, t1, 4))
	require.NoError(t, err)

	_, err = f.service.CreateRating(ctx, parent(p1), createReq(m1, t1, 1))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 4.0, f.profile(t, t1).AverageRating)
}

func TestRatingService_ConcurrentDuplicateCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p1, t1 := primitive.NewObjectID(), primitive.NewObjectID()
	m1 := f.seedMatch(p1, t1)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.CreateRating(ctx, parent(p1), createReq(m1, t1, 4))
		}(i)
	}
	wg.Wait()

	var succeeded, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, conflicts)

	ratings, err := f.service.GetMatchRatings(ctx, m1)
	require.NoError(t, err)
	assert.Len(t, ratings, 1)
}

func TestRatingService_UpdateRecomputesAggregate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p1, p2, t1 := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	m1 := f.seedMatch(p1, t1)
	m2 := f.seedMatch(p2, t1)

	req := createReq(m1, t1, 5)
	req.ReviewText = "Great start"
	first, err := f.service.CreateRating(ctx, parent(p1), req)
	require.NoError(t, err)
	_, err = f.service.CreateRating(ctx, parent(p2), createReq(m2, t1, 4))
	require.NoError(t, err)
	assert.Equal(t, 4.5, f.profile(t, t1).AverageRating)

	updated, err := f.service.UpdateRating(ctx, parent(p1), first.ID, &validators.RatingUpdateRequest{
		OverallRating: utils.IntPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.OverallRating)
	assert.False(t, updated.UpdatedAt.Before(first.UpdatedAt))

	assert.Equal(t, 3.0, f.profile(t, t1).AverageRating)
	assert.Equal(t, int64(2), f.profile(t, t1).RatingCount)

	match := f.match(t, m1)
	assert.Equal(t, 2, *match.ParentRating)
	// the prior review is carried over when the update does not supply one
	assert.Equal(t, "Great start", *match.ParentReview)
}

func TestRatingService_UpdateWithoutOverallSkipsPropagation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p1, t1 := primitive.NewObjectID(), primitive.NewObjectID()
	m1 := f.seedMatch(p1, t1)

	req := createReq(m1, t1, 4)
	req.ReviewText = "Good"
	rating, err := f.service.CreateRating(ctx, parent(p1), req)
	require.NoError(t, err)

	updated, err := f.service.UpdateRating(ctx, parent(p1), rating.ID, &validators.RatingUpdateRequest{
		ReviewText: utils.StringPtr("Changed my mind"),
		Tags:       []string{"kind"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Changed my mind", updated.ReviewText)
	assert.Equal(t, []string{"kind"}, updated.Tags)

	assert.Equal(t, "Good", *f.match(t, m1).ParentReview)
}

func TestRatingCoordinator_UpdateDropsImmutableFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p1, t1 := primitive.NewObjectID(), primitive.NewObjectID()
	m1 := f.seedMatch(p1, t1)

	rating, err := f.service.CreateRating(ctx, parent(p1), createReq(m1, t1, 4))
	require.NoError(t, err)

	updated, err := f.service.coordinator.update(ctx, rating.ID, map[string]interface{}{
		"match_id":                      primitive.NewObjectID(),
		"rated_by":                      primitive.NewObjectID(),
		"rater_type":                    models.RaterTypeTutor,
		"rated_user":                    primitive.NewObjectID(),
		"created_at":                    time.Unix(0, 0),
		models.RatingFieldOverallRating: 3,
		models.RatingFieldReviewText:    "edited",
	})
	require.NoError(t, err)

	assert.Equal(t, rating.MatchID, updated.MatchID)
	assert.Equal(t, rating.RatedBy, updated.RatedBy)
	assert.Equal(t, rating.RaterType, updated.RaterType)
	assert.Equal(t, rating.RatedUser, updated.RatedUser)
	assert.Equal(t, rating.CreatedAt, updated.CreatedAt)
	assert.Equal(t, 3, updated.OverallRating)
	assert.Equal(t, "edited", updated.ReviewText)
	assert.Equal(t, 3.0, f.profile(t, t1).AverageRating)
}

func TestRatingService_UpdateAndDeleteAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p1, t1 := primitive.NewObjectID(), primitive.NewObjectID()
	m1 := f.seedMatch(p1, t1)

	rating, err := f.service.CreateRating(ctx, parent(p1), createReq(m1, t1, 4))
	require.NoError(t, err)

	_, err = f.service.UpdateRating(ctx, tutor(t1), rating.ID, &validators.RatingUpdateRequest{OverallRating: utils.IntPtr(1)})
	assert.ErrorIs(t, err, ErrForbidden)

	err = f.service.DeleteRating(ctx, tutor(t1), rating.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	admin := Author{UserID: primitive.NewObjectID(), Role: models.UserTypeAdmin}
	require.NoError(t, f.service.DeleteRating(ctx, admin, rating.ID))

	_, err = f.service.GetRating(ctx, rating.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.service.DeleteRating(ctx, admin, rating.ID), ErrNotFound)
}

func TestRatingService_DeleteClearsMatchPair(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p1, t1 := primitive.NewObjectID(), primitive.NewObjectID()
	m1 := f.seedMatch(p1, t1)

	req := createReq(m1, p1, 2)
	req.ReviewText = "Often late to pay"
	rating, err := f.service.CreateRating(ctx, tutor(t1), req)
	require.NoError(t, err)
	require.NotNil(t, f.match(t, m1).TutorReview)

	require.NoError(t, f.service.DeleteRating(ctx, tutor(t1), rating.ID))

	match := f.match(t, m1)
	assert.Nil(t, match.TutorRating)
	assert.Nil(t, match.TutorReview)
}

func TestRatingService_EmptyAggregate(t *testing.T) {
	tests := []struct {
		name        string
		reset       bool
		wantAverage float64
		wantCount   int64
	}{
		{name: "reset to zero", reset: true, wantAverage: 0, wantCount: 0},
		{name: "left at last value", reset: false, wantAverage: 3, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, &config.RatingConfig{ResetEmptyAggregate: tt.reset})
			p1, t1 := primitive.NewObjectID(), primitive.NewObjectID()
			m1 := f.seedMatch(p1, t1)

			rating, err := f.service.CreateRating(ctx, parent(p1), createReq(m1, t1, 3))
			require.NoError(t, err)
			require.NoError(t, f.service.DeleteRating(ctx, parent(p1), rating.ID))

			assert.Equal(t, tt.wantAverage, f.profile(t, t1).AverageRating)
			assert.Equal(t, tt.wantCount, f.profile(t, t1).RatingCount)
		})
	}
}

func TestRatingService_MissingTutorProfileIsNotAFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p1, t1 := primitive.NewObjectID(), primitive.NewObjectID()
	match := &models.Match{ParentID: p1, TutorID: t1}
	f.store.PutMatch(match)

	_, err := f.service.CreateRating(ctx, parent(p1), createReq(match.ID, t1, 4))
	assert.NoError(t, err)
}

func TestRatingService_GetUserRatings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	t1 := primitive.NewObjectID()

	var lastParent primitive.ObjectID
	for i := 0; i < 3; i++ {
		lastParent = primitive.NewObjectID()
		m := f.seedMatch(lastParent, t1)
		_, err := f.service.CreateRating(ctx, parent(lastParent), createReq(m, t1, 5))
		require.NoError(t, err)
	}

	ratings, meta, err := f.service.GetUserRatings(ctx, t1, "tutor", utils.NewPaginationParams("1", "2"))
	require.NoError(t, err)
	require.Len(t, ratings, 2)
	assert.Equal(t, lastParent, ratings[0].RatedBy)
	assert.Equal(t, int64(3), meta.Total)
	assert.Equal(t, 2, meta.Pages)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, 2, meta.Limit)

	// Nobody has rated t1 in the parent role.
	ratings, meta, err = f.service.GetUserRatings(ctx, t1, "parent", utils.NewPaginationParams("", ""))
	require.NoError(t, err)
	assert.Empty(t, ratings)
	assert.Equal(t, int64(0), meta.Total)

	// A page far past the end is empty rather than an error.
	ratings, meta, err = f.service.GetUserRatings(ctx, t1, "tutor", utils.NewPaginationParams("9223372036854775807", "10"))
	require.NoError(t, err)
	assert.Empty(t, ratings)
	assert.Equal(t, int64(3), meta.Total)
	assert.False(t, meta.HasNext)

	_, _, err = f.service.GetUserRatings(ctx, t1, "admin", utils.NewPaginationParams("", ""))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRatingService_GetUserRatingStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p1, p2, t1 := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	stats, err := f.service.GetUserRatingStats(ctx, t1, "tutor")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalRatings)
	assert.Equal(t, 0.0, stats.AverageRating)
	assert.Equal(t, []models.TagCount{}, stats.CommonTags)

	first := createReq(f.seedMatch(p1, t1), t1, 5)
	first.TeachingQuality = utils.IntPtr(4)
	first.Tags = []string{"patient", "fun"}
	_, err = f.service.CreateRating(ctx, parent(p1), first)
	require.NoError(t, err)

	second := createReq(f.seedMatch(p2, t1), t1, 4)
	second.Tags = []string{"fun"}
	_, err = f.service.CreateRating(ctx, parent(p2), second)
	require.NoError(t, err)

	stats, err = f.service.GetUserRatingStats(ctx, t1, "tutor")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalRatings)
	assert.Equal(t, 4.5, stats.AverageRating)
	assert.Equal(t, 4.0, stats.DimensionStats.TeachingQuality)
	assert.Equal(t, []models.TagCount{{Tag: "fun", Count: 2}, {Tag: "patient", Count: 1}}, stats.CommonTags)

	_, err = f.service.GetUserRatingStats(ctx, t1, "student")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func TestRatingService_StatsCache(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ratings := memory.NewRatingRepository(store)
	profiles := memory.NewTutorProfileRepository(store)
	cacheMock := new(mockCache)
	cfg := &config.RatingConfig{StatsCacheDuration: 5 * time.Minute, ResetEmptyAggregate: true}
	svc := NewRatingService(cfg, ratings, memory.NewMatchRepository(store), profiles, cacheMock, nil, logger.Discard())

	p1, t1 := primitive.NewObjectID(), primitive.NewObjectID()
	key := utils.RatingStatsCacheKey(t1.Hex(), "tutor")

	cacheMock.On("Get", ctx, key, mock.Anything).Return(cache.ErrCacheMiss).Once()
	cacheMock.On("Set", ctx, key, mock.AnythingOfType("*models.RatingStats"), 5*time.Minute).Return(nil).Once()

	stats, err := svc.GetUserRatingStats(ctx, t1, "tutor")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalRatings)

	cacheMock.On("Get", ctx, key, mock.Anything).Run(func(args mock.Arguments) {
		*args.Get(2).(*models.RatingStats) = models.RatingStats{AverageRating: 4, TotalRatings: 1}
	}).Return(nil).Once()

	stats, err = svc.GetUserRatingStats(ctx, t1, "tutor")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRatings)

	// A new rating for t1 drops the cached stats.
	match := &models.Match{ParentID: p1, TutorID: t1}
	store.PutMatch(match)
	store.PutTutorProfile(&models.TutorProfile{UserID: t1})
	cacheMock.On("Delete", ctx, []string{key}).Return(errors.New("redis down")).Twice()

	_, err = svc.CreateRating(ctx, parent(p1), createReq(match.ID, t1, 5))
	require.NoError(t, err, "cache failures never fail the operation")

	cacheMock.AssertExpectations(t)
}

func TestRatingService_StatsCacheDroppedAfterDependentWrites(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ratings := memory.NewRatingRepository(store)
	profiles := memory.NewTutorProfileRepository(store)
	cacheMock := new(mockCache)
	cfg := &config.RatingConfig{StatsCacheDuration: time.Minute, ResetEmptyAggregate: true}
	svc := NewRatingService(cfg, ratings, memory.NewMatchRepository(store), profiles, cacheMock, nil, logger.Discard())

	p1, t1 := primitive.NewObjectID(), primitive.NewObjectID()
	key := utils.RatingStatsCacheKey(t1.Hex(), "tutor")
	match := &models.Match{ParentID: p1, TutorID: t1}
	store.PutMatch(match)
	store.PutTutorProfile(&models.TutorProfile{UserID: t1})

	// Record the tutor's stored count each time the stats entry is dropped.
	var countsAtDelete []int64
	cacheMock.On("Delete", ctx, []string{key}).Run(func(mock.Arguments) {
		p, err := profiles.GetByUserID(ctx, t1)
		require.NoError(t, err)
		countsAtDelete = append(countsAtDelete, p.RatingCount)
	}).Return(nil)

	_, err := svc.CreateRating(ctx, parent(p1), createReq(match.ID, t1, 4))
	require.NoError(t, err)

	// Once right after the rating write, once after the aggregate is stored.
	assert.Equal(t, []int64{0, 1}, countsAtDelete)
	cacheMock.AssertExpectations(t)
}

type mockMatchRepo struct {
	mock.Mock
}

func (m *mockMatchRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Match, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *mockMatchRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

type mockTutorProfileRepo struct {
	mock.Mock
}

func (m *mockTutorProfileRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.TutorProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TutorProfile), args.Error(1)
}

func (m *mockTutorProfileRepo) UpdateRatingSummary(ctx context.Context, userID primitive.ObjectID, averageRating float64, ratingCount int64) error {
	args := m.Called(ctx, userID, averageRating, ratingCount)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishRatingEvent(ctx context.Context, event *models.RatingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestRatingService_DependencyWriteFailures(t *testing.T) {
	ctx := context.Background()
	p1, t1 := primitive.NewObjectID(), primitive.NewObjectID()
	dbDown := errors.New("connection reset")

	tests := []struct {
		name         string
		prepareMocks func(matches *mockMatchRepo, profiles *mockTutorProfileRepo, match *models.Match)
	}{
		{
			name: "match summary write fails",
			prepareMocks: func(matches *mockMatchRepo, profiles *mockTutorProfileRepo, match *models.Match) {
				matches.On("GetByID", ctx, match.ID).Return(match, nil).Once()
				matches.On("Update", ctx, match.ID, mock.Anything).Return(dbDown).Once()
			},
		},
		{
			name: "tutor profile write fails",
			prepareMocks: func(matches *mockMatchRepo, profiles *mockTutorProfileRepo, match *models.Match) {
				matches.On("GetByID", ctx, match.ID).Return(match, nil).Once()
				matches.On("Update", ctx, match.ID, map[string]interface{}{
					models.MatchFieldParentRating: 4,
					models.MatchFieldParentReview: nil,
				}).Return(nil).Once()
				profiles.On("UpdateRatingSummary", ctx, t1, 4.0, int64(1)).Return(dbDown).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratings := memory.NewRatingRepository(memory.NewStore())
			matches := new(mockMatchRepo)
			profiles := new(mockTutorProfileRepo)
			publisher := new(mockPublisher)
			match := &models.Match{ID: primitive.NewObjectID(), ParentID: p1, TutorID: t1}
			tt.prepareMocks(matches, profiles, match)

			cfg := &config.RatingConfig{ResetEmptyAggregate: true}
			svc := NewRatingService(cfg, ratings, matches, profiles, nil, publisher, logger.Discard())

			rating, err := svc.CreateRating(ctx, parent(p1), createReq(match.ID, t1, 4))
			assert.ErrorIs(t, err, ErrDependencyWrite)
			assert.ErrorIs(t, err, dbDown)
			assert.Nil(t, rating, "no partial payload")

			// the rating itself stays persisted
			stored, err := ratings.GetByMatchID(ctx, match.ID)
			require.NoError(t, err)
			assert.Len(t, stored, 1)

			matches.AssertExpectations(t)
			profiles.AssertExpectations(t)
			publisher.AssertNotCalled(t, "PublishRatingEvent", mock.Anything, mock.Anything)
		})
	}
}

func TestRatingService_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	publisher := new(mockPublisher)
	cfg := &config.RatingConfig{ResetEmptyAggregate: true}
	svc := NewRatingService(cfg, memory.NewRatingRepository(store), memory.NewMatchRepository(store),
		memory.NewTutorProfileRepository(store), nil, publisher, logger.Discard())

	p1, t1 := primitive.NewObjectID(), primitive.NewObjectID()
	match := &models.Match{ParentID: p1, TutorID: t1}
	store.PutMatch(match)
	store.PutTutorProfile(&models.TutorProfile{UserID: t1})

	publisher.On("PublishRatingEvent", ctx, mock.MatchedBy(func(e *models.RatingEvent) bool {
		return e.Type == utils.EventRatingCreated && e.RatedUser == t1
	})).Return(errors.New("broker unavailable")).Once()
	publisher.On("PublishRatingEvent", ctx, mock.MatchedBy(func(e *models.RatingEvent) bool {
		return e.Type == utils.EventRatingDeleted
	})).Return(nil).Once()

	rating, err := svc.CreateRating(ctx, parent(p1), createReq(match.ID, t1, 4))
	require.NoError(t, err, "feed failures are logged only")
	require.NoError(t, svc.DeleteRating(ctx, parent(p1), rating.ID))

	publisher.AssertExpectations(t)
}
