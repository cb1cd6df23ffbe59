package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trotyl/uestc-sdk-go/internal/models"
	"github.com/trotyl/uestc-sdk-go/internal/repository"
	appErrors "github.com/trotyl/uestc-sdk-go/pkg/errors"
)

func newSearchFixture(fetcher *fakeFetcher, user *models.User) (*SearchService, *repository.RecordCache, *MetricsService) {
	cache := repository.NewRecordCache()
	metrics := NewMetricsService(cache.Len)
	svc := NewSearchService(fetcher, NewSeeker(cache), cache, &fakeIdentity{user: user}, metrics, zap.NewNop())
	return svc, cache, metrics
}

func TestSearchRequiresConfirmedIdentity(t *testing.T) {
	for name, user := range map[string]*models.User{
		"no user":     nil,
		"unconfirmed": {StudentID: "2012019050020", Grade: 2012},
	} {
		t.Run(name, func(t *testing.T) {
			fetcher := &fakeFetcher{courses: portalCourses()}
			svc, cache, metrics := newSearchFixture(fetcher, user)

			courses, fallback, err := svc.SearchCourses(context.Background(), models.SearchOption{})
			assert.ErrorIs(t, err, appErrors.ErrAuthorizationRequired)
			assert.Nil(t, courses)
			assert.False(t, fallback)

			_, _, err = svc.SearchPeople(context.Background(), models.SearchOption{})
			assert.ErrorIs(t, err, appErrors.ErrAuthorizationRequired)

			assert.Zero(t, fetcher.calls())
			assert.Zero(t, cache.Len())
			assert.Equal(t, uint64(2), metrics.Snapshot().DeniedSearches)
		})
	}
}

func TestSearchLiveWritesThrough(t *testing.T) {
	fetcher := &fakeFetcher{courses: portalCourses()}
	svc, cache, metrics := newSearchFixture(fetcher, confirmedUser())
	opt := models.SearchOption{Filters: map[string]string{"teacher": "Zhang"}}

	courses, fallback, err := svc.SearchCourses(context.Background(), opt)
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, []string{"c-1", "c-3"}, courseIDs(courses))
	assert.Equal(t, 1, fetcher.courseCalls)
	assert.Equal(t, opt, fetcher.lastOption)

	stored, ok := cache.Get(repository.SearchKey(models.KindCourses, opt))
	require.True(t, ok)
	assert.Equal(t, courses, stored)
	assert.Equal(t, uint64(1), metrics.Snapshot().LiveSearches)
}

func TestSearchFallbackMatchesSeeker(t *testing.T) {
	fetcher := &fakeFetcher{courses: portalCourses(), people: portalPeople()}
	svc, cache, metrics := newSearchFixture(fetcher, confirmedUser())
	ctx := context.Background()

	_, _, err := svc.SearchCourses(ctx, models.SearchOption{})
	require.NoError(t, err)
	_, _, err = svc.SearchPeople(ctx, models.SearchOption{})
	require.NoError(t, err)

	fetcher.err = appErrors.WrapKind(errors.New("connection reset"), appErrors.ErrNetworkFailure, "")
	opt := models.SearchOption{Filters: map[string]string{"name": "algebra"}, SortBy: "semester", SortOrder: "desc"}

	courses, fallback, err := svc.SearchCourses(ctx, opt)
	require.NoError(t, err)
	assert.True(t, fallback)
	assert.Equal(t, NewSeeker(cache).SearchForCourses(opt), courses)
	assert.Equal(t, []string{"c-3", "c-1"}, courseIDs(courses))

	people, fallback, err := svc.SearchPeople(ctx, models.SearchOption{Filters: map[string]string{"kind": "student"}})
	require.NoError(t, err)
	assert.True(t, fallback)
	require.Len(t, people, 1)
	assert.Equal(t, "s-1", people[0].ID)

	assert.Equal(t, uint64(2), metrics.Snapshot().FallbackSearches)
}

func TestSearchFallbackSameOptionSameResult(t *testing.T) {
	fetcher := &fakeFetcher{courses: portalCourses()}
	svc, _, _ := newSearchFixture(fetcher, confirmedUser())
	ctx := context.Background()
	opt := models.SearchOption{Filters: map[string]string{"semester": "13"}}

	live, _, err := svc.SearchCourses(ctx, opt)
	require.NoError(t, err)

	fetcher.err = errors.New("portal down")
	offline, fallback, err := svc.SearchCourses(ctx, opt)
	require.NoError(t, err)
	assert.True(t, fallback)
	assert.Equal(t, live, offline)
}

func TestSearchFallbackOnEmptyCacheIsNotAnError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("timeout")}
	svc, _, _ := newSearchFixture(fetcher, confirmedUser())

	courses, fallback, err := svc.SearchCourses(context.Background(), models.SearchOption{Filters: map[string]string{"name": "x"}})

	require.NoError(t, err)
	assert.True(t, fallback)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
}

func TestSearchCancelledCallerGetsContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetcher := &fakeFetcher{err: context.Canceled}
	svc, _, _ := newSearchFixture(fetcher, confirmedUser())

	courses, fallback, err := svc.SearchCourses(ctx, models.SearchOption{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, courses)
	assert.False(t, fallback)
}

func TestSearchRejectsInvalidSortOrder(t *testing.T) {
	fetcher := &fakeFetcher{courses: portalCourses()}
	svc, _, _ := newSearchFixture(fetcher, confirmedUser())

	_, _, err := svc.SearchCourses(context.Background(), models.SearchOption{SortBy: "name", SortOrder: "sideways"})

	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, fetcher.calls())
}

func TestSearchLiveEmptyResultIsCached(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc, cache, _ := newSearchFixture(fetcher, confirmedUser())
	opt := models.SearchOption{Filters: map[string]string{"name": "nothing"}}

	people, fallback, err := svc.SearchPeople(context.Background(), opt)

	require.NoError(t, err)
	assert.False(t, fallback)
	assert.NotNil(t, people)
	assert.True(t, cache.Has(repository.SearchKey(models.KindPeople, opt)))
}

func TestSearchAcceptsSortOrderInAnyCase(t *testing.T) {
	fetcher := &fakeFetcher{courses: portalCourses()}
	svc, _, _ := newSearchFixture(fetcher, confirmedUser())

	courses, fallback, err := svc.SearchCourses(context.Background(), models.SearchOption{SortBy: "Semester", SortOrder: "DESC"})

	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, "c-3", courses[0].ID)
}

func TestSearchCallerMutationDoesNotReachCache(t *testing.T) {
	fetcher := &fakeFetcher{courses: portalCourses()}
	svc, cache, _ := newSearchFixture(fetcher, confirmedUser())
	opt := models.SearchOption{Filters: map[string]string{"teacher": "zhang"}}

	courses, _, err := svc.SearchCourses(context.Background(), opt)
	require.NoError(t, err)
	courses[0].Name = "Edited"

	stored, ok := cache.Get(repository.SearchKey(models.KindCourses, opt))
	require.True(t, ok)
	assert.Equal(t, "Linear Algebra", stored.([]models.Course)[0].Name)
	assert.Equal(t, "Linear Algebra", NewSeeker(cache).SearchForCourses(opt)[0].Name)
}
